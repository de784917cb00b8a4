// Package statsd is a helper package that wraps some common statsd methods.
// It hides the datadog dependency so if we decide to migrate away from datadog in the future, we only need to
// edit this single file. For example, the https://pkg.go.dev/github.com/cactus/go-statsd-client/statsd package roughly
// implements datadog's ClientInterface interface.
package statsd

import (
	"strings"
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
	"gopkg.in/DataDog/dd-trace-go.v1/profiler"
)

var client ddstatsd.ClientInterface = &ddstatsd.NoOpClient{}

var tracingEnabled bool

func Client() ddstatsd.ClientInterface {
	return client
}

// EmitOpStat emits the elapsed time of one scene operation, tagged with the
// operation name.
func EmitOpStat(start time.Time, op string) {
	duration := time.Since(start)
	err := Client().Timing("scene_op", duration, []string{op}, 1)
	if err != nil {
		log.Logger.Warn().Msgf("failed to emit scene op stat: %v", err)
	}
}

// Init wires the global statsd client and, when traceAddress is set, the
// datadog tracer and profiler. Tags apply to both metrics and traces.
func Init(statsdAddress string, traceAddress string, tags []string) error {
	if statsdAddress == "" && traceAddress == "" {
		return eris.New("statsd and trace address must not both be empty")
	}

	if statsdAddress != "" {
		opts := []ddstatsd.Option{
			// The statsd namespace is the prefix of all metrics
			ddstatsd.WithNamespace("scenecore"),
		}
		if len(tags) > 0 {
			opts = append(opts, ddstatsd.WithTags(tags))
		}

		newClient, err := ddstatsd.New(statsdAddress, opts...)
		if err != nil {
			return eris.Wrap(err, "")
		}
		// Success! replace the global client
		client = newClient
	}

	if traceAddress != "" {
		traceOpts := []tracer.StartOption{
			tracer.WithAgentAddr(traceAddress),
		}
		for _, tag := range tags {
			key, value := tagToTraceTag(tag)
			traceOpts = append(traceOpts, tracer.WithGlobalTag(key, value))
		}
		tracer.Start(traceOpts...)

		if err := profiler.Start(
			profiler.WithAgentAddr(traceAddress),
			profiler.WithProfileTypes(
				profiler.CPUProfile,
				profiler.HeapProfile,
			),
		); err != nil {
			tracer.Stop()
			return eris.Wrap(err, "unable to start profiler")
		}
		tracingEnabled = true
	}

	return nil
}

// Close flushes and shuts down whatever Init started. Safe to call when Init
// was never called.
func Close() error {
	if tracingEnabled {
		tracer.Stop()
		profiler.Stop()
		tracingEnabled = false
	}
	err := client.Close()
	client = &ddstatsd.NoOpClient{}
	if err != nil {
		return eris.Wrap(err, "")
	}
	return nil
}

// tagToTraceTag splits a statsd style "key:value" tag into the key/value
// form the tracer wants. Tags without a value map to a nil value.
func tagToTraceTag(tag string) (string, any) {
	results := strings.SplitN(tag, ":", 2)
	if len(results) == 1 {
		return results[0], nil
	}
	key, value := results[0], results[1]
	if key == "" {
		return value, nil
	}
	if value == "" {
		return key, nil
	}
	return key, value
}
