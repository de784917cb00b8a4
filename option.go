package scenecore

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/meshforge/scenecore/server"
)

// SceneOption represents an option that can be used to augment how the Scene
// will be built and run.
type SceneOption struct {
	serverOption server.Option
	sceneOption  func(*Scene)
}

// WithPort specifies the port for the scene's inspector server. If omitted,
// the environment variable SCENE_PORT will be used, and if that is unset,
// port 4040.
func WithPort(port string) SceneOption {
	return SceneOption{
		serverOption: server.WithPort(port),
	}
}

// WithServerDisabled keeps Start from serving the inspector over HTTP.
// Events still reach in-process subscribers; only the HTTP surface is off.
func WithServerDisabled() SceneOption {
	return SceneOption{
		sceneOption: func(s *Scene) {
			s.serverDisabled = true
		},
	}
}

// WithLogger replaces the scene's default stdout logger.
func WithLogger(logger zerolog.Logger) SceneOption {
	return SceneOption{
		sceneOption: func(s *Scene) {
			s.log = logger
		},
	}
}

// WithSceneName overrides the SCENE_NAME environment variable.
func WithSceneName(name string) SceneOption {
	return SceneOption{
		sceneOption: func(s *Scene) {
			s.name = name
		},
	}
}

// WithPrettyLog writes pretty logs instead of JSON to the global logger.
func WithPrettyLog() SceneOption {
	return SceneOption{
		sceneOption: func(_ *Scene) {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		},
	}
}

func separateOptions(opts []SceneOption) (serverOptions []server.Option, sceneOptions []func(*Scene)) {
	for _, opt := range opts {
		if opt.serverOption != nil {
			serverOptions = append(serverOptions, opt.serverOption)
		}
		if opt.sceneOption != nil {
			sceneOptions = append(sceneOptions, opt.sceneOption)
		}
	}
	return serverOptions, sceneOptions
}
