// Package redis persists the parts of a scene that outlive a process:
// component schemas (so a reopened project can detect drifted component
// definitions) and serialized scene documents. Nothing here is touched by
// the mutation or query path; callers hand the storage already-encoded bytes.
package redis

import (
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

type Storage struct {
	Namespace string
	Client    *redis.Client
	Log       zerolog.Logger
	SchemaStorage
	SceneStorage
}

type Options = redis.Options

func NewRedisStorage(options Options, namespace string) Storage {
	client := redis.NewClient(&options)
	return Storage{
		Namespace:     namespace,
		Client:        client,
		Log:           zerolog.New(os.Stdout),
		SchemaStorage: NewSchemaStorage(client, namespace),
		SceneStorage:  NewSceneStorage(client, namespace),
	}
}

func (r *Storage) Close() error {
	r.Log.Info().Msg("Closing storage connection.")
	if err := r.Client.Close(); err != nil {
		return eris.Wrap(err, "")
	}
	r.Log.Info().Msg("Successfully closed storage connection.")
	return nil
}
