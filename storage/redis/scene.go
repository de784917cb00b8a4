package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

var ErrNoSceneFound = errors.New("no scene found")

// SceneStorage stores serialized scene documents keyed by scene name. The
// payload is the already-encoded document; this layer knows nothing about
// its shape.
type SceneStorage struct {
	Client    *redis.Client
	Namespace string
}

func NewSceneStorage(client *redis.Client, namespace string) SceneStorage {
	return SceneStorage{
		Client:    client,
		Namespace: namespace,
	}
}

func (r *SceneStorage) SaveScene(sceneName string, document []byte) error {
	ctx := context.Background()
	return eris.Wrap(r.Client.HSet(ctx, r.sceneStorageKey(), sceneName, document).Err(), "")
}

func (r *SceneStorage) LoadScene(sceneName string) ([]byte, error) {
	ctx := context.Background()
	document, err := r.Client.HGet(ctx, r.sceneStorageKey(), sceneName).Bytes()
	if eris.Is(err, redis.Nil) {
		return nil, eris.Wrap(err, ErrNoSceneFound.Error())
	} else if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return document, nil
}

func (r *SceneStorage) DeleteScene(sceneName string) error {
	ctx := context.Background()
	return eris.Wrap(r.Client.HDel(ctx, r.sceneStorageKey(), sceneName).Err(), "")
}

// ListScenes returns the names of every stored scene document.
func (r *SceneStorage) ListScenes() ([]string, error) {
	ctx := context.Background()
	names, err := r.Client.HKeys(ctx, r.sceneStorageKey()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, eris.Wrap(err, "")
	}
	return names, nil
}
