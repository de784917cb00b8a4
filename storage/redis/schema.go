package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

var ErrNoSchemaFound = errors.New("no schema found")

// SchemaStorage pins component schemas across sessions. The component
// manager checks a registering component's reflected schema against the
// stored one so a project file saved under an older component definition is
// rejected instead of silently misread.
type SchemaStorage struct {
	Client    *redis.Client
	Namespace string
}

func NewSchemaStorage(client *redis.Client, namespace string) SchemaStorage {
	return SchemaStorage{
		Client:    client,
		Namespace: namespace,
	}
}

func (r *SchemaStorage) GetSchema(componentName string) ([]byte, error) {
	ctx := context.Background()
	schemaBytes, err := r.Client.HGet(ctx, r.schemaStorageKey(), componentName).Bytes()
	if eris.Is(err, redis.Nil) {
		return nil, eris.Wrap(err, ErrNoSchemaFound.Error())
	} else if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return schemaBytes, nil
}

func (r *SchemaStorage) SetSchema(componentName string, schemaData []byte) error {
	ctx := context.Background()
	return eris.Wrap(r.Client.HSet(ctx, r.schemaStorageKey(), componentName, schemaData).Err(), "")
}
