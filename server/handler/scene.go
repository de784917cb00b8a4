package handler

import (
	"reflect"

	"github.com/gofiber/fiber/v2"

	servertypes "github.com/meshforge/scenecore/server/types"
	"github.com/meshforge/scenecore/types"
)

type GetSceneResponse struct {
	EntityCount int           `json:"entityCount"`
	Components  []FieldDetail `json:"components"` // registered component types
	Tags        []string      `json:"tags"`       // every tag in use
}

type FieldDetail struct {
	Name   string         `json:"name"`   // name of the component type
	Fields map[string]any `json:"fields"` // variable name and type
}

// GetScene godoc
//
//	@Summary		Get field information of registered component types
//	@Description	Get field information of registered component types plus scene counts
//	@Accept			application/json
//	@Produce		application/json
//	@Success		200	{object}	GetSceneResponse	"Field information of registered component types"
//	@Router			/scene [get]
func GetScene(provider servertypes.Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		registered := provider.RegisteredComponents()

		// Collecting the structure of all registered component types. Decoding
		// the default value gives an instance to reflect over.
		comps := make([]FieldDetail, 0, len(registered))
		for _, metadata := range registered {
			defaultValue, err := metadata.New()
			if err != nil {
				continue
			}
			c, err := metadata.Decode(defaultValue)
			if err != nil {
				continue
			}
			comps = append(comps, FieldDetail{
				Name:   metadata.Name(),
				Fields: types.GetFieldInformation(reflect.TypeOf(c)),
			})
		}

		return ctx.JSON(GetSceneResponse{
			EntityCount: provider.EntityCount(),
			Components:  comps,
			Tags:        provider.AllTags(),
		})
	}
}
