package handler

import (
	"github.com/gofiber/fiber/v2"

	servertypes "github.com/meshforge/scenecore/server/types"
	"github.com/meshforge/scenecore/types"
)

// GetState godoc
//
//	@Summary		Get information on all entities in the scene
//	@Description	Displays the entire scene state
//	@Produce		application/json
//	@Success		200	{object}	types.DebugStateResponse
//	@Router			/debug/state [get]
func GetState(provider servertypes.Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		result := make(types.DebugStateResponse, 0, provider.EntityCount())
		for _, id := range provider.Entities() {
			element, err := provider.EntitySnapshot(id)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
			result = append(result, element)
		}
		return ctx.JSON(&result)
	}
}
