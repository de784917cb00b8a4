package handler

import (
	"github.com/gofiber/fiber/v2"

	servertypes "github.com/meshforge/scenecore/server/types"
)

type GetHealthResponse struct {
	IsServerRunning bool `json:"isServerRunning"`
	IsSceneReady    bool `json:"isSceneReady"`
}

// GetHealth godoc
//
//	@Summary		Get server health
//	@Description	Reports whether the inspector is serving and the scene accepts edits
//	@Produce		application/json
//	@Success		200	{object}	GetHealthResponse
//	@Router			/health [get]
func GetHealth(provider servertypes.Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(GetHealthResponse{
			IsServerRunning: true,
			IsSceneReady:    provider.IsReady(),
		})
	}
}
