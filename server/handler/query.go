package handler

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"github.com/meshforge/scenecore/sceneql"
	servertypes "github.com/meshforge/scenecore/server/types"
	"github.com/meshforge/scenecore/types"
)

type QueryRequest struct {
	Query string `json:"query"`
}

type queryMatch struct {
	ID         types.EntityID             `json:"id"`
	Components map[string]json.RawMessage `json:"components" swaggertype:"object"`
}

type QueryResponse struct {
	Results []queryMatch `json:"results"`
}

// PostQuery godoc
//
//	@Summary		Query the scene with a text query
//	@Description	Finds every entity matching a component/tag expression
//	@Accept			application/json
//	@Produce		application/json
//	@Param			query	body		QueryRequest	true	"query expression"
//	@Success		200		{object}	QueryResponse
//	@Failure		400		{string}	string	"Malformed expression or unknown component"
//	@Router			/query [post]
func PostQuery(provider servertypes.Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		req := new(QueryRequest)
		if err := ctx.BodyParser(req); err != nil {
			return err
		}

		match, err := sceneql.Parse(req.Query, sceneql.Resolver{
			ComponentByName: provider.GetComponentByName,
			HasTag:          provider.HasTag,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		results := make([]queryMatch, 0)
		for _, id := range provider.Entities() {
			if !match.MatchesEntity(id, provider.Components(id)) {
				continue
			}
			element, err := provider.EntitySnapshot(id)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
			results = append(results, queryMatch{ID: id, Components: element.Components})
		}

		return ctx.JSON(QueryResponse{Results: results})
	}
}
