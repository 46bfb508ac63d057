// routes_models.go - Modell-Liste
// Enthaelt: ListHandler - bekannte Modelle mit Verfuegbarkeit und Lade-Status

package server

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/chishi/forge/api"
)

// ListHandler verarbeitet GET /api/models
func (s *Server) ListHandler(c *gin.Context) {
	loaded := s.models.Loaded()

	models := []api.ModelResponse{}
	for _, spec := range s.registry.List() {
		_, _, err := s.registry.Resolve(spec.Name, s.modelsDir)
		models = append(models, api.ModelResponse{
			Name:        spec.Name,
			File:        spec.File,
			Description: spec.Description,
			Scale:       spec.Scale,
			Available:   err == nil,
			Loaded:      slices.Contains(loaded, spec.Name),
		})
	}

	c.JSON(http.StatusOK, api.ListResponse{Models: models})
}
