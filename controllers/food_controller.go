package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"macrolog/logger"
	"macrolog/models"
	"macrolog/services"
)

type FoodController struct {
	Resolver *services.ResolutionService
	Catalog  *services.CatalogService
	Log      *logger.Logger
}

func NewFoodController(resolver *services.ResolutionService, catalog *services.CatalogService, log *logger.Logger) *FoodController {
	return &FoodController{Resolver: resolver, Catalog: catalog, Log: log}
}

// Resolve accepts either a bare array of foods or {"items": [...]}. An
// oracle error comes back as {"error": ...} with status 200.
func (fc *FoodController) Resolve(c *gin.Context) {
	var items []services.FoodRequest
	if err := c.ShouldBindBodyWith(&items, binding.JSON); err != nil {
		var wrapped struct {
			Items []services.FoodRequest `json:"items" binding:"required,dive"`
		}
		if err2 := c.ShouldBindBodyWith(&wrapped, binding.JSON); err2 != nil {
			badRequest(c, err)
			return
		}
		items = wrapped.Items
	}
	res, err := fc.Resolver.Resolve(c.Request.Context(), profileID(c), items)
	if err != nil {
		respondError(c, fc.Log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (fc *FoodController) List(c *gin.Context) {
	entries, err := fc.Catalog.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, fc.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": entries})
}

func (fc *FoodController) Import(c *gin.Context) {
	var entries []models.CatalogEntry
	if err := c.ShouldBindJSON(&entries); err != nil {
		badRequest(c, err)
		return
	}
	stored, err := fc.Catalog.Import(c.Request.Context(), entries)
	if err != nil {
		respondError(c, fc.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": stored})
}

func (fc *FoodController) Override(c *gin.Context) {
	var values models.CatalogEntry
	if err := c.ShouldBindJSON(&values); err != nil {
		badRequest(c, err)
		return
	}
	e, err := fc.Catalog.Override(c.Request.Context(), c.Param("name"), values)
	if err != nil {
		respondError(c, fc.Log, err)
		return
	}
	c.JSON(http.StatusOK, e)
}
