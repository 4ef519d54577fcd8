package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"macrolog/logger"
	"macrolog/models"
	"macrolog/services"
)

type RecipeController struct {
	Recipes *services.RecipeService
	Log     *logger.Logger
}

func NewRecipeController(recipes *services.RecipeService, log *logger.Logger) *RecipeController {
	return &RecipeController{Recipes: recipes, Log: log}
}

func (rc *RecipeController) List(c *gin.Context) {
	list, err := rc.Recipes.List(c.Request.Context(), profileID(c))
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": list})
}

func (rc *RecipeController) Save(c *gin.Context) {
	var input struct {
		Recipes []models.Recipe `json:"recipes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	saved, err := rc.Recipes.Save(c.Request.Context(), profileID(c), input.Recipes)
	if err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": saved})
}

func (rc *RecipeController) Remove(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := rc.Recipes.Remove(c.Request.Context(), profileID(c), id); err != nil {
		respondError(c, rc.Log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
