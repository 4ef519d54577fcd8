package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"macrolog/logger"
	"macrolog/models"
	"macrolog/services"
	"macrolog/utils"
)

type ProfileController struct {
	Profiles *services.ProfileService
	Log      *logger.Logger
}

func NewProfileController(profiles *services.ProfileService, log *logger.Logger) *ProfileController {
	return &ProfileController{Profiles: profiles, Log: log}
}

func (pc *ProfileController) render(c *gin.Context, p *models.Profile) {
	bmi := 0.0
	if p.HeightCm > 0 && p.WeightKg > 0 {
		bmi = utils.RoundMacro(utils.CalculateBMI(p.HeightCm, p.WeightKg))
	}
	c.JSON(http.StatusOK, gin.H{"profile": p, "bmi": bmi})
}

func (pc *ProfileController) Get(c *gin.Context) {
	p, err := pc.Profiles.Get(c.Request.Context(), profileID(c))
	if err != nil {
		respondError(c, pc.Log, err)
		return
	}
	pc.render(c, p)
}

func (pc *ProfileController) Update(c *gin.Context) {
	var input services.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	p, err := pc.Profiles.Update(c.Request.Context(), profileID(c), input)
	if err != nil {
		respondError(c, pc.Log, err)
		return
	}
	pc.render(c, p)
}

func (pc *ProfileController) Status(c *gin.Context) {
	st, err := pc.Profiles.Status(c.Request.Context(), profileID(c))
	if err != nil {
		respondError(c, pc.Log, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (pc *ProfileController) Basics(c *gin.Context) {
	var input services.BasicsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	p, err := pc.Profiles.CompleteBasics(c.Request.Context(), profileID(c), input)
	if err != nil {
		respondError(c, pc.Log, err)
		return
	}
	pc.render(c, p)
}

func (pc *ProfileController) Activity(c *gin.Context) {
	var input struct {
		ActivityLevel string `json:"activity_level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	p, err := pc.Profiles.CompleteActivity(c.Request.Context(), profileID(c), input.ActivityLevel)
	if err != nil {
		respondError(c, pc.Log, err)
		return
	}
	pc.render(c, p)
}

func (pc *ProfileController) Objective(c *gin.Context) {
	var input struct {
		Objective string `json:"objective" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	p, err := pc.Profiles.CompleteObjective(c.Request.Context(), profileID(c), input.Objective)
	if err != nil {
		respondError(c, pc.Log, err)
		return
	}
	pc.render(c, p)
}

func (pc *ProfileController) Preferences(c *gin.Context) {
	var input services.PreferencesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	p, err := pc.Profiles.CompletePreferences(c.Request.Context(), profileID(c), input)
	if err != nil {
		respondError(c, pc.Log, err)
		return
	}
	pc.render(c, p)
}

func (pc *ProfileController) Recalculate(c *gin.Context) {
	p, err := pc.Profiles.RecalculateGoals(c.Request.Context(), profileID(c))
	if err != nil {
		respondError(c, pc.Log, err)
		return
	}
	pc.render(c, p)
}
