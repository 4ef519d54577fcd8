package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"macrolog/logger"
	"macrolog/services"
)

type DayController struct {
	Ledger *services.LedgerService
	Log    *logger.Logger
}

func NewDayController(ledger *services.LedgerService, log *logger.Logger) *DayController {
	return &DayController{Ledger: ledger, Log: log}
}

func (dc *DayController) Summary(c *gin.Context) {
	sum, err := dc.Ledger.Summary(c.Request.Context(), profileID(c))
	if err != nil {
		respondError(c, dc.Log, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (dc *DayController) History(c *gin.Context) {
	days, err := dc.Ledger.History(c.Request.Context(), profileID(c))
	if err != nil {
		respondError(c, dc.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

func (dc *DayController) Advice(c *gin.Context) {
	sum, err := dc.Ledger.RequestAdvice(c.Request.Context(), profileID(c))
	if err != nil {
		respondError(c, dc.Log, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// Consumption records macros the client computed itself.
func (dc *DayController) Consumption(c *gin.Context) {
	var input services.Consumption
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	sum, err := dc.Ledger.RecordConsumption(c.Request.Context(), profileID(c), input)
	if err != nil {
		respondError(c, dc.Log, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
