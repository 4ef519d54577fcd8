package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"macrolog/controllers"
	"macrolog/logger"
	"macrolog/middlewares"
)

type RouterConfig struct {
	Log            *logger.Logger
	JWTSecret      []byte
	AllowedOrigins []string

	Auth     *controllers.AuthController
	Profile  *controllers.ProfileController
	Day      *controllers.DayController
	Food     *controllers.FoodController
	Recipe   *controllers.RecipeController
	Realtime *controllers.RealtimeController
}

func SetupRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(cfg.Log), middlewares.CORS(cfg.AllowedOrigins))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", cfg.Auth.Register)
		auth.POST("/login", cfg.Auth.Login)
	}

	authed := r.Group("/")
	authed.Use(middlewares.AuthMiddleware(cfg.JWTSecret))

	profile := authed.Group("/profile")
	{
		profile.GET("", cfg.Profile.Get)
		profile.PUT("", cfg.Profile.Update)
		profile.GET("/status", cfg.Profile.Status)
		profile.POST("/basics", cfg.Profile.Basics)
		profile.POST("/activity", cfg.Profile.Activity)
		profile.POST("/objective", cfg.Profile.Objective)
		profile.POST("/preferences", cfg.Profile.Preferences)
		profile.POST("/recalculate", cfg.Profile.Recalculate)
	}

	day := authed.Group("/day")
	{
		day.GET("/summary", cfg.Day.Summary)
		day.GET("/history", cfg.Day.History)
		day.POST("/advice", cfg.Day.Advice)
		day.POST("/consumption", cfg.Day.Consumption)
	}

	food := authed.Group("/food")
	{
		food.POST("/resolve", cfg.Food.Resolve)
		food.GET("/catalog", cfg.Food.List)
		food.POST("/catalog/import", cfg.Food.Import)
		food.PUT("/catalog/:name", cfg.Food.Override)
	}

	recipes := authed.Group("/recipes")
	{
		recipes.GET("", cfg.Recipe.List)
		recipes.POST("", cfg.Recipe.Save)
		recipes.DELETE("/:id", cfg.Recipe.Remove)
	}

	authed.GET("/ws/ledger", cfg.Realtime.LedgerWS)

	return r
}
