// Package server builds the HTTP API over an app.App.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"monex/internal/app"
	_ "monex/internal/docs" // Import swagger docs
	"monex/internal/handlers"
	"monex/internal/middleware"
	"monex/internal/validator"
)

// NewRouter registers every route of the API.
func NewRouter(a *app.App) *gin.Engine {
	validator.Register()

	authHandler := handlers.NewAuthHandler(a.Sessions, a.Finance)
	budgetHandler := handlers.NewBudgetHandler(a.Finance)
	assetHandler := handlers.NewAssetHandler(a.Finance)
	summaryHandler := handlers.NewSummaryHandler(a.Finance, a.Config.Currency)

	router := gin.New()
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		_, signedIn := a.Sessions.Current()
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"signed_in": signedIn,
			"writes":    a.QueueStats(),
		})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/restore", authHandler.Restore)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.SessionAuth(a.Sessions))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/balance", authHandler.UpdateBalance)
	protected.GET("/summary", summaryHandler.GetSummary)
	protected.GET("/report", summaryHandler.GetReport)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/expenses", budgetHandler.ListExpenses)
	budgets.POST("/:id/expenses", budgetHandler.CreateExpense)
	budgets.PUT("/:id/expenses/:expense_id", budgetHandler.UpdateExpense)
	budgets.DELETE("/:id/expenses/:expense_id", budgetHandler.DeleteExpense)

	misc := protected.Group("/misc")
	misc.GET("", budgetHandler.GetMiscBudget)
	misc.GET("/expenses", budgetHandler.ListExpenses)
	misc.POST("/expenses", budgetHandler.CreateExpense)
	misc.PUT("/expenses/:expense_id", budgetHandler.UpdateExpense)
	misc.DELETE("/expenses/:expense_id", budgetHandler.DeleteExpense)

	assets := protected.Group("/assets")
	assets.POST("", assetHandler.CreateAsset)
	assets.GET("", assetHandler.GetAssets)
	assets.GET("/:id", assetHandler.GetAsset)
	assets.PUT("/:id", assetHandler.UpdateAsset)
	assets.DELETE("/:id", assetHandler.DeleteAsset)
	assets.POST("/:id/emi-payments", assetHandler.RecordEMIPayment)

	return router
}
