package main

import (
	"log"
	"os"
	"time"

	"notevault/config"
	"notevault/handler"
	"notevault/middleware"
	"notevault/repository"
	"notevault/services"
	"notevault/usecase"
	"notevault/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && os.Getenv("GO_ENV") != "test" {
		log.Printf("No .env file loaded: %v", err)
	}

	requiredEnvVars := []string{
		"MONGO_URI",
		"MONGO_DB",
		"JWT_SECRET_KEY",
		"PORT",
	}

	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" && os.Getenv("GO_ENV") != "test" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}
}

func setupRouter(cfg config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.MetricsMiddleware())

	userRepo := repository.GetUserRepo(utils.MongoClient)
	noteRepo := repository.GetNoteRepo(utils.MongoClient)

	userService := &usecase.UserService{Users: userRepo}
	noteService := &usecase.NoteService{Notes: noteRepo, Users: userRepo}

	authHandler := handler.NewAuthHandler(userService, cfg.TokenTTL)
	noteHandler := handler.NewNoteHandler(noteService)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	router.POST("/signup", authHandler.Signup)
	router.POST("/login", authHandler.Login)

	// Protected routes
	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleware(userRepo))
	{
		protected.POST("/logout", authHandler.Logout)
		protected.POST("/resetpassword", authHandler.ResetPassword)
		protected.POST("/2fa/enable", authHandler.EnableTwoFactor)
		protected.POST("/2fa/verify", authHandler.VerifyTwoFactor)

		notes := protected.Group("/notes")
		{
			notes.POST("", noteHandler.CreateNote)
			notes.GET("", noteHandler.ListNotes)
			notes.DELETE("/bulk", noteHandler.DeleteNotes)
			notes.GET("/tags", noteHandler.ListTags)
			notes.GET("/tag/:tag", noteHandler.ListNotesByTag)
			notes.GET("/pinned", noteHandler.ListPinnedNotes)
			notes.GET("/favorites", noteHandler.ListFavoriteNotes)
			notes.GET("/reminders", noteHandler.ListUpcomingReminders)

			notes.GET("/:id", noteHandler.GetNote)
			notes.PUT("/:id", noteHandler.UpdateNote)
			notes.DELETE("/:id", noteHandler.DeleteNote)

			notes.POST("/:id/tags", noteHandler.AddTags)
			notes.DELETE("/:id/tags", noteHandler.RemoveTags)

			notes.PATCH("/:id/pin", noteHandler.TogglePin)
			notes.PATCH("/:id/favorite", noteHandler.ToggleFavorite)

			notes.POST("/:id/reminder", noteHandler.SetReminder)
			notes.PATCH("/:id/reminder/complete", noteHandler.CompleteReminder)

			notes.POST("/:id/versions", noteHandler.SaveVersion)
			notes.GET("/:id/versions", noteHandler.ListVersions)
			notes.POST("/:id/versions/:versionId/restore", noteHandler.RestoreVersion)

			notes.GET("/:id/export/pdf", noteHandler.ExportPDF)
			notes.GET("/:id/export/markdown", noteHandler.ExportMarkdown)
		}
	}

	return router
}

func main() {
	cfg := config.Load()

	utils.InitValidator()
	services.InitJWT(cfg.JWTSecret, cfg.TokenTTL)
	utils.InitMongoClient()

	if err := repository.SetupIndexes(utils.MongoClient.Database(cfg.DatabaseName)); err != nil {
		log.Fatalf("Failed to set up indexes: %v", err)
	}

	// Token blacklist is optional; without Redis, logout relies on
	// token expiry alone
	if blacklist, err := services.NewTokenBlacklist(cfg.RedisURL); err != nil {
		log.Printf("Token blacklist disabled: %v", err)
	} else {
		services.TokenBlacklist = blacklist
	}

	middleware.StartSystemMetricsSampler(15 * time.Second)

	router := setupRouter(cfg)

	serverAddr := ":" + cfg.Port
	log.Printf("Server starting on %s", serverAddr)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
