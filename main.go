package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/taskade/taskade-backend/common"
	"github.com/taskade/taskade-backend/db"
	"github.com/taskade/taskade-backend/handlers"
	"github.com/taskade/taskade-backend/logger"
	"github.com/taskade/taskade-backend/mailer"
	"github.com/taskade/taskade-backend/routes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const databaseName = "taskade-todoList"

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	log := logger.GetLogger()
	defer log.Sync()

	// Create a new context with a timeout for connecting to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ctx = logger.WithLogger(ctx, log)

	// connect to mongo db
	client, err := db.Connect(ctx)
	common.FailOnError(ctx, "could not connect to mongo db", err)

	secret := os.Getenv("ACCESS_TOKEN_SECRET")
	if secret == "" {
		log.Fatal("ACCESS_TOKEN_SECRET environment variable is not set")
	}

	// Initialize the handlers
	database := client.Database(databaseName)
	authHandler := handlers.NewAuthHandler(ctx, database.Collection("users"), []byte(secret))
	taskHandler := handlers.NewTaskHandler(ctx, database.Collection("tasks"))
	emailHandler := handlers.NewEmailHandler(newSMTPSender(), os.Getenv("EMAIL_RECEIVER"))

	// Ensure clean up during shutdown
	go handleShutdown(ctx, cancel, client)

	// Set up the Gin router with CORS and request logging middleware
	router := setupRouter(log, taskHandler, authHandler, emailHandler)

	// Start the server
	startServer(ctx, router)
}

func newSMTPSender() *mailer.SMTPSender {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return mailer.NewSMTPSender(host, port, os.Getenv("EMAIL_RECEIVER"), os.Getenv("EMAIL_PASSWORD"))
}

func setupRouter(log *zap.Logger, taskHandler *handlers.TasksHandler, authHandler *handlers.AuthHandler, emailHandler *handlers.EmailHandler) *gin.Engine {
	router := gin.Default()

	router.Use(logger.RequestLogger(log))

	// Configure CORS dynamically for different environments
	allowedOrigins := []string{"http://localhost:3000"}
	if origin := os.Getenv("CORS_ORIGIN"); origin != "" {
		allowedOrigins = append(allowedOrigins, origin)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))

	// Set up routes
	routes.SetupRoutes(router, taskHandler, authHandler, emailHandler)

	return router
}

func startServer(ctx context.Context, router *gin.Engine) {
	log := logger.FromCtx(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		err := srv.ListenAndServe()
		common.FailIfServerErrored(ctx, "listen failed", err)
	}()

	log.Info("server listening", zap.String("port", port))

	// Wait for interrupt signal to gracefully shut down the server with a timeout of 10 seconds
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}

func handleShutdown(ctx context.Context, cancel context.CancelFunc, client *mongo.Client) {
	log := logger.FromCtx(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	// Cancel the context to stop ongoing requests
	cancel()

	// Disconnect from MongoDB
	if err := client.Disconnect(context.Background()); err != nil {
		log.Fatal("error while disconnecting mongo db", zap.Error(err))
	}

	log.Info("disconnected from mongo db")
}
