package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/taskade/taskade-backend/handlers"
)

func SetupRoutes(router *gin.Engine, taskHandler *handlers.TasksHandler, authHandler *handlers.AuthHandler, emailHandler *handlers.EmailHandler) {
	router.GET("/", taskHandler.StatusHandler)

	// Login: upserts the user and issues the access token, no guard.
	router.PUT("/users/:email", authHandler.UpsertUserHandler)

	auth := router.Group("/")
	auth.Use(authHandler.AuthMiddleware())

	// authenticated api request
	{
		auth.POST("/task", taskHandler.NewTaskHandler)
		auth.GET("/task/:email", taskHandler.ActiveTasksHandler)
		auth.GET("/archive/:email", taskHandler.ArchivedTasksHandler)
		auth.PUT("/task/:id", taskHandler.ArchiveTaskHandler)
		auth.PUT("/task/mark/:id", taskHandler.MarkTaskHandler)
		auth.PUT("/task/update/:id", taskHandler.EditTaskHandler)
		auth.POST("/email", emailHandler.ContactHandler)
	}
}
