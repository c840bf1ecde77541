package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/osa911/userconsole/internal/api/handlers"
)

// SetupConsoleRoutes configures the user console pages and form targets
func SetupConsoleRoutes(router *gin.Engine, console *handlers.ConsoleHandler) {
	router.GET("/", console.Index)

	users := router.Group("/users")
	{
		users.POST("", console.Create)
		users.POST("/:id", console.Update)
		users.GET("/:id/delete", console.ConfirmDelete)
		users.POST("/:id/delete", console.Delete)
		users.POST("/:id/activate", console.Activate)
		users.POST("/:id/deactivate", console.Deactivate)
	}
}
