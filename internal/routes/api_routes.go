package routes

import (
	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"routebroker/internal/controllers"
)

func APIRoutes(r *gin.Engine, rc *controllers.RouteController) {
	api := r.Group("/api")
	api.Use(ginlogger.SetLogger())
	{
		api.POST("/route", rc.RequestRoute)
		api.GET("/route/:id", rc.RouteStatus)
		api.DELETE("/route/:id", rc.CancelRoute)
		api.GET("/recent_routes", rc.RecentRoutes)
	}
}
