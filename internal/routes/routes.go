package routes

import (
	"github.com/gin-gonic/gin"

	"routebroker/internal/controllers"
)

func SetupRouter(rc *controllers.RouteController) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	APIRoutes(r, rc)

	return r
}
