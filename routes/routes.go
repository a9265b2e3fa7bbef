package routes

import (
	"net/http"

	"backend/config"
	"backend/controllers"
	"backend/services"

	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	hub := services.NewRealtimeHub()
	push := services.NewPushService(config.DB, nil)
	resolver := services.NewResolverService(config.DB)
	visits := services.NewVisitService(config.DB, resolver, push, hub, nil)
	users := services.NewUserService(config.DB, push, visits)
	rooms := services.NewRoomService(config.DB)

	uc := controllers.NewUserController(users)
	rc := controllers.NewRoomController(rooms)
	vc := controllers.NewVisitController(visits)
	rt := controllers.NewRealtimeController(hub)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Security backend running"})
	})

	api := r.Group("/api")
	{
		api.POST("/users", uc.Create)
		api.POST("/login", uc.Login)
		api.GET("/users", uc.List)
		api.DELETE("/users/:id", uc.Delete)
		api.POST("/savePushToken", uc.SavePushToken)

		api.POST("/rooms", rc.Create)
		api.GET("/rooms", rc.List)

		api.POST("/visitors", vc.Submit)
		api.GET("/visits", vc.List)
		api.GET("/visits/month", vc.ListMonth)
		api.GET("/visits/year", vc.ListYear)
		api.GET("/visits/room/:roomId", vc.ListByRoom)
		api.GET("/visits/room/:roomId/latest", vc.LatestByRoom)
		api.POST("/visits/:id/status", vc.SetStatus)

		api.GET("/realtime/ws", rt.VisitsWS)
	}

	return r
}
