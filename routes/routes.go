package routes

import (
	"tripchat/auth"
	"tripchat/chat"
	"tripchat/middleware"
	"tripchat/ratelim"
	"tripchat/trips"
	"tripchat/tripstore"
	"tripchat/workflow"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router) {
	router.POST("/api/auth/register", ratelim.RateLimit(auth.Register))
	router.POST("/api/auth/login", ratelim.RateLimit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.LogoutUser))
}

func AddTripRoutes(router *httprouter.Router, store *tripstore.Store) {
	router.POST("/api/trips", middleware.Authenticate(trips.CreateTrip))
	router.GET("/api/trips", middleware.Authenticate(trips.GetTrips))
	router.GET("/api/trips/:tripid", ratelim.RateLimit(middleware.OptionalAuth(trips.GetTrip)))
	router.PUT("/api/trips/:tripid", middleware.Authenticate(trips.UpdateTrip))
	router.DELETE("/api/trips/:tripid", middleware.Authenticate(trips.DeleteTrip))
	router.GET("/api/trips/:tripid/render", ratelim.RateLimit(trips.RenderTrip(store)))
	router.GET("/api/trips/:tripid/export", ratelim.RateLimit(trips.ExportTrip(store)))
}

func AddChatRoutes(router *httprouter.Router, hub *chat.Hub, engine *workflow.Engine) {
	router.GET("/ws/trip/:room", chat.WebSocketHandler(hub, engine))
}
