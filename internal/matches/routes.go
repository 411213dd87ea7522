package matches

import (
	"github.com/gorilla/mux"

	"github.com/Samuelsenhet/m-k-sub001/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/matches").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/daily", handler.DeliverDaily).Methods("POST")
	api.HandleFunc("/daily", handler.GetDaily).Methods("GET")
	api.HandleFunc("/status", handler.GetStatus).Methods("GET")

	admin := router.PathPrefix("/api/v1/admin").Subrouter()
	admin.Use(authMiddleware.RequireAdmin)

	admin.HandleFunc("/pools/generate", handler.GeneratePools).Methods("POST")
}
