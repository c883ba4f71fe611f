package handlers

import (
	"github.com/gorilla/mux"

	"github.com/fourline-game/fourline-backend/middleware"
)

// NewRouter wires every HTTP endpoint and the realtime entry point.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/createAccount", h.CreateAccount).Methods("POST")
	r.HandleFunc("/getUsername", h.GetUsername).Methods("POST")
	r.HandleFunc("/usernames", h.Usernames).Methods("GET")
	r.HandleFunc("/checkSession", h.CheckSession).Methods("POST")
	r.HandleFunc("/logout", h.Logout).Methods("POST")

	r.HandleFunc("/sendChallenge", h.SendChallenge).Methods("POST")
	r.HandleFunc("/challengeResponse", h.ChallengeResponse).Methods("POST")

	// /game/create must be registered before the {gameId} routes.
	r.HandleFunc("/game/create", h.CreateGame).Methods("POST")
	r.HandleFunc("/game/{gameId}", h.FetchGame).Methods("GET")
	r.HandleFunc("/game/{gameId}/move", h.Move).Methods("POST")
	r.HandleFunc("/game/{gameId}/end", h.EndGame).Methods("POST")

	r.HandleFunc("/ws", h.WsHandler)

	// Secured routes
	secured := r.PathPrefix("/").Subrouter()
	secured.Use(middleware.SessionValidation(h.store))
	secured.HandleFunc("/games", h.FetchUserGames).Methods("GET")
	secured.HandleFunc("/game/{gameId}/history", h.FetchGameHistory).Methods("GET")

	return r
}
