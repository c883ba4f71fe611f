package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fourline-game/fourline-backend/models"
	"github.com/fourline-game/fourline-backend/repository"
	"github.com/fourline-game/fourline-backend/responses"
	"github.com/fourline-game/fourline-backend/token"
	"github.com/fourline-game/fourline-backend/utils"
)

const sessionTTL = 72 * time.Hour

// CreateAccount registers a new user. Passwords are bcrypt-hashed; the hash
// never leaves this handler.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username        string `json:"username"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid request."})
		return
	}

	if len(req.Username) < 3 || len(req.Username) > 50 {
		utils.HandleError(w, responses.BadRequestError{Msg: "Username must be between 3 and 50 characters."})
		return
	}
	if len(req.Password) < 3 || len(req.Password) > 50 {
		utils.HandleError(w, responses.BadRequestError{Msg: "Password must be between 3 and 50 characters."})
		return
	}
	if req.Password != req.ConfirmPassword {
		utils.HandleError(w, responses.BadRequestError{Msg: "Passwords do not match."})
		return
	}

	if _, err := h.store.UserByName(r.Context(), req.Username); err == nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "Username is already taken."})
		return
	} else if err != repository.ErrNotFound {
		h.log.Error("checking username", zap.Error(err))
		utils.HandleError(w, responses.InternalServerError{Msg: "Error processing request."})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to hash password."})
		return
	}

	userID, err := h.store.CreateUser(r.Context(), req.Username, string(hashed))
	if err != nil {
		h.log.Error("creating user", zap.Error(err))
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to create user."})
		return
	}

	utils.HandleSuccessWithStatus(w, http.StatusCreated,
		models.SuccessResponse(map[string]string{"userId": userID}))
}

// Login verifies credentials, derives the session token from the client's
// connection identity and stores it with an expiry. The token doubles as
// the sessionId the client presents afterwards.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid request."})
		return
	}

	user, err := h.store.UserByName(r.Context(), req.Username)
	if err == repository.ErrNotFound {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Invalid username or password."})
		return
	}
	if err != nil {
		h.log.Error("loading user", zap.Error(err))
		utils.HandleError(w, responses.InternalServerError{Msg: "Error processing request."})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Invalid username or password."})
		return
	}

	tok := token.Derive(clientIP(r), user.ID, user.Username)
	if err := h.store.SaveSession(r.Context(), user.ID, tok, time.Now().Add(sessionTTL)); err != nil {
		h.log.Error("storing session", zap.Error(err))
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to store session."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{
		"userId":    user.ID,
		"sessionId": tok,
	}))
}

// CheckSession re-derives the token from the request's client IP and the
// looked-up username and compares it against the stored row. Every failure
// is the same 401; which factor failed is not revealed.
func (h *Handler) CheckSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string `json:"userId"`
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" || req.SessionID == "" {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Invalid session."})
		return
	}

	sess, err := h.store.Session(r.Context(), req.UserID, req.SessionID)
	if err != nil || sess.Expired(time.Now()) {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Invalid session."})
		return
	}

	user, err := h.store.UserByID(r.Context(), req.UserID)
	if err != nil {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Invalid session."})
		return
	}

	derived := token.Derive(clientIP(r), user.ID, user.Username)
	if !token.Verify(derived, sess.Token) {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Invalid session."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"username": user.Username}))
}

// Logout deletes the stored session row. Unknown sessions get the same 200
// as known ones; there is nothing useful to reveal.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string `json:"userId"`
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" || req.SessionID == "" {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Invalid session."})
		return
	}

	if err := h.store.DeleteSession(r.Context(), req.UserID, req.SessionID); err != nil {
		h.log.Error("deleting session", zap.Error(err))
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to delete session."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"message": "Logged out successfully."}))
}

// GetUsername resolves a userId to its username.
func (h *Handler) GetUsername(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid request."})
		return
	}

	user, err := h.store.UserByID(r.Context(), req.UserID)
	if err != nil {
		h.userLookupError(w, err)
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"username": user.Username}))
}

// Usernames lists every registered user.
func (h *Handler) Usernames(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.log.Error("listing users", zap.Error(err))
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to fetch users."})
		return
	}
	if users == nil {
		users = []models.User{}
	}

	utils.HandleSuccess(w, models.SuccessResponse(users))
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// socket's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
