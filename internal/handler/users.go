// Package handler contains the HTTP layer: it decodes requests, calls the
// social graph facade and encodes its results. No graph rules live here.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/social-connections/internal/model"
)

// SocialGraph is the facade the handlers call. *service.SocialService
// implements it.
type SocialGraph interface {
	RegisterUser(ctx context.Context, userStrID, displayName string) (*model.User, error)
	CreateConnection(ctx context.Context, id1, id2 string) (string, error)
	RemoveConnection(ctx context.Context, id1, id2 string) (string, error)
	DirectFriends(ctx context.Context, userStrID string) ([]model.User, error)
	FriendsOfFriends(ctx context.Context, userStrID string) ([]model.User, error)
	DegreeOfSeparation(ctx context.Context, from, to string) (model.Degree, error)
}

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	UserStrID   string `json:"user_str_id"  validate:"required,max=50"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
}

func (r *CreateUserRequest) normalize() {
	r.UserStrID = strings.TrimSpace(r.UserStrID)
	r.DisplayName = strings.TrimSpace(r.DisplayName)
}

// CreateUserResponse is returned for a newly registered user.
type CreateUserResponse struct {
	ID          string `json:"id"`
	UserStrID   string `json:"user_str_id"`
	DisplayName string `json:"display_name"`
	Status      string `json:"status"`
}

// UserHandler serves registration and the per-user friend queries.
type UserHandler struct {
	graph  SocialGraph
	logger *slog.Logger
}

func NewUserHandler(graph SocialGraph, logger *slog.Logger) *UserHandler {
	return &UserHandler{graph: graph, logger: logger}
}

// HandleCreate registers a user.
//
// HTTP: POST /api/users
// REQUEST BODY: {"user_str_id": "alice", "display_name": "Alice"}
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		h.logger.Debug("invalid create user request", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	user, err := h.graph.RegisterUser(r.Context(), req.UserStrID, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateUserResponse{
		ID:          user.ID,
		UserStrID:   user.UserStrID,
		DisplayName: user.DisplayName,
		Status:      "created",
	})
}

// HandleFriends lists a user's direct friends.
//
// HTTP: GET /api/users/{userStrID}/friends
func (h *UserHandler) HandleFriends(w http.ResponseWriter, r *http.Request) {
	users, err := h.graph.DirectFriends(r.Context(), chi.URLParam(r, "userStrID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFriends(users))
}

// HandleFriendsOfFriends lists users two hops away who are not already
// direct friends.
//
// HTTP: GET /api/users/{userStrID}/friends-of-friends
func (h *UserHandler) HandleFriendsOfFriends(w http.ResponseWriter, r *http.Request) {
	users, err := h.graph.FriendsOfFriends(r.Context(), chi.URLParam(r, "userStrID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFriends(users))
}

// toFriends projects users to the public friend shape. Always non-nil so an
// empty result encodes as [] rather than null.
func toFriends(users []model.User) []model.Friend {
	out := make([]model.Friend, 0, len(users))
	for _, u := range users {
		out = append(out, u.AsFriend())
	}
	return out
}
