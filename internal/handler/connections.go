package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/social-connections/internal/apperror"
)

// ConnectionRequest is the body of POST and DELETE /api/connections.
type ConnectionRequest struct {
	User1StrID string `json:"user1_str_id" validate:"required,max=50"`
	User2StrID string `json:"user2_str_id" validate:"required,max=50"`
}

func (r *ConnectionRequest) normalize() {
	r.User1StrID = strings.TrimSpace(r.User1StrID)
	r.User2StrID = strings.TrimSpace(r.User2StrID)
}

// ConnectionHandler serves the edge commands and the degree query.
type ConnectionHandler struct {
	graph  SocialGraph
	logger *slog.Logger
}

func NewConnectionHandler(graph SocialGraph, logger *slog.Logger) *ConnectionHandler {
	return &ConnectionHandler{graph: graph, logger: logger}
}

// HandleCreate connects two users.
//
// HTTP: POST /api/connections
// REQUEST BODY: {"user1_str_id": "alice", "user2_str_id": "bob"}
func (h *ConnectionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req ConnectionRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	status, err := h.graph.CreateConnection(r.Context(), req.User1StrID, req.User2StrID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, StatusResponse{Status: status})
}

// HandleRemove disconnects two users.
//
// HTTP: DELETE /api/connections
// REQUEST BODY: same as HandleCreate
//
// A body on DELETE is unusual but allowed; it keeps the two commands
// symmetric.
func (h *ConnectionHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	var req ConnectionRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	status, err := h.graph.RemoveConnection(r.Context(), req.User1StrID, req.User2StrID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: status})
}

// HandleDegree reports the degree of separation between two users.
//
// HTTP: GET /api/connections/degree?from_user_str_id=alice&to_user_str_id=dave
//
// RESPONSE:
//
//	{"degree": 3}
//	{"degree": -1, "message": "not_connected"}
//
// "not_connected" is a 200: the query succeeded, there is just no path.
func (h *ConnectionHandler) HandleDegree(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := strings.TrimSpace(q.Get("from_user_str_id"))
	to := strings.TrimSpace(q.Get("to_user_str_id"))
	if from == "" || to == "" {
		writeError(w, apperror.ValidationFailed("from_user_str_id",
			"Both from_user_str_id and to_user_str_id are required."))
		return
	}

	degree, err := h.graph.DegreeOfSeparation(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, degree)
}
