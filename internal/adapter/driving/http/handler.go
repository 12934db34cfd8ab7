package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/classfeed/internal/application"
)

// maxBodyBytes caps request bodies; posts and comments are short text.
const maxBodyBytes = 1 << 20

// Handler is the HTTP driving adapter that serves the local REST API.
type Handler struct {
	session    *application.SessionService
	feed       *application.FeedService
	classmates *application.ClassmateService
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	session *application.SessionService,
	feed *application.FeedService,
	classmates *application.ClassmateService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		session:    session,
		feed:       feed,
		classmates: classmates,
		logger:     logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with request ID, logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)

	mux.HandleFunc("GET /api/v1/session", h.GetSession)
	mux.HandleFunc("POST /api/v1/session", h.SignIn)
	mux.HandleFunc("DELETE /api/v1/session", h.SignOut)

	mux.HandleFunc("GET /api/v1/classmates", h.ListClassmates)

	mux.HandleFunc("GET /api/v1/feed", h.GetFeed)
	mux.HandleFunc("POST /api/v1/feed/posts", h.CreatePost)
	mux.HandleFunc("DELETE /api/v1/feed/posts/{id}", h.DeletePost)
	mux.HandleFunc("POST /api/v1/feed/posts/{id}/like", h.ToggleLike)
	mux.HandleFunc("POST /api/v1/feed/posts/{id}/comments", h.AddComment)
	mux.HandleFunc("DELETE /api/v1/feed/posts/{id}/comments/{commentID}", h.DeleteComment)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetSession reports who is signed in.
func (h *Handler) GetSession(w http.ResponseWriter, _ *http.Request) {
	cred, ok := h.session.Current()
	if !ok {
		writeJSON(w, http.StatusOK, SessionResponse{SignedIn: false})
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{SignedIn: true, User: toUserResponse(cred.User)})
}

// SignIn exchanges email and password for a session.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	cred, err := h.session.SignIn(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		h.fail(w, r, "sign in failed", err)
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{SignedIn: true, User: toUserResponse(cred.User)})
}

// SignOut ends the session. Signing out twice is not an error.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.session.SignOut(r.Context()); err != nil {
		h.fail(w, r, "sign out failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListClassmates returns the directory, optionally filtered by ?year=.
func (h *Handler) ListClassmates(w http.ResponseWriter, r *http.Request) {
	mates, err := h.classmates.List(r.Context(), r.URL.Query().Get("year"))
	if err != nil {
		h.fail(w, r, "failed to list classmates", err)
		return
	}

	resp := make([]ClassmateResponse, 0, len(mates))
	for _, m := range mates {
		resp = append(resp, toClassmateResponse(m))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetFeed reloads the feed. When the reload fails the last loaded posts are
// returned with stale set.
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	viewer := h.session.UserID()

	posts, err := h.feed.LoadFeed(r.Context())
	if err != nil {
		h.logger.Warn("feed refresh failed; serving last loaded feed",
			"error", err,
			"request_id", RequestID(r.Context()),
		)
		writeJSON(w, http.StatusOK, FeedResponse{
			Posts: toPostResponses(h.feed.Posts(), viewer),
			Stale: true,
			Error: application.UserMessage(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, FeedResponse{Posts: toPostResponses(posts, viewer)})
}

// CreatePost publishes a status update.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	post, err := h.feed.CreatePost(r.Context(), req.Content)
	if err != nil {
		h.fail(w, r, "failed to create post", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPostResponse(*post, h.session.UserID()))
}

// DeletePost deletes one of the caller's posts.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.feed.DeletePost(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, "failed to delete post", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleLike likes or unlikes a post depending on its current state.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	post, err := h.feed.ToggleLike(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "failed to toggle like", err)
		return
	}

	writeJSON(w, http.StatusOK, toPostResponse(*post, h.session.UserID()))
}

// AddComment comments on a post and returns the reloaded post.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	post, err := h.feed.AddComment(r.Context(), r.PathValue("id"), req.Content)
	if err != nil {
		h.fail(w, r, "failed to add comment", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPostResponse(*post, h.session.UserID()))
}

// DeleteComment deletes one of the caller's comments.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	err := h.feed.DeleteComment(r.Context(), r.PathValue("id"), r.PathValue("commentID"))
	if err != nil {
		h.fail(w, r, "failed to delete comment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail logs err and writes the mapped status with a user-facing message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusForError(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, msg,
		"error", err,
		"status", status,
		"request_id", RequestID(r.Context()),
	)
	writeError(w, status, application.UserMessage(err))
}

// decodeBody decodes a JSON request body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
