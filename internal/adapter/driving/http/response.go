package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ericfisherdev/classfeed/internal/application"
	"github.com/ericfisherdev/classfeed/internal/domain/model"
	"github.com/ericfisherdev/classfeed/internal/domain/port/driven"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// statusForError maps a service error to the HTTP status reported to the
// local client. Upstream 4xx statuses pass through; upstream failures are 502.
func statusForError(err error) int {
	var (
		authErr *application.AuthError
		apiErr  *driven.APIError
	)
	switch {
	case errors.Is(err, application.ErrNotSignedIn):
		return http.StatusUnauthorized
	case errors.Is(err, driven.ErrNetwork):
		return http.StatusBadGateway
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 500:
		return http.StatusBadGateway
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// SignInRequest is the JSON body for the sign-in endpoint.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ContentRequest is the JSON body for creating posts and comments.
type ContentRequest struct {
	Content string `json:"content"`
}

// UserResponse is the JSON representation of the signed-in user.
type UserResponse struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Type        string `json:"type"`
	Confirmed   bool   `json:"confirmed"`
	Image       string `json:"image"`
}

// SessionResponse describes the current session. The token is never exposed.
type SessionResponse struct {
	SignedIn bool          `json:"signed_in"`
	User     *UserResponse `json:"user,omitempty"`
}

// CreatorResponse is the owner embedding on posts and comments.
type CreatorResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Image string `json:"image"`
}

// CommentResponse is the JSON representation of a comment.
type CommentResponse struct {
	ID          string          `json:"id"`
	Content     string          `json:"content"`
	ContentHTML string          `json:"content_html"`
	CreatedBy   CreatorResponse `json:"created_by"`
	LikeCount   int             `json:"like_count"`
	IsOwner     bool            `json:"is_owner"`
	CreatedAt   string          `json:"created_at"`
}

// PostResponse is the JSON representation of a feed post.
type PostResponse struct {
	ID           string            `json:"id"`
	Content      string            `json:"content"`
	ContentHTML  string            `json:"content_html"`
	CreatedBy    CreatorResponse   `json:"created_by"`
	Likes        []string          `json:"likes"`
	LikeCount    int               `json:"like_count"`
	LikedByMe    bool              `json:"liked_by_me"`
	IsOwner      bool              `json:"is_owner"`
	Comments     []CommentResponse `json:"comments"`
	CommentCount int               `json:"comment_count"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
}

// FeedResponse wraps the feed. Stale is set when the refresh failed and the
// posts are the last successfully loaded list.
type FeedResponse struct {
	Posts []PostResponse `json:"posts"`
	Stale bool           `json:"stale"`
	Error string         `json:"error,omitempty"`
}

// EducationResponse is a classmate's enrollment record.
type EducationResponse struct {
	Major          string `json:"major"`
	EnrollmentYear string `json:"enrollment_year"`
	StudentID      string `json:"student_id"`
}

// ClassmateResponse is the JSON representation of a classmate.
type ClassmateResponse struct {
	ID        string             `json:"id"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Email     string             `json:"email"`
	Role      string             `json:"role"`
	Type      string             `json:"type"`
	Education *EducationResponse `json:"education,omitempty"`
}

func toUserResponse(u model.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DisplayName: u.DisplayName(),
		Email:       u.Email,
		Role:        u.Role,
		Type:        u.Type,
		Confirmed:   u.Confirmed,
		Image:       u.Image,
	}
}

func toCreatorResponse(c model.Creator) CreatorResponse {
	return CreatorResponse{ID: c.ID, Email: c.Email, Image: c.Image}
}

// formatTime renders t as RFC 3339, or "" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// toPostResponse converts a domain Post for viewerID, who may be "".
func toPostResponse(p model.Post, viewerID string) PostResponse {
	likes := p.Likes
	if likes == nil {
		likes = []string{}
	}

	comments := make([]CommentResponse, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, CommentResponse{
			ID:          c.ID,
			Content:     c.Content,
			ContentHTML: RenderContent(c.Content),
			CreatedBy:   toCreatorResponse(c.CreatedBy),
			LikeCount:   len(c.Likes),
			IsOwner:     viewerID != "" && c.CreatedBy.ID == viewerID,
			CreatedAt:   formatTime(c.CreatedAt),
		})
	}

	return PostResponse{
		ID:           p.ID,
		Content:      p.Content,
		ContentHTML:  RenderContent(p.Content),
		CreatedBy:    toCreatorResponse(p.CreatedBy),
		Likes:        likes,
		LikeCount:    len(likes),
		LikedByMe:    p.LikedBy(viewerID),
		IsOwner:      p.OwnedBy(viewerID),
		Comments:     comments,
		CommentCount: len(comments),
		CreatedAt:    formatTime(p.CreatedAt),
		UpdatedAt:    formatTime(p.UpdatedAt),
	}
}

func toPostResponses(posts []model.Post, viewerID string) []PostResponse {
	resp := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, toPostResponse(p, viewerID))
	}
	return resp
}

func toClassmateResponse(c model.Classmate) ClassmateResponse {
	resp := ClassmateResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Role:      c.Role,
		Type:      c.Type,
	}
	if c.Education != nil {
		resp.Education = &EducationResponse{
			Major:          c.Education.Major,
			EnrollmentYear: c.Education.EnrollmentYear,
			StudentID:      c.Education.StudentID,
		}
	}
	return resp
}
