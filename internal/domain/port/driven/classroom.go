package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/classfeed/internal/domain/model"
)

// ErrNetwork is wrapped by every error for a request that never produced an
// HTTP response (DNS failure, refused connection, timeout).
var ErrNetwork = errors.New("network error")

// APIError is returned when the classroom server answered with a non-2xx
// status. Message is the server's error message verbatim when it sent one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("classroom api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("classroom api: status %d: %s", e.StatusCode, e.Message)
}

// TokenSource resolves the bearer token to attach to an outgoing request.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Authenticator defines the driven port for the sign-in endpoint. The
// returned credential may carry an empty Token if the server omitted it;
// callers decide whether that is an error.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*model.Credential, error)
}

// ClassroomAPI defines the driven port for the classroom REST API.
// Mutating methods rely on the adapter's TokenSource for authorization.
type ClassroomAPI interface {
	Authenticator

	// Read methods

	ListClassmates(ctx context.Context) ([]model.Classmate, error)
	ListClassmatesByYear(ctx context.Context, year string) ([]model.Classmate, error)
	ListPosts(ctx context.Context) ([]model.Post, error)

	// Write methods

	CreatePost(ctx context.Context, content string) (*model.Post, error)
	DeletePost(ctx context.Context, postID string) error
	// AddComment returns the parent post as the server sees it after the write.
	AddComment(ctx context.Context, postID, content string) (*model.Post, error)
	// DeleteComment needs the parent post ID; the server expects it in the body.
	DeleteComment(ctx context.Context, postID, commentID string) error
	// Like and Unlike return the post with its authoritative likers.
	Like(ctx context.Context, postID string) (*model.Post, error)
	Unlike(ctx context.Context, postID string) (*model.Post, error)
}
