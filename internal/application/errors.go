package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/classfeed/internal/domain/port/driven"
)

// GenericErrorMessage is the UserMessage for errors with no better description.
const GenericErrorMessage = "something went wrong"

// UserMessage returns the text to show a user for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		authErr *AuthError
		apiErr  *driven.APIError
	)
	switch {
	case errors.Is(err, ErrNotSignedIn):
		return "you are not signed in"
	case errors.As(err, &authErr):
		return authErr.Message
	case errors.Is(err, driven.ErrNetwork):
		return "network error"
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fmt.Sprintf("request failed (status %d)", apiErr.StatusCode)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "request cancelled"
	default:
		return GenericErrorMessage
	}
}
