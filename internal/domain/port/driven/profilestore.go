package driven

import (
	"context"

	"github.com/ericfisherdev/classfeed/internal/domain/model"
)

// ProfileStore defines the driven port for the signed-in identity snapshot.
// It holds at most one profile. Get returns (nil, nil) when none is stored.
type ProfileStore interface {
	Get(ctx context.Context) (*model.User, error)
	Save(ctx context.Context, user model.User) error
	Clear(ctx context.Context) error
}
