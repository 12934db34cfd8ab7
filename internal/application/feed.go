package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/ericfisherdev/classfeed/internal/domain/model"
	"github.com/ericfisherdev/classfeed/internal/domain/port/driven"
)

// ErrNotSignedIn is returned by mutating feed operations while no session
// is held.
var ErrNotSignedIn = errors.New("not signed in")

// SessionReader exposes the in-memory session to services that only need to
// know who is signed in.
type SessionReader interface {
	Current() (*model.Credential, bool)
}

// FeedService keeps the local, ordered projection of the classroom feed and
// reconciles it with server responses. Mutations are applied only after the
// server confirms them. Likes are patched in place; every other structural
// change is followed by a full Resync.
type FeedService struct {
	api     driven.ClassroomAPI
	session SessionReader

	mu      sync.RWMutex
	posts   []model.Post
	applied uint64

	generation atomic.Uint64
	likes      singleflight.Group
}

// NewFeedService creates a FeedService with an empty (unloaded) feed.
func NewFeedService(api driven.ClassroomAPI, session SessionReader) *FeedService {
	return &FeedService{
		api:     api,
		session: session,
	}
}

// LoadFeed replaces the local list with the server snapshot, in server
// order. On error the previous list is kept. A response is dropped when the
// caller's context has ended or a newer load has already been applied.
func (s *FeedService) LoadFeed(ctx context.Context) ([]model.Post, error) {
	gen := s.generation.Add(1)

	posts, err := s.api.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen < s.applied {
		slog.Debug("discarding stale feed snapshot", "generation", gen, "applied", s.applied)
		return clonePosts(s.posts), nil
	}
	s.applied = gen
	s.posts = posts

	return clonePosts(posts), nil
}

// Resync is the full refetch used after structural mutations.
func (s *FeedService) Resync(ctx context.Context) error {
	_, err := s.LoadFeed(ctx)
	return err
}

// resyncAfter refreshes the feed after a confirmed mutation. A failed
// refresh does not fail the mutation.
func (s *FeedService) resyncAfter(ctx context.Context, op string) {
	if err := s.Resync(ctx); err != nil {
		slog.Warn("feed resync after mutation failed", "operation", op, "error", err)
	}
}

// CreatePost publishes a new status. Blank content is a no-op that returns
// (nil, nil) without contacting the server.
func (s *FeedService) CreatePost(ctx context.Context, content string) (*model.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	if _, err := s.requireSession(); err != nil {
		return nil, err
	}

	created, err := s.api.CreatePost(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.resyncAfter(ctx, "create post")

	if p, ok := s.Post(created.ID); ok {
		return &p, nil
	}
	return created, nil
}

// ToggleLike likes the post when the current user has not liked it in the
// local copy, and unlikes it otherwise. Only the post's Likes are replaced
// with the server's answer. Concurrent toggles of the same post share one
// request.
func (s *FeedService) ToggleLike(ctx context.Context, postID string) (*model.Post, error) {
	cred, err := s.requireSession()
	if err != nil {
		return nil, err
	}

	// The shared request outlives any single caller; each caller stops
	// waiting when its own context ends.
	ch := s.likes.DoChan(postID, func() (any, error) {
		return s.toggleLike(context.WithoutCancel(ctx), postID, cred.User.ID)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("toggle like: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			slog.Debug("like toggle coalesced", "post_id", postID)
		}
		post := res.Val.(model.Post).Clone()
		return &post, nil
	}
}

func (s *FeedService) toggleLike(ctx context.Context, postID, userID string) (model.Post, error) {
	local, _ := s.Post(postID)

	var (
		updated *model.Post
		err     error
	)
	if local.LikedBy(userID) {
		updated, err = s.api.Unlike(ctx, postID)
	} else {
		updated, err = s.api.Like(ctx, postID)
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("toggle like: %w", err)
	}

	if updated == nil || updated.ID == "" {
		// Nothing to patch from; fall back to the server's full view.
		s.resyncAfter(ctx, "toggle like")
		p, _ := s.Post(postID)
		return p, nil
	}

	return s.patchLikes(*updated), nil
}

// patchLikes swaps the likers of the matching local post for the server's
// value and leaves every other field alone.
func (s *FeedService) patchLikes(updated model.Post) model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.supersedeLoads()
	for i := range s.posts {
		if s.posts[i].ID == updated.ID {
			s.posts[i].Likes = append([]string{}, updated.Likes...)
			return s.posts[i].Clone()
		}
	}
	return updated.Clone()
}

// AddComment comments on a post and returns the post as reloaded from the
// server. Blank content is a no-op that returns (nil, nil).
func (s *FeedService) AddComment(ctx context.Context, postID, content string) (*model.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	if _, err := s.requireSession(); err != nil {
		return nil, err
	}

	updated, err := s.api.AddComment(ctx, postID, content)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	s.resyncAfter(ctx, "add comment")

	if p, ok := s.Post(postID); ok {
		return &p, nil
	}
	return updated, nil
}

// DeletePost deletes a post and, once the server confirms, drops it from the
// local list. A failed delete leaves the list untouched.
func (s *FeedService) DeletePost(ctx context.Context, postID string) error {
	if _, err := s.requireSession(); err != nil {
		return err
	}

	if err := s.api.DeletePost(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.supersedeLoads()
	kept := s.posts[:0:0]
	for _, p := range s.posts {
		if p.ID != postID {
			kept = append(kept, p)
		}
	}
	s.posts = kept

	return nil
}

// DeleteComment deletes a comment and resyncs the feed once the server
// confirms.
func (s *FeedService) DeleteComment(ctx context.Context, postID, commentID string) error {
	if _, err := s.requireSession(); err != nil {
		return err
	}

	if err := s.api.DeleteComment(ctx, postID, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	s.resyncAfter(ctx, "delete comment")
	return nil
}

// Posts returns a deep copy of the local list.
func (s *FeedService) Posts() []model.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(s.posts)
}

// Post returns a deep copy of the local post with the given ID.
func (s *FeedService) Post(id string) (model.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return model.Post{}, false
}

// supersedeLoads makes every load already in flight stale so it cannot undo
// a local patch. Callers must hold s.mu.
func (s *FeedService) supersedeLoads() {
	s.applied = s.generation.Add(1)
}

func (s *FeedService) requireSession() (*model.Credential, error) {
	cred, ok := s.session.Current()
	if !ok {
		return nil, ErrNotSignedIn
	}
	return cred, nil
}

func clonePosts(posts []model.Post) []model.Post {
	out := make([]model.Post, len(posts))
	for i, p := range posts {
		out[i] = p.Clone()
	}
	return out
}
