package application_test

import (
	"context"
	"sync"

	"github.com/ericfisherdev/classfeed/internal/domain/model"
	"github.com/ericfisherdev/classfeed/internal/domain/port/driven"
)

// --- Mock implementations shared by the service tests ---

type mockClassroomAPI struct {
	mu sync.Mutex

	credential *model.Credential
	signInErr  error

	classmates       []model.Classmate
	classmatesByYear map[string][]model.Classmate
	classmatesErr    error
	yearsRequested   []string

	posts     []model.Post
	listErr   error
	listCalls int
	// listHook runs before ListPosts returns; used to block or reorder loads.
	listHook func(ctx context.Context, call int)

	createErr   error
	createCalls int
	commentErr  error
	deleteErr   error
	deleteCalls int

	likeCalls   int
	unlikeCalls int
	likeErr     error
	// likeHook runs inside Like before it returns.
	likeHook func()
}

func (m *mockClassroomAPI) SignIn(_ context.Context, _, _ string) (*model.Credential, error) {
	if m.signInErr != nil {
		return nil, m.signInErr
	}
	return m.credential, nil
}

func (m *mockClassroomAPI) ListClassmates(_ context.Context) ([]model.Classmate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.yearsRequested = append(m.yearsRequested, "")
	return append([]model.Classmate(nil), m.classmates...), m.classmatesErr
}

func (m *mockClassroomAPI) ListClassmatesByYear(_ context.Context, year string) ([]model.Classmate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.yearsRequested = append(m.yearsRequested, year)
	return append([]model.Classmate(nil), m.classmatesByYear[year]...), m.classmatesErr
}

func (m *mockClassroomAPI) ListPosts(ctx context.Context) ([]model.Post, error) {
	m.mu.Lock()
	m.listCalls++
	call := m.listCalls
	hook := m.listHook
	m.mu.Unlock()

	if hook != nil {
		hook(ctx, call)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]model.Post, len(m.posts))
	for i, p := range m.posts {
		out[i] = p.Clone()
	}
	return out, nil
}

func (m *mockClassroomAPI) CreatePost(_ context.Context, content string) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	post := model.Post{ID: "new-post", Content: content, Likes: []string{}, Comments: []model.Comment{}}
	m.posts = append([]model.Post{post}, m.posts...)
	return &post, nil
}

func (m *mockClassroomAPI) DeletePost(_ context.Context, postID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.posts = removePost(m.posts, postID)
	return nil
}

func (m *mockClassroomAPI) AddComment(_ context.Context, postID, content string) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commentErr != nil {
		return nil, m.commentErr
	}
	for i := range m.posts {
		if m.posts[i].ID == postID {
			m.posts[i].Comments = append(m.posts[i].Comments, model.Comment{ID: "new-comment", Content: content})
			p := m.posts[i].Clone()
			return &p, nil
		}
	}
	return nil, &driven.APIError{StatusCode: 404, Message: "Status not found"}
}

func (m *mockClassroomAPI) DeleteComment(_ context.Context, postID, commentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i := range m.posts {
		if m.posts[i].ID != postID {
			continue
		}
		kept := []model.Comment{}
		for _, c := range m.posts[i].Comments {
			if c.ID != commentID {
				kept = append(kept, c)
			}
		}
		m.posts[i].Comments = kept
	}
	return nil
}

func (m *mockClassroomAPI) Like(ctx context.Context, postID string) (*model.Post, error) {
	m.mu.Lock()
	m.likeCalls++
	hook := m.likeHook
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	// A real transport aborts once the request context is done.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.setLiked(postID, true)
}

func (m *mockClassroomAPI) Unlike(_ context.Context, postID string) (*model.Post, error) {
	m.mu.Lock()
	m.unlikeCalls++
	m.mu.Unlock()
	return m.setLiked(postID, false)
}

// setLiked toggles likerID on the server copy and returns a deliberately
// sparse post, the way the server answers like requests.
func (m *mockClassroomAPI) setLiked(postID string, liked bool) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.likeErr != nil {
		return nil, m.likeErr
	}
	for i := range m.posts {
		if m.posts[i].ID != postID {
			continue
		}
		likes := []string{}
		for _, id := range m.posts[i].Likes {
			if id != likerID {
				likes = append(likes, id)
			}
		}
		if liked {
			likes = append(likes, likerID)
		}
		m.posts[i].Likes = likes
		return &model.Post{ID: postID, Likes: append([]string{}, likes...)}, nil
	}
	return nil, &driven.APIError{StatusCode: 404, Message: "Status not found"}
}

func (m *mockClassroomAPI) counts() (list, create, like, unlike, del int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls, m.createCalls, m.likeCalls, m.unlikeCalls, m.deleteCalls
}

func removePost(posts []model.Post, id string) []model.Post {
	out := []model.Post{}
	for _, p := range posts {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// likerID is the user the mock classroom treats as the caller.
const likerID = "me"

type mockSecretStore struct {
	values    map[string]string
	setErr    error
	getErr    error
	deleteErr error
	deletes   int
}

func newMockSecretStore() *mockSecretStore {
	return &mockSecretStore{values: map[string]string{}}
}

func (m *mockSecretStore) Set(_ context.Context, name, plaintext string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[name] = plaintext
	return nil
}

func (m *mockSecretStore) Get(_ context.Context, name string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.values[name], nil
}

func (m *mockSecretStore) Delete(_ context.Context, name string) error {
	m.deletes++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.values, name)
	return nil
}

type mockProfileStore struct {
	user *model.User
}

func (m *mockProfileStore) Get(_ context.Context) (*model.User, error) {
	if m.user == nil {
		return nil, nil
	}
	u := *m.user
	return &u, nil
}

func (m *mockProfileStore) Save(_ context.Context, user model.User) error {
	m.user = &user
	return nil
}

func (m *mockProfileStore) Clear(_ context.Context) error {
	m.user = nil
	return nil
}

// staticSession is a SessionReader with a fixed credential.
type staticSession struct {
	cred *model.Credential
}

func (s staticSession) Current() (*model.Credential, bool) {
	if s.cred == nil {
		return nil, false
	}
	c := *s.cred
	return &c, true
}

func signedInAs(userID string) staticSession {
	return staticSession{cred: &model.Credential{Token: "tok", User: model.User{ID: userID}}}
}
