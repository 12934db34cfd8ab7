package cli_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/classfeed/internal/adapter/driving/cli"
	"github.com/ericfisherdev/classfeed/internal/application"
	"github.com/ericfisherdev/classfeed/internal/domain/model"
	"github.com/ericfisherdev/classfeed/internal/domain/port/driven"
)

// --- Mock implementations ---

type fakeClassroom struct {
	mu          sync.Mutex
	posts       []model.Post
	classmates  []model.Classmate
	lastEmail   string
	likeCalls   int
	unlikeCalls int
	deleted     []string
}

func (f *fakeClassroom) SignIn(_ context.Context, email, password string) (*model.Credential, error) {
	f.lastEmail = email
	if password != "secret" {
		return nil, &driven.APIError{StatusCode: 401, Message: "Invalid email or password"}
	}
	return &model.Credential{Token: "tok", User: model.User{ID: "me", FirstName: "Ann", LastName: "Lee", Email: email, Role: "student"}}, nil
}

func (f *fakeClassroom) ListClassmates(_ context.Context) ([]model.Classmate, error) {
	return f.classmates, nil
}

func (f *fakeClassroom) ListClassmatesByYear(_ context.Context, year string) ([]model.Classmate, error) {
	var out []model.Classmate
	for _, c := range f.classmates {
		if c.Education != nil && c.Education.EnrollmentYear == year {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeClassroom) ListPosts(_ context.Context) ([]model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Post, len(f.posts))
	for i, p := range f.posts {
		out[i] = p.Clone()
	}
	return out, nil
}

func (f *fakeClassroom) CreatePost(_ context.Context, content string) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := model.Post{ID: "p-new", Content: content}
	f.posts = append([]model.Post{p}, f.posts...)
	return &p, nil
}

func (f *fakeClassroom) DeletePost(_ context.Context, postID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, postID)
	kept := []model.Post{}
	for _, p := range f.posts {
		if p.ID != postID {
			kept = append(kept, p)
		}
	}
	f.posts = kept
	return nil
}

func (f *fakeClassroom) AddComment(_ context.Context, postID, content string) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].ID == postID {
			f.posts[i].Comments = append(f.posts[i].Comments, model.Comment{ID: "c-new", Content: content})
			p := f.posts[i].Clone()
			return &p, nil
		}
	}
	return nil, &driven.APIError{StatusCode: 404, Message: "Status not found"}
}

func (f *fakeClassroom) DeleteComment(_ context.Context, _, commentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, commentID)
	return nil
}

func (f *fakeClassroom) Like(_ context.Context, postID string) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.likeCalls++
	return &model.Post{ID: postID, Likes: []string{"x", "me"}}, nil
}

func (f *fakeClassroom) Unlike(_ context.Context, postID string) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlikeCalls++
	return &model.Post{ID: postID, Likes: []string{"x"}}, nil
}

type memSecrets struct{ values map[string]string }

func (m *memSecrets) Set(_ context.Context, name, v string) error { m.values[name] = v; return nil }
func (m *memSecrets) Get(_ context.Context, name string) (string, error) {
	return m.values[name], nil
}
func (m *memSecrets) Delete(_ context.Context, name string) error {
	delete(m.values, name)
	return nil
}

type memProfile struct{ user *model.User }

func (m *memProfile) Get(_ context.Context) (*model.User, error) { return m.user, nil }
func (m *memProfile) Save(_ context.Context, u model.User) error {
	m.user = &u
	return nil
}
func (m *memProfile) Clear(_ context.Context) error { m.user = nil; return nil }

// --- Test helpers ---

type testEnv struct {
	api     *fakeClassroom
	secrets *memSecrets
	session *application.SessionService
	out     *bytes.Buffer
	errOut  *bytes.Buffer
	app     *cli.App
}

func newEnv(t *testing.T, api *fakeClassroom) *testEnv {
	t.Helper()
	secrets := &memSecrets{values: map[string]string{}}
	session := application.NewSessionService(api, secrets, &memProfile{})
	env := &testEnv{
		api:     api,
		secrets: secrets,
		session: session,
		out:     &bytes.Buffer{},
		errOut:  &bytes.Buffer{},
	}
	env.app = &cli.App{
		Session:    session,
		Feed:       application.NewFeedService(api, session),
		Classmates: application.NewClassmateService(api),
		In:         strings.NewReader(""),
		Out:        env.out,
		Err:        env.errOut,
	}
	return env
}

func (e *testEnv) run(args ...string) int {
	e.out.Reset()
	e.errOut.Reset()
	return cli.Execute(context.Background(), e.app, args)
}

func (e *testEnv) signIn(t *testing.T) {
	t.Helper()
	_, err := e.session.SignIn(context.Background(), "ann@kku.ac.th", "secret")
	require.NoError(t, err)
}

func seedPosts() []model.Post {
	return []model.Post{
		{ID: "p2", Content: "exam moved\nto friday", CreatedBy: model.Creator{ID: "x", Email: "x@kku.ac.th"}, Likes: []string{"me"},
			Comments: []model.Comment{{ID: "c1", Content: "thanks", CreatedBy: model.Creator{Email: "me@kku.ac.th"}}}},
		{ID: "p1", Content: "hello", CreatedBy: model.Creator{ID: "me", Email: "ann@kku.ac.th"}},
	}
}

// --- Tests ---

func TestLogin_WithFlags(t *testing.T) {
	env := newEnv(t, &fakeClassroom{})

	code := env.run("login", "--email", " ann@kku.ac.th ", "--password", "secret")

	assert.Equal(t, 0, code)
	assert.Contains(t, env.out.String(), "Signed in as Ann Lee")
	assert.Equal(t, "ann@kku.ac.th", env.api.lastEmail)
	assert.Equal(t, "tok", env.secrets.values[application.TokenSecretName])
}

func TestLogin_PromptsForMissingValues(t *testing.T) {
	env := newEnv(t, &fakeClassroom{})
	env.app.In = strings.NewReader("ann@kku.ac.th\nsecret\n")

	code := env.run("login")

	assert.Equal(t, 0, code, env.errOut.String())
	assert.Contains(t, env.errOut.String(), "Email: ")
	assert.Contains(t, env.errOut.String(), "Password: ")
	assert.Contains(t, env.out.String(), "Signed in as Ann Lee")
}

func TestLogin_RejectedShowsServerMessage(t *testing.T) {
	env := newEnv(t, &fakeClassroom{})

	code := env.run("login", "--email", "ann@kku.ac.th", "--password", "nope")

	assert.Equal(t, 1, code)
	assert.Contains(t, env.errOut.String(), "Invalid email or password")
	_, ok := env.session.Current()
	assert.False(t, ok)
}

func TestLogoutAndWhoami(t *testing.T) {
	env := newEnv(t, &fakeClassroom{})
	env.signIn(t)

	require.Equal(t, 0, env.run("whoami"))
	assert.Contains(t, env.out.String(), "Ann Lee <ann@kku.ac.th>")

	require.Equal(t, 0, env.run("logout"))
	assert.Contains(t, env.out.String(), "Signed out")
	assert.Empty(t, env.secrets.values)

	assert.Equal(t, 1, env.run("whoami"))
	assert.Contains(t, env.errOut.String(), "you are not signed in")
	assert.Contains(t, env.errOut.String(), "classfeed login")
}

func TestClassmates(t *testing.T) {
	api := &fakeClassroom{classmates: []model.Classmate{
		{ID: "a", FirstName: "Old", LastName: "Timer", Education: &model.Education{Major: "CS", EnrollmentYear: "2563"}},
		{ID: "b", FirstName: "New", LastName: "Comer", Education: &model.Education{Major: "CS", EnrollmentYear: "2566", StudentID: "663380001-1"}},
	}}
	env := newEnv(t, api)

	require.Equal(t, 0, env.run("classmates"))
	out := env.out.String()
	assert.Contains(t, out, "663380001-1")
	assert.Less(t, strings.Index(out, "New Comer"), strings.Index(out, "Old Timer"))
	assert.Contains(t, out, "2 classmates")

	require.Equal(t, 0, env.run("classmates", "--year", "2563"))
	assert.Contains(t, env.out.String(), "Old Timer")
	assert.NotContains(t, env.out.String(), "New Comer")

	require.Equal(t, 0, env.run("classmates", "--year", "2500"))
	assert.Contains(t, env.out.String(), "No classmates found.")
}

func TestFeed(t *testing.T) {
	env := newEnv(t, &fakeClassroom{posts: seedPosts()})
	env.signIn(t)

	require.Equal(t, 0, env.run("feed", "--comments"))
	out := env.out.String()
	assert.Contains(t, out, "exam moved to friday")
	assert.Contains(t, out, "♥")
	assert.Contains(t, out, "[c1] me@kku.ac.th: thanks")
	assert.Less(t, strings.Index(out, "p2"), strings.Index(out, "p1"))
}

func TestPost(t *testing.T) {
	env := newEnv(t, &fakeClassroom{})
	env.signIn(t)

	require.Equal(t, 0, env.run("post", "hello", "class"))
	assert.Contains(t, env.out.String(), "Posted p-new")
	assert.Equal(t, "hello class", env.api.posts[0].Content)

	assert.Equal(t, 1, env.run("post", "  "))
	assert.Contains(t, env.errOut.String(), "content is required")
}

func TestPost_NotSignedIn(t *testing.T) {
	env := newEnv(t, &fakeClassroom{})

	assert.Equal(t, 1, env.run("post", "hello"))
	assert.Contains(t, env.errOut.String(), "you are not signed in")
	assert.Empty(t, env.api.posts)
}

func TestLike_LoadsFeedToPickDirection(t *testing.T) {
	env := newEnv(t, &fakeClassroom{posts: seedPosts()})
	env.signIn(t)

	// p2 is already liked by "me" on the server, so the command unlikes it.
	require.Equal(t, 0, env.run("like", "p2"))
	assert.Contains(t, env.out.String(), "Unliked p2 (1 likes)")
	assert.Equal(t, 1, env.api.unlikeCalls)

	require.Equal(t, 0, env.run("like", "p1"))
	assert.Contains(t, env.out.String(), "Liked p1 (2 likes)")
	assert.Equal(t, 1, env.api.likeCalls)
}

func TestComment(t *testing.T) {
	env := newEnv(t, &fakeClassroom{posts: seedPosts()})
	env.signIn(t)

	require.Equal(t, 0, env.run("comment", "p1", "see", "you"))
	assert.Contains(t, env.out.String(), "Commented on p1 (1 comments)")

	assert.Equal(t, 1, env.run("comment", "p1", " "))
	assert.Contains(t, env.errOut.String(), "content is required")
}

func TestRmPostAndRmComment(t *testing.T) {
	env := newEnv(t, &fakeClassroom{posts: seedPosts()})
	env.signIn(t)

	require.Equal(t, 0, env.run("rm-post", "p1"))
	assert.Contains(t, env.out.String(), "Deleted post p1 (1 posts left)")

	require.Equal(t, 0, env.run("rm-comment", "p2", "c1"))
	assert.Contains(t, env.out.String(), "Deleted comment c1")
	assert.Equal(t, []string{"p1", "c1"}, env.api.deleted)
}

func TestServe_RunsServeFunc(t *testing.T) {
	env := newEnv(t, &fakeClassroom{})
	called := false
	env.app.Serve = func(context.Context) error {
		called = true
		return nil
	}

	require.Equal(t, 0, env.run("serve"))
	assert.True(t, called)
}

func TestUnknownCommandFails(t *testing.T) {
	env := newEnv(t, &fakeClassroom{})

	assert.Equal(t, 1, env.run("bogus"))
	assert.Contains(t, env.errOut.String(), "unknown command")
}
