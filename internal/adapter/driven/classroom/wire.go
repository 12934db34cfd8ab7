package classroom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ericfisherdev/classfeed/internal/domain/model"
)

// userJSON is the user payload of the sign-in response. Token is only
// present on sign-in.
type userJSON struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Type      string `json:"type"`
	Confirmed bool   `json:"confirmed"`
	Image     string `json:"image,omitempty"`
	Token     string `json:"token,omitempty"`
}

// creatorJSON accepts both a populated owner object and a bare owner ID.
type creatorJSON struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
}

func (c *creatorJSON) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &c.ID)
	}

	type plain creatorJSON
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*c = creatorJSON(p)
	return nil
}

// idList decodes liker arrays whose entries are either user IDs or
// populated user objects.
type idList []string

func (l *idList) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	ids := make([]string, 0, len(raw))
	for _, entry := range raw {
		var id string
		if err := json.Unmarshal(entry, &id); err == nil {
			ids = append(ids, id)
			continue
		}

		var obj struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(entry, &obj); err == nil && obj.ID != "" {
			ids = append(ids, obj.ID)
			continue
		}

		return fmt.Errorf("unsupported liker entry %s", entry)
	}

	*l = ids
	return nil
}

type commentJSON struct {
	ID        string      `json:"_id"`
	Content   string      `json:"content"`
	CreatedBy creatorJSON `json:"createdBy"`
	Like      idList      `json:"like"`
	CreatedAt string      `json:"createdAt"`
	UpdatedAt string      `json:"updatedAt"`
}

// statusJSON is a feed post as the server names it.
type statusJSON struct {
	ID        string        `json:"_id"`
	Content   string        `json:"content"`
	CreatedBy creatorJSON   `json:"createdBy"`
	Like      idList        `json:"like"`
	Comment   []commentJSON `json:"comment"`
	CreatedAt string        `json:"createdAt"`
	UpdatedAt string        `json:"updatedAt"`
}

type educationJSON struct {
	Major          string     `json:"major"`
	EnrollmentYear flexString `json:"enrollmentYear"`
	StudentID      flexString `json:"studentId"`
}

// flexString accepts a JSON string or number; the server is not consistent
// about enrollment years and student IDs.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

type classmateJSON struct {
	ID        string         `json:"_id"`
	FirstName string         `json:"firstname"`
	LastName  string         `json:"lastname"`
	Email     string         `json:"email"`
	Role      string         `json:"role"`
	Type      string         `json:"type"`
	Education *educationJSON `json:"education,omitempty"`
}

// Request bodies.

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type contentRequest struct {
	Content string `json:"content"`
}

type statusRefRequest struct {
	StatusID string `json:"statusId"`
}

type commentRequest struct {
	StatusID string `json:"statusId"`
	Content  string `json:"content"`
}

// unwrap returns the payload of a response body: the value of a non-null
// top-level "data" field when present, otherwise the body itself.
func unwrap(body []byte) []byte {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return body
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return body
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return body
	}
	return data
}

// decodeObject decodes a single-object response wrapped in "data".
func decodeObject[T any](body []byte) (T, error) {
	var out T
	payload := unwrap(body)
	if len(payload) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// decodeList decodes a list response that is either a bare array or an
// array wrapped in "data". Anything else decodes to an empty list.
func decodeList[T any](body []byte) ([]T, error) {
	payload := unwrap(body)
	if len(payload) == 0 || payload[0] != '[' {
		return []T{}, nil
	}

	var out []T
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// parseTimestamp parses the server's ISO-8601 timestamps. Unparseable or
// missing values become the zero time.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// mapCredential converts a sign-in payload to a domain Credential.
func mapCredential(u userJSON) *model.Credential {
	return &model.Credential{
		Token: u.Token,
		User: model.User{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Role:      u.Role,
			Type:      u.Type,
			Confirmed: u.Confirmed,
			Image:     u.Image,
		},
	}
}

func mapCreator(c creatorJSON) model.Creator {
	return model.Creator{ID: c.ID, Email: c.Email, Image: c.Image}
}

func mapLikes(l idList) []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}

// mapPost converts a wire status to a domain Post. Likes and Comments are
// never nil.
func mapPost(s statusJSON) model.Post {
	comments := make([]model.Comment, 0, len(s.Comment))
	for _, c := range s.Comment {
		comments = append(comments, model.Comment{
			ID:        c.ID,
			Content:   c.Content,
			CreatedBy: mapCreator(c.CreatedBy),
			Likes:     mapLikes(c.Like),
			CreatedAt: parseTimestamp(c.CreatedAt),
			UpdatedAt: parseTimestamp(c.UpdatedAt),
		})
	}

	return model.Post{
		ID:        s.ID,
		Content:   s.Content,
		CreatedBy: mapCreator(s.CreatedBy),
		Likes:     mapLikes(s.Like),
		Comments:  comments,
		CreatedAt: parseTimestamp(s.CreatedAt),
		UpdatedAt: parseTimestamp(s.UpdatedAt),
	}
}

func mapPosts(in []statusJSON) []model.Post {
	out := make([]model.Post, 0, len(in))
	for _, s := range in {
		out = append(out, mapPost(s))
	}
	return out
}

func mapClassmates(in []classmateJSON) []model.Classmate {
	out := make([]model.Classmate, 0, len(in))
	for _, c := range in {
		cm := model.Classmate{
			ID:        c.ID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Role:      c.Role,
			Type:      c.Type,
		}
		if c.Education != nil {
			cm.Education = &model.Education{
				Major:          c.Education.Major,
				EnrollmentYear: string(c.Education.EnrollmentYear),
				StudentID:      string(c.Education.StudentID),
			}
		}
		out = append(out, cm)
	}
	return out
}
