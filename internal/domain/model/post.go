package model

import (
	"slices"
	"time"
)

// Creator is the denormalized owner embedding the server returns on posts
// and comments.
type Creator struct {
	ID    string
	Email string
	Image string
}

// Comment is a reply attached to exactly one Post.
type Comment struct {
	ID        string
	Content   string
	CreatedBy Creator
	Likes     []string // User IDs.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Post is a status update in the classroom feed. Likes holds the IDs of the
// users who liked it; the server enforces set semantics.
type Post struct {
	ID        string
	Content   string
	CreatedBy Creator
	Likes     []string
	Comments  []Comment
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LikedBy reports whether userID appears in the post's likers. An empty
// userID never matches.
func (p Post) LikedBy(userID string) bool {
	if userID == "" {
		return false
	}
	return slices.Contains(p.Likes, userID)
}

// OwnedBy reports whether userID created the post.
func (p Post) OwnedBy(userID string) bool {
	return userID != "" && p.CreatedBy.ID == userID
}

// FindComment returns the comment with the given ID.
func (p Post) FindComment(commentID string) (Comment, bool) {
	for _, c := range p.Comments {
		if c.ID == commentID {
			return c, true
		}
	}
	return Comment{}, false
}

// Clone returns a deep copy so callers never alias feed state.
func (p Post) Clone() Post {
	out := p
	out.Likes = slices.Clone(p.Likes)
	if p.Comments != nil {
		out.Comments = make([]Comment, len(p.Comments))
		for i, c := range p.Comments {
			c.Likes = slices.Clone(c.Likes)
			out.Comments[i] = c
		}
	}
	return out
}
