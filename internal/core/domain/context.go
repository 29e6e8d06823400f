package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Context attributes an action to the request that caused it.
//
// A Context without a UserID is anonymous: the action was performed by the
// hub itself or by an unauthenticated caller.
type Context struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
}

// NewContext creates a Context for the given user. An empty userID yields an
// anonymous context.
func NewContext(userID string) Context {
	return Context{
		ID:     newContextID(),
		UserID: userID,
	}
}

// Child returns a new Context caused by c, attributed to the same user.
func (c Context) Child() Context {
	return Context{
		ID:       newContextID(),
		UserID:   c.UserID,
		ParentID: c.ID,
	}
}

// IsAnonymous reports whether no user is attached to the context.
func (c Context) IsAnonymous() bool {
	return c.UserID == ""
}

func newContextID() string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader)
	return strings.ToLower(id.String())
}
