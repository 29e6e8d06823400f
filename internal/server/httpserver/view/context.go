package view

import (
	"net/http"

	"github.com/omriasta/core/internal/core/domain"
	"github.com/omriasta/core/internal/server/httpserver/reqctx"
)

// Context returns the attribution context for actions performed by r: the
// authenticated user when there is one, anonymous otherwise.
func Context(r *http.Request) domain.Context {
	if user := reqctx.User(r.Context()); user != nil {
		return domain.NewContext(user.ID)
	}
	return domain.NewContext("")
}
