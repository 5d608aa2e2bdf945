package authgate

import (
	"context"
	"net/http"
	"strings"

	"github.com/rikkicasupanan/portfolio/pkg/models"
)

const (
	AdminPath = "/admin"
	LoginPath = "/admin/login"
)

type sessionContextKey struct{}

/*
Decision is the outcome of the gate for one request. An empty Redirect
means the request passes through.
*/
type Decision struct {
	Redirect string
}

func (d Decision) PassThrough() bool {
	return d.Redirect == ""
}

func IsAdminPath(path string) bool {
	return path == AdminPath || strings.HasPrefix(path, AdminPath+"/")
}

/*
Decide applies the routing policy:
  - unauthenticated on an admin path other than login goes to the login page
  - authenticated on the login page goes to the admin panel
  - everything else passes through
*/
func Decide(path string, authenticated bool) Decision {
	if path == LoginPath {
		if authenticated {
			return Decision{Redirect: AdminPath}
		}

		return Decision{}
	}

	if IsAdminPath(path) && !authenticated {
		return Decision{Redirect: LoginPath}
	}

	return Decision{}
}

type SessionVerifier interface {
	VerifySession(r *http.Request) (*models.AdminSession, error)
}

func WithSession(ctx context.Context, session *models.AdminSession) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

func SessionFromContext(ctx context.Context) *models.AdminSession {
	if result, ok := ctx.Value(sessionContextKey{}).(*models.AdminSession); ok {
		return result
	}

	return nil
}
