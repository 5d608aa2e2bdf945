package authgate

import (
	"context"
	"testing"

	"github.com/rikkicasupanan/portfolio/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		authenticated bool
		expected      string
	}{
		{"anonymous admin root", "/admin", false, "/admin/login"},
		{"anonymous admin subpath", "/admin/projects/1/delete", false, "/admin/login"},
		{"anonymous login page", "/admin/login", false, ""},
		{"authenticated login page", "/admin/login", true, "/admin"},
		{"authenticated admin", "/admin", true, ""},
		{"anonymous public page", "/gallery", false, ""},
		{"lookalike path is public", "/administrator", false, ""},
		{"authenticated public page", "/", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Decide(tt.path, tt.authenticated).Redirect)
		})
	}
}

func TestSessionContext(t *testing.T) {
	assert.Nil(t, SessionFromContext(context.Background()))

	session := &models.AdminSession{UserID: "u1"}
	assert.Equal(t, session, SessionFromContext(WithSession(context.Background(), session)))
}
