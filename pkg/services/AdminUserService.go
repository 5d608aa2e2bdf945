package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/sessions"
	"github.com/google/uuid"
	"github.com/rfberaldo/sqlz"
	"github.com/rikkicasupanan/portfolio/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("no valid session")
)

type AdminUserServicer interface {
	Authenticate(email, password string) (*models.AdminUser, error)
	EnsureAdmin(email, password string) error
	GetByID(id string) (*models.AdminUser, error)
}

type AdminUserServiceConfig struct {
	DB  *sqlz.DB
	Now func() time.Time
}

type AdminUserService struct {
	db  *sqlz.DB
	now func() time.Time
}

func NewAdminUserService(config AdminUserServiceConfig) AdminUserService {
	if config.Now == nil {
		config.Now = time.Now
	}

	return AdminUserService{
		db:  config.DB,
		now: config.Now,
	}
}

func (s AdminUserService) Authenticate(email, password string) (*models.AdminUser, error) {
	var (
		err error
	)

	result := &models.AdminUser{}

	sql := `
SELECT
   u.id
   , u.created_at
   , u.email
   , u.password_hash
FROM admin_users AS u
WHERE 1=1
   AND u.email=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, result, sql, normalizeEmail(email)); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("error querying for admin user by email: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(result.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return result, nil
}

/*
EnsureAdmin creates the admin account, or resets its password when it
already exists.
*/
func (s AdminUserService) EnsureAdmin(email, password string) error {
	var (
		err  error
		hash []byte
	)

	email = normalizeEmail(email)

	if email == "" || password == "" {
		return fmt.Errorf("admin email and password are required")
	}

	if hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost); err != nil {
		return fmt.Errorf("error hashing admin password: %w", err)
	}

	sql := `
INSERT INTO admin_users (
   id
   , created_at
   , email
   , password_hash
) VALUES (?, ?, ?, ?)
ON CONFLICT(email) DO UPDATE SET password_hash=excluded.password_hash
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, uuid.NewString(), s.now().UTC(), email, string(hash)); err != nil {
		return fmt.Errorf("error saving admin user %s: %w", email, err)
	}

	return nil
}

func (s AdminUserService) GetByID(id string) (*models.AdminUser, error) {
	var (
		err error
	)

	result := &models.AdminUser{}

	sql := `
SELECT
   u.id
   , u.created_at
   , u.email
   , u.password_hash
FROM admin_users AS u
WHERE 1=1
   AND u.id=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, result, sql, id); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, models.ErrAdminUserNotFound
		}

		return nil, fmt.Errorf("error querying for admin user %s: %w", id, err)
	}

	return result, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

/*
AuthService owns the admin cookie session. Session validity is decided by
the store: a cookie is only valid while its user still exists.
*/
type AuthServicer interface {
	Login(w http.ResponseWriter, r *http.Request, email, password string) error
	Logout(w http.ResponseWriter, r *http.Request) error
	VerifySession(r *http.Request) (*models.AdminSession, error)
}

type AuthServiceConfig struct {
	AdminUserService AdminUserServicer
	SessionService   sessions.Session[*models.AdminSession]
}

type AuthService struct {
	adminUserService AdminUserServicer
	sessionService   sessions.Session[*models.AdminSession]
}

func NewAuthService(config AuthServiceConfig) AuthService {
	return AuthService{
		adminUserService: config.AdminUserService,
		sessionService:   config.SessionService,
	}
}

func (s AuthService) Login(w http.ResponseWriter, r *http.Request, email, password string) error {
	var (
		err  error
		user *models.AdminUser
	)

	if user, err = s.adminUserService.Authenticate(email, password); err != nil {
		return err
	}

	session := &models.AdminSession{
		UserID: user.ID,
		Email:  user.Email,
	}

	if err = s.sessionService.Set(r, session); err != nil {
		return fmt.Errorf("error setting admin session: %w", err)
	}

	if err = s.sessionService.Save(w, r); err != nil {
		return fmt.Errorf("error saving admin session: %w", err)
	}

	return nil
}

func (s AuthService) Logout(w http.ResponseWriter, r *http.Request) error {
	_ = s.sessionService.Destroy(w, r)
	return s.sessionService.Save(w, r)
}

func (s AuthService) VerifySession(r *http.Request) (*models.AdminSession, error) {
	var (
		err     error
		session *models.AdminSession
	)

	if session, err = s.sessionService.Get(r); err != nil || session == nil || session.UserID == "" {
		return nil, ErrNoSession
	}

	if _, err = s.adminUserService.GetByID(session.UserID); err != nil {
		if errors.Is(err, models.ErrAdminUserNotFound) {
			return nil, ErrNoSession
		}

		return nil, err
	}

	return session, nil
}
