package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidConfirmation = errors.New("delete confirmation is invalid or has expired")
)

const (
	EntityProject     = "project"
	EntityPublication = "publication"
	EntityPhoto       = "photo"
)

type deleteConfirmationClaims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

/*
DeleteConfirmationServicer implements delete as propose/commit. Propose
hands out a short-lived token bound to one entity; Commit-side code calls
Verify before deleting anything.
*/
type DeleteConfirmationServicer interface {
	Propose(kind, id string) (string, error)
	Verify(token, kind, id string) error
}

type DeleteConfirmationServiceConfig struct {
	Now    func() time.Time
	Secret string
	TTL    time.Duration
}

type DeleteConfirmationService struct {
	now    func() time.Time
	secret []byte
	ttl    time.Duration
}

func NewDeleteConfirmationService(config DeleteConfirmationServiceConfig) DeleteConfirmationService {
	if config.Now == nil {
		config.Now = time.Now
	}

	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}

	return DeleteConfirmationService{
		now:    config.Now,
		secret: []byte(config.Secret),
		ttl:    config.TTL,
	}
}

func (s DeleteConfirmationService) Propose(kind, id string) (string, error) {
	now := s.now()

	claims := deleteConfirmationClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)

	if err != nil {
		return "", fmt.Errorf("error signing delete confirmation for %s %s: %w", kind, id, err)
	}

	return token, nil
}

func (s DeleteConfirmationService) Verify(token, kind, id string) error {
	claims := &deleteConfirmationClaims{}

	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		return ErrInvalidConfirmation
	}

	if claims.Kind != kind || claims.Subject != id {
		return ErrInvalidConfirmation
	}

	return nil
}
