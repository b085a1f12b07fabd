package auth

import (
	"context"
	"strings"

	"storefront/pkg/storefront/domain/model"
	"storefront/pkg/storefront/domain/service"
)

// InsecureVerifier accepts "email|name" tokens without verification.
// It exists for local development and tests only; the deployment wires
// GoogleVerifier instead.
type InsecureVerifier struct{}

func NewInsecureVerifier() *InsecureVerifier {
	return &InsecureVerifier{}
}

func (v *InsecureVerifier) Verify(_ context.Context, token string) (*service.VerifiedIdentity, error) {
	email, name, found := strings.Cut(token, "|")
	email = strings.TrimSpace(email)
	if !found || email == "" || !strings.Contains(email, "@") {
		return nil, model.ErrInvalidToken
	}
	return &service.VerifiedIdentity{Email: email, Name: strings.TrimSpace(name)}, nil
}
