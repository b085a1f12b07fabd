package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"storefront/pkg/storefront/domain/model"
	"storefront/pkg/storefront/domain/service"
)

const tokeninfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleVerifier validates a Google ID token against the tokeninfo
// endpoint. The core trusts the identity only after this call
// succeeds; the admin flag is still derived locally from the email.
type GoogleVerifier struct {
	clientID   string
	endpoint   string
	httpClient *http.Client
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID:   clientID,
		endpoint:   tokeninfoURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewGoogleVerifierWithEndpoint exists for tests.
func NewGoogleVerifierWithEndpoint(clientID, endpoint string) *GoogleVerifier {
	v := NewGoogleVerifier(clientID)
	v.endpoint = endpoint
	return v
}

type tokenInfo struct {
	Audience      string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*service.VerifiedIdentity, error) {
	if token == "" {
		return nil, model.ErrInvalidToken
	}

	query := url.Values{"id_token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build tokeninfo request")
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call tokeninfo")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, model.ErrInvalidToken
	}

	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.Wrap(err, "decode tokeninfo response")
	}
	if v.clientID != "" && info.Audience != v.clientID {
		return nil, model.ErrInvalidToken
	}
	if info.Email == "" || info.EmailVerified != "true" {
		return nil, model.ErrInvalidToken
	}

	return &service.VerifiedIdentity{
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
