// Package sharing issues and verifies signed, expiring share tokens for
// brand kits.
package sharing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTokenInvalid = errors.New("share token is invalid")
	ErrTokenExpired = errors.New("share token has expired")
)

// Token is an issued share link token
type Token struct {
	Value      string    `json:"token"`
	BrandKitID uuid.UUID `json:"brand_kit_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Service signs tokens of the form <brand kit id>.<unix expiry>.<signature>.
type Service struct {
	signingKey []byte
	now        func() time.Time
}

// NewService creates a share token service
func NewService(signingKey string) *Service {
	return &Service{signingKey: []byte(signingKey), now: time.Now}
}

// Issue creates a token for the brand kit valid for ttl.
func (s *Service) Issue(brandKitID uuid.UUID, ttl time.Duration) (*Token, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("share token ttl must be positive, got %v", ttl)
	}
	expires := s.now().Add(ttl).UTC().Truncate(time.Second)
	payload := brandKitID.String() + "." + strconv.FormatInt(expires.Unix(), 10)
	return &Token{
		Value:      payload + "." + s.sign(payload),
		BrandKitID: brandKitID,
		ExpiresAt:  expires,
	}, nil
}

// Verify checks the signature and expiry and returns the brand kit id.
func (s *Service) Verify(token string) (uuid.UUID, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return uuid.Nil, ErrTokenInvalid
	}
	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(s.sign(payload))) {
		return uuid.Nil, ErrTokenInvalid
	}

	id, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	if !s.now().Before(time.Unix(expiry, 0)) {
		return uuid.Nil, ErrTokenExpired
	}
	return id, nil
}

// sign creates an HMAC-SHA256 signature
func (s *Service) sign(data string) string {
	h := hmac.New(sha256.New, s.signingKey)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
