// Package calllink issues the short-lived tokens that gate access to a
// video consultation. Tokens are derived on demand and never persisted:
// re-issuing before expiry yields the same binding with a fresh remaining
// lifetime.
package calllink

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/priyanshsolanki/medilink-assignment3/internal/auth"
	"github.com/priyanshsolanki/medilink-assignment3/internal/timeslot"
)

var (
	ErrLinkExpired = errors.New("call link expired")
	ErrBadLink     = errors.New("invalid call link token")
)

type Claims struct {
	AppointmentID string `json:"appointmentId"`
	UserID        string `json:"userId"`
	Role          string `json:"role"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret  string
	baseURL string
	grace   time.Duration
	now     func() time.Time
}

// NewIssuer builds an issuer whose links stay valid until appointment start
// plus grace.
func NewIssuer(secret, baseURL string, grace time.Duration) *Issuer {
	return &Issuer{
		secret:  secret,
		baseURL: baseURL,
		grace:   grace,
		now:     time.Now,
	}
}

// Issue signs a link for one appointment and requester. The credential is
// valid for the half-open window [start, start+grace); once now passes the
// window's end it returns ErrLinkExpired.
func (i *Issuer) Issue(appointmentID uuid.UUID, day, clock string, requester auth.Actor) (string, error) {
	start, err := timeslot.Combine(day, clock)
	if err != nil {
		return "", fmt.Errorf("resolve appointment start: %w", err)
	}

	expiry := start.Add(i.grace)
	now := i.now()
	if !now.Before(expiry) {
		return "", ErrLinkExpired
	}

	claims := Claims{
		AppointmentID: appointmentID.String(),
		UserID:        requester.ID.String(),
		Role:          string(requester.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.secret))
	if err != nil {
		return "", fmt.Errorf("sign call link token: %w", err)
	}

	return fmt.Sprintf("%s/%s?token=%s", i.baseURL, appointmentID, token), nil
}

// Verify parses a token back into its claims, for the consultation
// endpoint that admits participants.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadLink
		}
		return []byte(i.secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrLinkExpired
		}
		return nil, ErrBadLink
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrBadLink
	}
	return claims, nil
}
