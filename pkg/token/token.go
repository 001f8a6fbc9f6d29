package token

import (
	"strconv"
	"time"

	"github.com/bookbridge/bookbridge/pkg/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Audience is the aud claim stamped into every token this system issues.
const Audience = "bookbridge"

// SessionClaims are the claims in a long-lived session token handed to end
// users at login. The salt claim is compared against the user's current
// token_salt on every exchange; rotating the salt invalidates every session
// token issued before the rotation.
type SessionClaims struct {
	Login string `json:"login"`
	Salt  string `json:"s"`
	jwt.RegisteredClaims
}

// InternalClaims are the claims in a short-lived identity token minted during
// token exchange. Downstream services trust these claims without calling back
// to the identity service.
type InternalClaims struct {
	Login string `json:"login"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim as the user's numeric ID.
func (c *SessionClaims) UserID() (int, error) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return id, nil
}

// UserID parses the subject claim as the user's numeric ID.
func (c *InternalClaims) UserID() (int, error) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return id, nil
}

// Signer issues and verifies both token kinds with a shared HMAC secret. It's
// a plain value; construct one where needed instead of sharing a global.
type Signer struct {
	secret         []byte
	sessionExpiry  time.Duration
	internalExpiry time.Duration
}

// NewSigner creates a Signer with the given secret and expiries.
func NewSigner(secret string, sessionExpiry, internalExpiry time.Duration) Signer {
	return Signer{
		secret:         []byte(secret),
		sessionExpiry:  sessionExpiry,
		internalExpiry: internalExpiry,
	}
}

// IssueSessionToken creates a session token for the user, embedding their
// current token salt.
func (s Signer) IssueSessionToken(user *models.User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Login: user.Login,
		Salt:  user.TokenSalt,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return signed, nil
}

// VerifySessionToken validates a session token's signature, expiry, and
// audience, and returns its claims. Salt freshness is the caller's problem;
// it requires a database read.
func (s Signer) VerifySessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	err := s.parse(tokenString, claims)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// IssueInternalToken creates a short-lived identity token carrying the user's
// login, name, and role.
func (s Signer) IssueInternalToken(user *models.User) (string, error) {
	now := time.Now()
	claims := InternalClaims{
		Login: user.Login,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.internalExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return signed, nil
}

// VerifyInternalToken validates an identity token and returns its claims.
func (s Signer) VerifyInternalToken(tokenString string) (*InternalClaims, error) {
	claims := &InternalClaims{}
	err := s.parse(tokenString, claims)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s Signer) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithAudience(Audience))
	if err != nil {
		return errors.WithStack(err)
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}

// NewSalt generates a fresh token salt. Assigning a new salt to a user
// invalidates all of their outstanding session tokens.
func NewSalt() string {
	return uuid.NewString()
}
