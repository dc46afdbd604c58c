package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// SessionCookie carries the signed dashboard session token.
const SessionCookie = "sl_session"

var errNoToken = errors.New("no session token")

// SessionTokens issues and verifies the HS256 tokens that bind a browser to a
// server-side session record. The only claim that matters is sid.
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionTokens(secret string, ttl time.Duration) *SessionTokens {
	return &SessionTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (t *SessionTokens) TTL() time.Duration { return t.ttl }

// Issue signs a token for sessionID.
func (t *SessionTokens) Issue(sessionID string) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(t.ttl).Unix(),
	})
	return token.SignedString(t.secret)
}

// Parse verifies a token and returns its session id.
func (t *SessionTokens) Parse(raw string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !tkn.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return sid, nil
}

// FromRequest reads the session id from the session cookie, falling back to a
// Bearer Authorization header.
func (t *SessionTokens) FromRequest(r *http.Request) (string, error) {
	if ck, err := r.Cookie(SessionCookie); err == nil && ck.Value != "" {
		return t.Parse(ck.Value)
	}
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errNoToken
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errNoToken
	}
	return t.Parse(parts[1])
}

// Cookie builds the session cookie for token. An empty token expires the cookie.
func (t *SessionTokens) Cookie(token string, secure bool) *http.Cookie {
	ck := &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(t.ttl.Seconds()),
	}
	if token == "" {
		ck.MaxAge = -1
	}
	return ck
}

// Unauthenticated is the body of every 401 answer.
type Unauthenticated struct {
	Authenticated bool `json:"authenticated"`
}

// Auth validates the session token and stores the session id under "session_id".
func Auth(tokens *SessionTokens) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, err := tokens.FromRequest(c.Request())
			if err != nil {
				return c.JSON(http.StatusUnauthorized, Unauthenticated{})
			}
			c.Set("session_id", sid)
			return next(c)
		}
	}
}
