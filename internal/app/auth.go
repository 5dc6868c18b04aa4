package app

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"talent-scheduler/internal/apperr"
	"talent-scheduler/internal/audit"
	"talent-scheduler/internal/governance"
)

const (
	candidatePortalType = "candidate_portal"
	bookingPurpose      = "booking"
	sessionKey          = "session"
)

// SessionKind tells staff and candidate sessions apart.
type SessionKind int

const (
	StaffSession SessionKind = iota + 1
	CandidateSession
)

// Session is the authenticated caller. It is built by the middleware and
// passed explicitly to every operation.
type Session struct {
	Kind     SessionKind
	User     governance.User
	PortalID string
	Email    string
}

// Actor is the audit identity of s.
func (s Session) Actor() audit.Actor {
	if s.Kind == CandidateSession {
		return audit.Actor{UserID: s.PortalID, Email: s.Email, Role: "candidate"}
	}
	return audit.Actor{UserID: s.User.ID, Email: s.User.Email, Role: s.User.Role}
}

func sessionFrom(c *gin.Context) Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(Session); ok {
			return s
		}
	}
	return Session{}
}

// serviceAccount is the identity of static-token callers.
var serviceAccount = governance.User{
	ID:    "service",
	Email: "service@static-token",
	Name:  "Service Account",
	Role:  governance.RoleAdmin,
}

type sessionClaims struct {
	Email    string `json:"email"`
	Type     string `json:"type,omitempty"`
	PortalID string `json:"candidate_portal_id,omitempty"`
	jwt.RegisteredClaims
}

type bookingClaims struct {
	InterviewID string `json:"interview_id"`
	Purpose     string `json:"purpose"`
	jwt.RegisteredClaims
}

// Authenticator verifies bearer tokens and issues booking tokens. All tokens
// are HS256 with the same secret.
type Authenticator struct {
	secret     []byte
	static     map[string]struct{}
	users      DirectoryStore
	bookingTTL time.Duration
	now        func() time.Time
}

func NewAuthenticator(secret string, staticTokens []string, users DirectoryStore, bookingTTL time.Duration) *Authenticator {
	static := make(map[string]struct{}, len(staticTokens))
	for _, t := range staticTokens {
		if t = strings.TrimSpace(t); t != "" {
			static[t] = struct{}{}
		}
	}
	return &Authenticator{secret: []byte(secret), static: static, users: users, bookingTTL: bookingTTL, now: time.Now}
}

func (au *Authenticator) parse(token string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return au.secret, nil
	}, jwt.WithLeeway(5*time.Second), jwt.WithTimeFunc(au.now))
	return err
}

func (au *Authenticator) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(au.secret)
}

func bearer(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if auth == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
		return "", false
	}
	parts := strings.Fields(auth)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
		return "", false
	}
	return parts[1], true
}

func tokenError(err error) string {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return "token has expired"
	}
	return "invalid token"
}

// StaffAuth accepts agency and client staff: a session JWT whose email
// resolves to a user, or one of the static service tokens.
func (au *Authenticator) StaffAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearer(c)
		if !ok {
			return
		}

		var claims sessionClaims
		err := au.parse(tokenStr, &claims)
		if err != nil {
			if _, ok := au.static[tokenStr]; ok {
				c.Set(sessionKey, Session{Kind: StaffSession, User: serviceAccount, Email: serviceAccount.Email})
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": tokenError(err)})
			return
		}
		if claims.Type == candidatePortalType {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token type"})
			return
		}
		if claims.Email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		u, err := au.users.GetUserByEmail(c.Request.Context(), claims.Email)
		if errors.Is(err, apperr.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.Set(sessionKey, Session{Kind: StaffSession, User: *u, Email: u.Email})
		c.Next()
	}
}

// CandidateAuth accepts candidate portal tokens only.
func (au *Authenticator) CandidateAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearer(c)
		if !ok {
			return
		}
		var claims sessionClaims
		if err := au.parse(tokenStr, &claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": tokenError(err)})
			return
		}
		if claims.Type != candidatePortalType || claims.PortalID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token type"})
			return
		}
		c.Set(sessionKey, Session{Kind: CandidateSession, PortalID: claims.PortalID, Email: claims.Email})
		c.Next()
	}
}

// IssueStaffToken signs a staff session token. Login lives in the auth
// service; this is used by tooling and tests.
func (au *Authenticator) IssueStaffToken(email string, ttl time.Duration) (string, error) {
	now := au.now()
	return au.sign(sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
}

// IssueCandidateToken signs a candidate portal token.
func (au *Authenticator) IssueCandidateToken(portalID, email string, ttl time.Duration) (string, error) {
	now := au.now()
	return au.sign(sessionClaims{
		Email:    email,
		Type:     candidatePortalType,
		PortalID: portalID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
}

// IssueBookingToken signs a token that authorises booking one interview.
func (au *Authenticator) IssueBookingToken(interviewID string) (string, time.Time, error) {
	now := au.now()
	exp := now.Add(au.bookingTTL)
	tok, err := au.sign(bookingClaims{
		InterviewID: interviewID,
		Purpose:     bookingPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	return tok, exp, err
}

// VerifyBookingToken checks that token was issued for interviewID. A token
// for another interview is reported as not found so links cannot be probed.
func (au *Authenticator) VerifyBookingToken(token, interviewID string) error {
	if token == "" {
		return apperr.NotFound("interview")
	}
	var claims bookingClaims
	if err := au.parse(token, &claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return apperr.Expired("booking link has expired")
		}
		return apperr.NotFound("interview")
	}
	if claims.Purpose != bookingPurpose || claims.InterviewID != interviewID {
		return apperr.NotFound("interview")
	}
	return nil
}
