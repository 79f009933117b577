package challenge

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalidStudent  = errors.New("challenge: token student_id is not an integer")
	ErrTokenInvalidIssuedAt = errors.New("challenge: token issued_at is not a unix timestamp")
)

// TokenService mints and verifies quiz session tokens. A token is issued
// when a quiz attempt starts and is the only input the engine trusts for
// when the attempt began.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl, now: time.Now}
}

// TTL returns the configured token lifetime.
func (ts *TokenService) TTL() time.Duration {
	return ts.ttl
}

// SessionClaims is the decoded session token payload. StudentID and
// issued_at stay loosely typed on purpose: a decodable token whose
// student_id is not an integer, or whose issued_at is not a timestamp, is a
// distinct guard failure, not a generic decode failure.
type SessionClaims struct {
	StudentID  string
	MaterialID *int64
	QuizType   string
	JTI        string

	issuedAt interface{}
}

// ParseStudentID validates and returns the token's student identity.
func (c *SessionClaims) ParseStudentID() (int64, error) {
	id, err := strconv.ParseInt(c.StudentID, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalidStudent
	}
	return id, nil
}

// IssuedAt validates and returns the token's issue time.
func (c *SessionClaims) IssuedAt() (time.Time, error) {
	switch v := c.issuedAt.(type) {
	case float64:
		return time.Unix(int64(v), 0).UTC(), nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	}
	return time.Time{}, ErrTokenInvalidIssuedAt
}

// Mint signs a fresh session token for a quiz attempt starting now.
func (ts *TokenService) Mint(studentID int64, materialID *int64, quizType string) (string, error) {
	now := ts.now().UTC()
	claims := jwt.MapClaims{
		"student_id": strconv.FormatInt(studentID, 10),
		"quiz_type":  quizType,
		"issued_at":  now.Unix(),
		"jti":        uuid.NewString(),
		"exp":        now.Add(ts.ttl).Unix(),
	}
	if materialID != nil {
		claims["material_id"] = *materialID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ts.secret)
}

// Decode verifies signature and expiry and returns the typed payload.
// Returns nil on any failure (malformed, expired, bad signature); nothing
// past this boundary ever panics or errors on a hostile token.
func (ts *TokenService) Decode(raw string) *SessionClaims {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.secret, nil
	}, jwt.WithTimeFunc(ts.now))
	if err != nil || !parsed.Valid {
		return nil
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	claims := &SessionClaims{issuedAt: mc["issued_at"]}
	switch v := mc["student_id"].(type) {
	case string:
		claims.StudentID = v
	case float64:
		claims.StudentID = strconv.FormatInt(int64(v), 10)
	case nil:
	default:
		claims.StudentID = fmt.Sprint(v)
	}
	if s, ok := mc["quiz_type"].(string); ok {
		claims.QuizType = s
	}
	if s, ok := mc["jti"].(string); ok {
		claims.JTI = s
	}
	if f, ok := mc["material_id"].(float64); ok {
		id := int64(f)
		claims.MaterialID = &id
	}
	return claims
}
