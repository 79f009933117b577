package models

import (
	"strings"
	"time"
)

type Student struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Password         string    `json:"-"`
	PartnerID        *int64    `json:"partner_id,omitempty"`
	ExpectedTZOffset *int      `json:"expected_tz_offset,omitempty"`
	ChallengeXP      int64     `json:"challenge_xp"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DisplayName returns "FirstName L." format (first name + last initial).
func (s Student) DisplayName() string {
	parts := splitName(s.Name)
	if len(parts) <= 1 {
		return s.Name
	}
	lastName := parts[len(parts)-1]
	if len(lastName) > 0 {
		return parts[0] + " " + string([]rune(lastName)[0]) + "."
	}
	return parts[0]
}

func splitName(name string) []string {
	var parts []string
	for _, p := range strings.Split(strings.TrimSpace(name), " ") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

type RegisterRequest struct {
	Email            string `json:"email"`
	Name             string `json:"name"`
	Password         string `json:"password"`
	ExpectedTZOffset *int   `json:"expected_tz_offset,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token   string  `json:"token"`
	Student Student `json:"student"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
