package services

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// AdminIdentity is the minimal operator identity recovered from a validated
// admin token: a subject and the single role it was issued for. Campwatch
// operators have no EVE character, corporation, or alliance to resolve, so
// this carries none of that hierarchy.
type AdminIdentity struct {
	UserID string
	Role   string
}

// AdminJWTValidator authenticates operator tokens for the admin surface,
// independent of the teacher's EVE-SSO-backed auth module: campwatch
// operators hold a symmetric admin token carrying a role claim, not an EVE
// character. Grounded on golang-jwt/jwt/v5, the library SPEC_FULL.md names
// for the admin surface.
type AdminJWTValidator struct {
	secret []byte
}

func NewAdminJWTValidator(secret string) *AdminJWTValidator {
	return &AdminJWTValidator{secret: []byte(secret)}
}

type adminClaims struct {
	Subject string `json:"sub"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// ValidateJWT verifies the token's signature and expiry and returns the
// operator identity it was issued for.
func (v *AdminJWTValidator) ValidateJWT(token string) (*AdminIdentity, error) {
	parsed, err := jwt.ParseWithClaims(token, &adminClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse admin token: %w", err)
	}
	claims, ok := parsed.Claims.(*adminClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid admin token")
	}
	role := claims.Role
	if role == "" {
		role = "user"
	}
	return &AdminIdentity{UserID: claims.Subject, Role: role}, nil
}
