package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rmehra-dev/techshop-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	StaffID   uuid.UUID
	StaffName string
	Role      enums.StaffRole
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to staff clients.
type AccessTokenClaims struct {
	StaffID   uuid.UUID       `json:"staff_id"`
	StaffName string          `json:"staff_name,omitempty"`
	Role      enums.StaffRole `json:"role"`
	jwt.RegisteredClaims
}
