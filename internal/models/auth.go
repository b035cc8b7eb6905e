package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest creates a volunteer account.
type RegisterRequest struct {
	VolunteerID string `json:"volunteerId" validate:"required,min=5"`
	Name        string `json:"name" validate:"required"`
	Password    string `json:"password" validate:"required,min=6"`
}

// LoginRequest holds credentials for authenticating a volunteer.
type LoginRequest struct {
	VolunteerID string `json:"volunteerId" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

// LoginResponse lists the centers the volunteer may pick from.
type LoginResponse struct {
	Volunteer VolunteerInfo `json:"volunteer"`
	CityCode  CityCode      `json:"cityCode"`
	Centers   []Center      `json:"centers"`
}

// SelectCenterRequest completes login by choosing a center.
type SelectCenterRequest struct {
	VolunteerID string `json:"volunteerId" validate:"required"`
	Password    string `json:"password" validate:"required"`
	CenterID    string `json:"centerId" validate:"required"`
}

// SessionResponse returns the issued access token.
type SessionResponse struct {
	AccessToken string        `json:"accessToken"`
	ExpiresIn   int64         `json:"expiresIn"`
	IssuedAt    time.Time     `json:"issuedAt"`
	Volunteer   VolunteerInfo `json:"volunteer"`
	Center      Center        `json:"center"`
}

// UpdateProfileRequest renames the current volunteer.
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required"`
}

// ChangePasswordRequest replaces the current password.
type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// VolunteerInfo describes the authenticated volunteer in responses.
type VolunteerInfo struct {
	VolunteerID string `json:"volunteerId"`
	Name        string `json:"name"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	VolunteerID string `json:"volunteer_id"`
	Name        string `json:"name"`
	CenterID    string `json:"center_id"`
	CenterName  string `json:"center_name"`
	jwt.RegisteredClaims
}
