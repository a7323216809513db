package models

import "strings"

type User struct {
	ID           string   `bson:"_id" json:"id"`
	Name         string   `bson:"name" json:"name" validate:"required,min=2,max=100"`
	Email        string   `bson:"email" json:"email" validate:"required,email"`
	Phone        string   `bson:"phone" json:"phone" validate:"omitempty,min=10,max=15"`
	Role         UserRole `bson:"role" json:"role" validate:"required,oneof=citizen officer admin"`
	PasswordHash string   `bson:"password_hash" json:"-"`

	// Профіль
	ProfileImage  string `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
	AadhaarNumber string `bson:"aadhaar_number,omitempty" json:"aadhaar_number,omitempty"`
	Department    string `bson:"department,omitempty" json:"department,omitempty"`
}

// NormalizeEmail - email зберігається і шукається в нижньому регістрі
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsOfficer - посадова особа (officer або admin)
func (u *User) IsOfficer() bool {
	return u.Role == RoleOfficer || u.Role == RoleAdmin
}
