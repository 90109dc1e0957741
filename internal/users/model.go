package users

import (
	"strings"
)

// UserID is the local surrogate key of a marketplace user.
type UserID uint

// User maps an identity-provider subject to a local marketplace account.
type User struct {
	ID       UserID `gorm:"column:id;primaryKey;autoIncrement"`
	Subject  string `gorm:"column:firebase_uid;size:128;not null;uniqueIndex:idx_users_firebase_uid"`
	Username string `gorm:"column:username;size:255;not null;default:''"`
	Email    string `gorm:"column:email;size:320;not null;default:''"`
}

// TableName exposes the table backing users.
func (User) TableName() string {
	return "users"
}

// Profile is the public view of a user.
type Profile struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// DeriveUsername prefers the provider display name, then the local part of the email.
func DeriveUsername(displayName, email string) string {
	if name := strings.TrimSpace(displayName); name != "" {
		return name
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	localPart, _, _ := strings.Cut(email, "@")
	return localPart
}
