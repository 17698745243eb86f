package user

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

type Status string

const (
	Active   Status = "active"
	Disabled Status = "disabled"
)

type User struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserName  string    `gorm:"uniqueIndex;size:64;not null" json:"user_name"`
	Password  string    `gorm:"not null" json:"-"`
	Email     string    `gorm:"size:255" json:"email"`
	FullName  string    `gorm:"size:128" json:"full_name"`
	Avatar    string    `gorm:"size:255" json:"avatar,omitempty"`
	Role      string    `gorm:"size:32" json:"role"`
	Status    Status    `gorm:"size:16" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateUserDTO struct {
	UserName string `json:"user_name" validate:"required,alphanum,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Email    string `json:"email" validate:"omitempty,email"`
	FullName string `json:"full_name" validate:"max=128"`
}

type LoginDTO struct {
	UserName string `json:"user_name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Claims Subject 为用户 ID，Id 为 jti
type Claims struct {
	jwt.StandardClaims
	Type     string `json:"typ"`
	UserName string `json:"name"`
	Role     string `json:"role,omitempty"`
}

// RegisteredEvent 注册成功后发布
type RegisteredEvent struct {
	ID       string    `json:"id"`
	UserName string    `json:"user_name"`
	Email    string    `json:"email,omitempty"`
	At       time.Time `json:"at"`
}
