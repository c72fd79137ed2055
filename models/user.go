// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleAdmin       = "admin"
	RoleInsideSales = "inside_sales"
	RoleBDM         = "bdm"
)

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleInsideSales || role == RoleBDM
}

// User model
type User struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserName       string             `json:"user_name" bson:"user_name"`
	Password       string             `json:"password,omitempty" bson:"password"`
	Role           string             `json:"role" bson:"role"`
	Name           string             `json:"name" bson:"name"`
	Age            int                `json:"age,omitempty" bson:"age,omitempty"`
	Position       string             `json:"position,omitempty" bson:"position,omitempty"`
	Phone          string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Address        string             `json:"address,omitempty" bson:"address,omitempty"`
	Location       string             `json:"location,omitempty" bson:"location,omitempty"`
	Picture        string             `json:"picture,omitempty" bson:"picture,omitempty"`
	IsActive       bool               `json:"isActive" bson:"isActive"`
	LastActivityAt time.Time          `json:"lastActivityAt,omitempty" bson:"lastActivityAt,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// BDMSummary is the directory entry sales reps pick an assignee from.
type BDMSummary struct {
	ID   primitive.ObjectID `json:"id" bson:"_id"`
	Name string             `json:"name" bson:"name"`
}

// LoginRequest model
type LoginRequest struct {
	UserName   string `json:"user_name" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// LoginResponse carries the session tokens and the sanitized user record.
type LoginResponse struct {
	Token           string `json:"token"`
	RefreshToken    string `json:"refreshToken"`
	RememberMeToken string `json:"rememberMeToken,omitempty"`
	User            User   `json:"user"`
}

// CreateUserRequest is the admin user-creation payload.
type CreateUserRequest struct {
	UserName string `json:"user_name" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin inside_sales bdm"`
	Name     string `json:"name" validate:"required"`
	Age      int    `json:"age,omitempty"`
	Position string `json:"position,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Location string `json:"location,omitempty"`
}

// UpdateProfileRequest covers the self-service profile fields. user_name,
// role and password never move through this path.
type UpdateProfileRequest struct {
	Name     string `json:"name,omitempty"`
	Age      int    `json:"age,omitempty"`
	Position string `json:"position,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Location string `json:"location,omitempty"`
}

// Response is the common API envelope
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
