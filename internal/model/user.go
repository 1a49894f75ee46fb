package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a user account document in MongoDB.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserName     string             `json:"userName" bson:"user_name"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	Role         string             `json:"role" bson:"role"`
	IsActive     bool               `json:"isActive" bson:"is_active"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updated_at"`
}
