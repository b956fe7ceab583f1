package models

import "time"

type UserRole string

const (
	RoleFan         UserRole = "fan"
	RoleScorekeeper UserRole = "scorekeeper"
	RoleAdmin       UserRole = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         UserRole  `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
