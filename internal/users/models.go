package users

import (
	"time"

	"github.com/mealdrop/go-delivery-orders/internal/auth"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	FullName     string    `json:"full_name,omitempty"`
	Address      string    `json:"address,omitempty"`
	LocX         int       `json:"location_x"`
	LocY         int       `json:"location_y"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	LocX     int    `json:"location_x"`
	LocY     int    `json:"location_y"`
}

type ProfileUpdate struct {
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	LocX     int    `json:"location_x"`
	LocY     int    `json:"location_y"`
}
