package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"        json:"id"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"   json:"email"`
	PasswordHash string    `gorm:"size:255;not null"               json:"-"`
	FirstName    string    `gorm:"size:100"                        json:"first_name"`
	LastName     string    `gorm:"size:100"                        json:"last_name"`
	Address      string    `gorm:"size:500"                        json:"address"`
	Role         string    `gorm:"size:20;not null"                json:"role"`
	Active       bool      `gorm:"not null"                        json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
