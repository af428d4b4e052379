package entity

import (
	"time"
)

// Operator сотрудник, от имени которого выполняются изменения
type Operator struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username" gorm:"size:100;not null;uniqueIndex"`
	DisplayName  string     `json:"display_name" gorm:"size:100"`
	PasswordHash string     `json:"-" gorm:"size:100;not null"`
	Role         string     `json:"role" gorm:"size:20;not null;default:operator"`
	Active       bool       `json:"active" gorm:"not null;default:true"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// LoginRequest запрос на вход оператора
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse ответ с токеном
type LoginResponse struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Token       string `json:"token"`
}

// CreateOperatorRequest запрос на создание оператора (CLI и bootstrap администратора)
type CreateOperatorRequest struct {
	Username    string
	DisplayName string
	Password    string
	Role        string
}
