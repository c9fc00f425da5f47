package services

import (
	"errors"
	"time"
)

var ErrServiceNotFound = errors.New("service not found")

type Service struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	IconName     *string   `json:"icon_name"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type NewService struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	IconName     *string `json:"icon_name"`
	DisplayOrder int     `json:"display_order"`
	IsActive     bool    `json:"is_active"`
}

// ServiceUpdate is a partial update; nil fields keep the stored value.
type ServiceUpdate struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	IconName     *string `json:"icon_name"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}
