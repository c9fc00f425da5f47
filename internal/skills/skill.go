package skills

import (
	"errors"
	"time"
)

var (
	ErrSkillNotFound    = errors.New("skill not found")
	ErrCategoryNotFound = errors.New("skill category not found")
)

type Category struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// Skill carries the joined category name alongside the raw category_id.
// ProficiencyLevel is one of Beginner, Intermediate, Advanced, Expert,
// enforced by the db check constraint.
type Skill struct {
	ID               int       `json:"id"`
	CategoryID       int       `json:"category_id"`
	Name             string    `json:"name"`
	ProficiencyLevel string    `json:"proficiency_level"`
	DisplayOrder     int       `json:"display_order"`
	CategoryName     string    `json:"category_name"`
	CreatedAt        time.Time `json:"created_at"`
}

type NewSkill struct {
	CategoryID       int    `json:"category_id"`
	Name             string `json:"name"`
	ProficiencyLevel string `json:"proficiency_level"`
	DisplayOrder     int    `json:"display_order"`
}

// SkillUpdate is a partial update; nil fields keep the stored value.
type SkillUpdate struct {
	CategoryID       *int    `json:"category_id"`
	Name             *string `json:"name"`
	ProficiencyLevel *string `json:"proficiency_level"`
	DisplayOrder     *int    `json:"display_order"`
}
