package projects

import (
	"errors"
	"time"
)

var ErrProjectNotFound = errors.New("project not found")

type Project struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Problem      *string   `json:"problem"`
	Solution     *string   `json:"solution"`
	Result       *string   `json:"result"`
	ImageURL     *string   `json:"image_url"`
	ProjectURL   *string   `json:"project_url"`
	GithubURL    *string   `json:"github_url"`
	Featured     bool      `json:"featured"`
	DisplayOrder int       `json:"display_order"`
	Technologies []string  `json:"technologies"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProjectUpdate carries a partial update; nil fields keep the stored value.
// A nil Technologies leaves the technology rows untouched, a non-nil one
// replaces them entirely.
type ProjectUpdate struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Problem      *string   `json:"problem"`
	Solution     *string   `json:"solution"`
	Result       *string   `json:"result"`
	ImageURL     *string   `json:"image_url"`
	ProjectURL   *string   `json:"project_url"`
	GithubURL    *string   `json:"github_url"`
	Featured     *bool     `json:"featured"`
	DisplayOrder *int      `json:"display_order"`
	Technologies *[]string `json:"technologies"`
}

// NewProject is the payload of a project create.
type NewProject struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Problem      *string  `json:"problem"`
	Solution     *string  `json:"solution"`
	Result       *string  `json:"result"`
	ImageURL     *string  `json:"image_url"`
	ProjectURL   *string  `json:"project_url"`
	GithubURL    *string  `json:"github_url"`
	Featured     bool     `json:"featured"`
	DisplayOrder int      `json:"display_order"`
	Technologies []string `json:"technologies"`
}
