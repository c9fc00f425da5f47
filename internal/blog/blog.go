package blog

import (
	"errors"
	"time"
)

var (
	ErrPostNotFound      = errors.New("post not found")
	ErrPostSlugTaken     = errors.New("post slug already exists")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategorySlugTaken = errors.New("category slug already exists")
	ErrCategoryHasPosts  = errors.New("category has existing posts")
	ErrTagSlugTaken      = errors.New("tag slug already exists")
)

type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Tag struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// TagInfo is the tag projection attached to posts.
type TagInfo struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Post is a published blog post row joined with its author and category.
type Post struct {
	ID            int        `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Excerpt       string     `json:"excerpt"`
	Content       string     `json:"content"`
	CoverImageURL *string    `json:"cover_image_url"`
	PublishedAt   *time.Time `json:"published_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ReadTime      int        `json:"read_time"`
	Featured      bool       `json:"featured"`
	ViewsCount    int        `json:"views_count"`
	LikesCount    int        `json:"likes_count"`
	AuthorName    *string    `json:"author_name"`
	AuthorAvatar  *string    `json:"author_avatar"`
	AuthorBio     *string    `json:"author_bio,omitempty"`
	CategoryName  string     `json:"category_name"`
	CategorySlug  string     `json:"category_slug"`
	Tags          []TagInfo  `json:"tags"`
}

// AdminPost is the trimmed row the admin post list shows, drafts included.
type AdminPost struct {
	ID            int        `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Excerpt       string     `json:"excerpt"`
	CoverImageURL *string    `json:"cover_image_url"`
	PublishedAt   *time.Time `json:"published_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Featured      bool       `json:"featured"`
	IsPublished   bool       `json:"is_published"`
	AuthorName    *string    `json:"author_name"`
	CategoryName  string     `json:"category_name"`
}

// PostFields carries the scalar columns of a post write.
type PostFields struct {
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	CategoryID    int
	CoverImageURL *string
	ReadTime      int
	Featured      bool
	IsPublished   bool
}
