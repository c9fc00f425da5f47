package blog

import (
	"context"
	"sort"
	"sync"
	"time"

	gslug "github.com/gosimple/slug"
)

var _ blogRepo = (*repoMock)(nil)

type mockPost struct {
	Post
	AuthorID    int
	CategoryID  int
	IsPublished bool
	CreatedAt   time.Time
	TagNames    []string
}

type repoMock struct {
	Categories map[int]*Category
	Tags       map[string]*Tag // keyed by name
	Posts      map[int]*mockPost
	nextID     int
	mutex      sync.Mutex
}

func newRepoMock() *repoMock {
	return &repoMock{
		Categories: make(map[int]*Category),
		Tags:       make(map[string]*Tag),
		Posts:      make(map[int]*mockPost),
		nextID:     1,
	}
}

func (r *repoMock) nextId() int {
	id := r.nextID
	r.nextID++
	return id
}

func (r *repoMock) GetCategories(_ context.Context) ([]Category, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	categories := []Category{}
	for _, c := range r.Categories {
		categories = append(categories, *c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (r *repoMock) CreateCategory(_ context.Context, name, slug string, description *string) (*Category, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, c := range r.Categories {
		if c.Slug == slug {
			return nil, ErrCategorySlugTaken
		}
	}
	category := &Category{
		ID:          r.nextId(),
		Name:        name,
		Slug:        slug,
		Description: description,
		CreatedAt:   time.Now(),
	}
	r.Categories[category.ID] = category
	return category, nil
}

func (r *repoMock) UpdateCategory(_ context.Context, id int, name, slug string, description *string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	category, ok := r.Categories[id]
	if !ok {
		return ErrCategoryNotFound
	}
	for _, c := range r.Categories {
		if c.Slug == slug && c.ID != id {
			return ErrCategorySlugTaken
		}
	}
	category.Name = name
	category.Slug = slug
	category.Description = description
	return nil
}

func (r *repoMock) DeleteCategory(_ context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, p := range r.Posts {
		if p.CategoryID == id {
			return ErrCategoryHasPosts
		}
	}
	delete(r.Categories, id)
	return nil
}

func (r *repoMock) GetTags(_ context.Context) ([]Tag, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	tags := []Tag{}
	for _, t := range r.Tags {
		tags = append(tags, *t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (r *repoMock) CreateTag(_ context.Context, name, slug string) (*Tag, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, t := range r.Tags {
		if t.Slug == slug {
			return nil, ErrTagSlugTaken
		}
	}
	tag := &Tag{
		ID:        r.nextId(),
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Now(),
	}
	r.Tags[name] = tag
	return tag, nil
}

func (r *repoMock) GetPublishedPosts(_ context.Context, page, limit int) ([]Post, int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	published := []*mockPost{}
	for _, p := range r.Posts {
		if p.IsPublished && p.PublishedAt != nil {
			published = append(published, p)
		}
	}
	sort.Slice(published, func(i, j int) bool {
		return published[i].PublishedAt.After(*published[j].PublishedAt)
	})

	total := len(published)
	offset := (page - 1) * limit
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	posts := []Post{}
	for _, p := range published[offset:end] {
		posts = append(posts, r.projectPost(p))
	}
	return posts, total, nil
}

func (r *repoMock) GetPublishedPostBySlug(_ context.Context, slug string) (*Post, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, p := range r.Posts {
		if p.Slug == slug && p.IsPublished && p.PublishedAt != nil {
			post := r.projectPost(p)
			return &post, nil
		}
	}
	return nil, ErrPostNotFound
}

func (r *repoMock) projectPost(p *mockPost) Post {
	post := p.Post
	post.Tags = []TagInfo{}
	for _, name := range p.TagNames {
		if t, ok := r.Tags[name]; ok {
			post.Tags = append(post.Tags, TagInfo{Name: t.Name, Slug: t.Slug})
		}
	}
	return post
}

func (r *repoMock) IncrementViews(_ context.Context, postID int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if p, ok := r.Posts[postID]; ok {
		p.ViewsCount++
	}
	return nil
}

func (r *repoMock) GetAllPosts(_ context.Context, page, limit int) ([]AdminPost, int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	all := []*mockPost{}
	for _, p := range r.Posts {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	offset := (page - 1) * limit
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	posts := []AdminPost{}
	for _, p := range all[offset:end] {
		posts = append(posts, AdminPost{
			ID:            p.ID,
			Slug:          p.Slug,
			Title:         p.Title,
			Excerpt:       p.Excerpt,
			CoverImageURL: p.CoverImageURL,
			PublishedAt:   p.PublishedAt,
			UpdatedAt:     p.UpdatedAt,
			Featured:      p.Featured,
			IsPublished:   p.IsPublished,
			AuthorName:    p.AuthorName,
			CategoryName:  p.CategoryName,
		})
	}
	return posts, total, nil
}

func (r *repoMock) CreatePost(_ context.Context, authorID int, fields PostFields, tags []string) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, p := range r.Posts {
		if p.Slug == fields.Slug {
			return 0, ErrPostSlugTaken
		}
	}

	var publishedAt *time.Time
	if fields.IsPublished {
		now := time.Now()
		publishedAt = &now
	}

	post := &mockPost{
		Post: Post{
			ID:            r.nextId(),
			Slug:          fields.Slug,
			Title:         fields.Title,
			Excerpt:       fields.Excerpt,
			Content:       fields.Content,
			CoverImageURL: fields.CoverImageURL,
			PublishedAt:   publishedAt,
			UpdatedAt:     time.Now(),
			ReadTime:      fields.ReadTime,
			Featured:      fields.Featured,
		},
		AuthorID:    authorID,
		CategoryID:  fields.CategoryID,
		IsPublished: fields.IsPublished,
		CreatedAt:   time.Now(),
	}
	r.linkTags(post, tags)
	r.Posts[post.ID] = post
	return post.ID, nil
}

func (r *repoMock) linkTags(post *mockPost, tags []string) {
	post.TagNames = nil
	for _, name := range tags {
		if _, ok := r.Tags[name]; !ok {
			r.Tags[name] = &Tag{
				ID:        r.nextId(),
				Name:      name,
				Slug:      gslug.Make(name),
				CreatedAt: time.Now(),
			}
		}
		post.TagNames = append(post.TagNames, name)
	}
}

func (r *repoMock) UpdatePost(_ context.Context, id, authorID int, fields PostFields, replaceTags *[]string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	post, ok := r.Posts[id]
	if !ok || post.AuthorID != authorID {
		return ErrPostNotFound
	}
	for _, p := range r.Posts {
		if p.Slug == fields.Slug && p.ID != id {
			return ErrPostSlugTaken
		}
	}

	var publishedAt *time.Time
	if fields.IsPublished {
		now := time.Now()
		publishedAt = &now
	}

	post.CategoryID = fields.CategoryID
	post.Slug = fields.Slug
	post.Title = fields.Title
	post.Excerpt = fields.Excerpt
	post.Content = fields.Content
	post.CoverImageURL = fields.CoverImageURL
	post.PublishedAt = publishedAt
	post.ReadTime = fields.ReadTime
	post.Featured = fields.Featured
	post.IsPublished = fields.IsPublished
	post.UpdatedAt = time.Now()

	if replaceTags != nil {
		r.linkTags(post, *replaceTags)
	}
	return nil
}

func (r *repoMock) DeletePost(_ context.Context, id, authorID int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	post, ok := r.Posts[id]
	if !ok || post.AuthorID != authorID {
		return ErrPostNotFound
	}
	delete(r.Posts, id)
	return nil
}
