package blog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkovacevic/portfolioapi/internal/telemetry/tracing"
)

var _ blogRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) GetCategories(ctx context.Context) (_ []Category, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.GetCategories")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, slug, description, created_at FROM blog_categories ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *Repo) CreateCategory(ctx context.Context, name, categorySlug string, description *string) (_ *Category, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.CreateCategory")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var exists bool
	if err := r.db.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM blog_categories WHERE slug = $1)`,
		categorySlug,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrCategorySlugTaken
	}

	category := &Category{
		Name:        name,
		Slug:        categorySlug,
		Description: description,
	}
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO blog_categories (name, slug, description) VALUES ($1, $2, $3) RETURNING id, created_at`,
		name, categorySlug, description,
	).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *Repo) UpdateCategory(ctx context.Context, id int, name, categorySlug string, description *string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.UpdateCategory")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var exists bool
	if err := r.db.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM blog_categories WHERE id = $1)`,
		id,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrCategoryNotFound
	}

	var slugTaken bool
	if err := r.db.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM blog_categories WHERE slug = $1 AND id != $2)`,
		categorySlug, id,
	).Scan(&slugTaken); err != nil {
		return err
	}
	if slugTaken {
		return ErrCategorySlugTaken
	}

	_, err = r.db.Exec(
		ctx,
		`UPDATE blog_categories SET name = $1, slug = $2, description = $3 WHERE id = $4`,
		name, categorySlug, description, id,
	)
	return err
}

func (r *Repo) DeleteCategory(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.DeleteCategory")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var postsCount int
	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM blog_posts WHERE category_id = $1`,
		id,
	).Scan(&postsCount); err != nil {
		return err
	}
	if postsCount > 0 {
		return ErrCategoryHasPosts
	}

	_, err = r.db.Exec(ctx, `DELETE FROM blog_categories WHERE id = $1`, id)
	return err
}

func (r *Repo) GetTags(ctx context.Context) (_ []Tag, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.GetTags")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, slug, created_at FROM blog_tags ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []Tag{}
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (r *Repo) CreateTag(ctx context.Context, name, tagSlug string) (_ *Tag, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.CreateTag")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var exists bool
	if err := r.db.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM blog_tags WHERE slug = $1)`,
		tagSlug,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrTagSlugTaken
	}

	tag := &Tag{
		Name: name,
		Slug: tagSlug,
	}
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO blog_tags (name, slug) VALUES ($1, $2) RETURNING id, created_at`,
		name, tagSlug,
	).Scan(&tag.ID, &tag.CreatedAt)
	if err != nil {
		return nil, err
	}
	return tag, nil
}

const publishedPostColumns = `
	bp.id, bp.slug, bp.title, bp.excerpt, bp.content, bp.cover_image_url,
	bp.published_at, bp.updated_at, bp.read_time, bp.featured, bp.views_count, bp.likes_count,
	u.full_name, u.avatar_url,
	bc.name, bc.slug`

// GetPublishedPosts returns one page of published posts, newest first,
// together with the total count of published posts.
func (r *Repo) GetPublishedPosts(ctx context.Context, page, limit int) (_ []Post, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.GetPublishedPosts")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM blog_posts WHERE is_published = TRUE`,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	rows, err := r.db.Query(ctx, `
		SELECT `+publishedPostColumns+`
		FROM blog_posts bp
		JOIN users u ON bp.author_id = u.id
		JOIN blog_categories bc ON bp.category_id = bc.id
		WHERE bp.is_published = TRUE AND bp.published_at IS NOT NULL
		ORDER BY bp.published_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		var p Post
		if err := rows.Scan(
			&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Content, &p.CoverImageURL,
			&p.PublishedAt, &p.UpdatedAt, &p.ReadTime, &p.Featured, &p.ViewsCount, &p.LikesCount,
			&p.AuthorName, &p.AuthorAvatar,
			&p.CategoryName, &p.CategorySlug,
		); err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range posts {
		tags, err := r.postTags(ctx, posts[i].ID)
		if err != nil {
			return nil, 0, err
		}
		posts[i].Tags = tags
	}

	return posts, total, nil
}

// GetPublishedPostBySlug returns a single published post, with the author
// bio included.
func (r *Repo) GetPublishedPostBySlug(ctx context.Context, postSlug string) (_ *Post, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.GetPublishedPostBySlug")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var p Post
	err = r.db.QueryRow(ctx, `
		SELECT
			bp.id, bp.slug, bp.title, bp.excerpt, bp.content, bp.cover_image_url,
			bp.published_at, bp.updated_at, bp.read_time, bp.featured, bp.views_count, bp.likes_count,
			u.full_name, u.avatar_url, u.bio,
			bc.name, bc.slug
		FROM blog_posts bp
		JOIN users u ON bp.author_id = u.id
		JOIN blog_categories bc ON bp.category_id = bc.id
		WHERE bp.slug = $1 AND bp.is_published = TRUE AND bp.published_at IS NOT NULL
	`, postSlug).Scan(
		&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Content, &p.CoverImageURL,
		&p.PublishedAt, &p.UpdatedAt, &p.ReadTime, &p.Featured, &p.ViewsCount, &p.LikesCount,
		&p.AuthorName, &p.AuthorAvatar, &p.AuthorBio,
		&p.CategoryName, &p.CategorySlug,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Tags, err = r.postTags(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) IncrementViews(ctx context.Context, postID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.IncrementViews")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	_, err = r.db.Exec(
		ctx,
		`UPDATE blog_posts SET views_count = views_count + 1 WHERE id = $1`,
		postID,
	)
	return err
}

// GetAllPosts returns one page of posts for the admin list, drafts
// included, newest created first.
func (r *Repo) GetAllPosts(ctx context.Context, page, limit int) (_ []AdminPost, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.GetAllPosts")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM blog_posts`).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	rows, err := r.db.Query(ctx, `
		SELECT
			bp.id, bp.slug, bp.title, bp.excerpt, bp.cover_image_url,
			bp.published_at, bp.updated_at, bp.featured, bp.is_published,
			u.full_name,
			bc.name
		FROM blog_posts bp
		JOIN users u ON bp.author_id = u.id
		JOIN blog_categories bc ON bp.category_id = bc.id
		ORDER BY bp.created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts := []AdminPost{}
	for rows.Next() {
		var p AdminPost
		if err := rows.Scan(
			&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.CoverImageURL,
			&p.PublishedAt, &p.UpdatedAt, &p.Featured, &p.IsPublished,
			&p.AuthorName, &p.CategoryName,
		); err != nil {
			return nil, 0, fmt.Errorf("scan admin post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}

// CreatePost inserts the post row and links its tags, all in one
// transaction. Tags are created on the fly, keyed by name.
func (r *Repo) CreatePost(ctx context.Context, authorID int, fields PostFields, tags []string) (postID int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.CreatePost")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var slugTaken bool
	if err = tx.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM blog_posts WHERE slug = $1)`,
		fields.Slug,
	).Scan(&slugTaken); err != nil {
		return 0, err
	}
	if slugTaken {
		err = ErrPostSlugTaken
		return 0, err
	}

	var publishedAt *time.Time
	if fields.IsPublished {
		now := time.Now()
		publishedAt = &now
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO blog_posts (
			slug, title, excerpt, content, author_id, category_id,
			cover_image_url, published_at, read_time, featured, is_published
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`,
		fields.Slug, fields.Title, fields.Excerpt, fields.Content, authorID, fields.CategoryID,
		fields.CoverImageURL, publishedAt, fields.ReadTime, fields.Featured, fields.IsPublished,
	).Scan(&postID)
	if err != nil {
		return 0, err
	}

	if err = linkTags(ctx, tx, postID, tags); err != nil {
		return 0, err
	}

	return postID, nil
}

// UpdatePost rewrites the scalar columns of a post owned by authorID.
// When replaceTags is non-nil the tag links are fully replaced, an empty
// list clears them; a nil replaceTags leaves the links untouched.
func (r *Repo) UpdatePost(ctx context.Context, id, authorID int, fields PostFields, replaceTags *[]string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.UpdatePost")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var owned bool
	if err = tx.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM blog_posts WHERE id = $1 AND author_id = $2)`,
		id, authorID,
	).Scan(&owned); err != nil {
		return err
	}
	if !owned {
		err = ErrPostNotFound
		return err
	}

	var slugTaken bool
	if err = tx.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM blog_posts WHERE slug = $1 AND id != $2)`,
		fields.Slug, id,
	).Scan(&slugTaken); err != nil {
		return err
	}
	if slugTaken {
		err = ErrPostSlugTaken
		return err
	}

	var publishedAt *time.Time
	if fields.IsPublished {
		now := time.Now()
		publishedAt = &now
	}

	if _, err = tx.Exec(ctx, `
		UPDATE blog_posts SET
			slug = $1, title = $2, excerpt = $3, content = $4, category_id = $5,
			cover_image_url = $6, published_at = $7, read_time = $8, featured = $9, is_published = $10,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $11 AND author_id = $12
	`,
		fields.Slug, fields.Title, fields.Excerpt, fields.Content, fields.CategoryID,
		fields.CoverImageURL, publishedAt, fields.ReadTime, fields.Featured, fields.IsPublished,
		id, authorID,
	); err != nil {
		return err
	}

	if replaceTags != nil {
		if _, err = tx.Exec(ctx, `DELETE FROM blog_post_tags WHERE post_id = $1`, id); err != nil {
			return err
		}
		if err = linkTags(ctx, tx, id, *replaceTags); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repo) DeletePost(ctx context.Context, id, authorID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.DeletePost")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	// tag links removed by the FK cascade
	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM blog_posts WHERE id = $1 AND author_id = $2`,
		id, authorID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *Repo) postTags(ctx context.Context, postID int) ([]TagInfo, error) {
	rows, err := r.db.Query(ctx, `
		SELECT bt.name, bt.slug
		FROM blog_tags bt
		JOIN blog_post_tags bpt ON bt.id = bpt.tag_id
		WHERE bpt.post_id = $1
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []TagInfo{}
	for rows.Next() {
		var t TagInfo
		if err := rows.Scan(&t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("scan post tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func linkTags(ctx context.Context, tx pgx.Tx, postID int, tags []string) error {
	for _, tagName := range tags {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO blog_tags (name, slug) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			tagName, slug.Make(tagName),
		); err != nil {
			return fmt.Errorf("insert tag %q: %w", tagName, err)
		}

		var tagID int
		if err := tx.QueryRow(
			ctx,
			`SELECT id FROM blog_tags WHERE name = $1`,
			tagName,
		).Scan(&tagID); err != nil {
			return fmt.Errorf("resolve tag %q: %w", tagName, err)
		}

		if _, err := tx.Exec(
			ctx,
			`INSERT INTO blog_post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			postID, tagID,
		); err != nil {
			return fmt.Errorf("link tag %q: %w", tagName, err)
		}
	}
	return nil
}
