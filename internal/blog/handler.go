package blog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mkovacevic/portfolioapi/internal/auth"
	"github.com/mkovacevic/portfolioapi/internal/telemetry/metrics"
	"github.com/mkovacevic/portfolioapi/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type categoryRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
}

type tagRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type postRequest struct {
	Title         string  `json:"title"`
	Slug          string  `json:"slug"`
	Excerpt       string  `json:"excerpt"`
	Content       string  `json:"content"`
	CategoryID    int     `json:"category_id"`
	CoverImageURL *string `json:"cover_image_url"`
	ReadTime      int     `json:"read_time"`
	Featured      bool    `json:"featured"`
	IsPublished   bool    `json:"is_published"`
	// a nil Tags means the field was not sent; on update that leaves
	// the existing tag links untouched
	Tags *[]string `json:"tags"`
}

func (req *postRequest) fields() PostFields {
	readTime := req.ReadTime
	if readTime == 0 {
		readTime = 5
	}
	return PostFields{
		Title:         req.Title,
		Slug:          req.Slug,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		CategoryID:    req.CategoryID,
		CoverImageURL: req.CoverImageURL,
		ReadTime:      readTime,
		Featured:      req.Featured,
		IsPublished:   req.IsPublished,
	}
}

type blogRepo interface {
	GetCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, name, slug string, description *string) (*Category, error)
	UpdateCategory(ctx context.Context, id int, name, slug string, description *string) error
	DeleteCategory(ctx context.Context, id int) error
	GetTags(ctx context.Context) ([]Tag, error)
	CreateTag(ctx context.Context, name, slug string) (*Tag, error)
	GetPublishedPosts(ctx context.Context, page, limit int) ([]Post, int, error)
	GetPublishedPostBySlug(ctx context.Context, slug string) (*Post, error)
	IncrementViews(ctx context.Context, postID int) error
	GetAllPosts(ctx context.Context, page, limit int) ([]AdminPost, int, error)
	CreatePost(ctx context.Context, authorID int, fields PostFields, tags []string) (int, error)
	UpdatePost(ctx context.Context, id, authorID int, fields PostFields, replaceTags *[]string) error
	DeletePost(ctx context.Context, id, authorID int) error
}

type Handler struct {
	repo           blogRepo
	metricsManager *metrics.Manager
}

func NewHandler(repo blogRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

// SetupRoutes registers the public blog routes on apiRouter and the
// mutating ones on adminRouter (which carries the auth middleware).
func (handler *Handler) SetupRoutes(apiRouter, adminRouter *mux.Router) {
	apiRouter.HandleFunc("/blog/posts", handler.handleGetPosts).Methods("GET", "OPTIONS").Name("blog-posts")
	apiRouter.HandleFunc("/blog/posts/{slug}", handler.handleGetPostBySlug).Methods("GET", "OPTIONS").Name("blog-post-by-slug")
	apiRouter.HandleFunc("/blog/categories", handler.handleGetCategories).Methods("GET", "OPTIONS").Name("blog-categories")
	apiRouter.HandleFunc("/blog/tags", handler.handleGetTags).Methods("GET", "OPTIONS").Name("blog-tags")

	adminRouter.HandleFunc("/blog/posts", handler.handleGetAllPosts).Methods("GET", "OPTIONS").Name("admin-blog-posts")
	adminRouter.HandleFunc("/blog/posts", handler.handleCreatePost).Methods("POST", "OPTIONS").Name("new-blog-post")
	adminRouter.HandleFunc("/blog/posts/{id}", handler.handleUpdatePost).Methods("PUT", "OPTIONS").Name("update-blog-post")
	adminRouter.HandleFunc("/blog/posts/{id}", handler.handleDeletePost).Methods("DELETE", "OPTIONS").Name("delete-blog-post")
	adminRouter.HandleFunc("/blog/categories", handler.handleCreateCategory).Methods("POST", "OPTIONS").Name("new-blog-category")
	adminRouter.HandleFunc("/blog/categories/{id}", handler.handleUpdateCategory).Methods("PUT", "OPTIONS").Name("update-blog-category")
	adminRouter.HandleFunc("/blog/categories/{id}", handler.handleDeleteCategory).Methods("DELETE", "OPTIONS").Name("delete-blog-category")
	adminRouter.HandleFunc("/blog/tags", handler.handleCreateTag).Methods("POST", "OPTIONS").Name("new-blog-tag")
}

func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	return page, limit
}

func (handler *Handler) handleGetPosts(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	posts, total, err := handler.repo.GetPublishedPosts(r.Context(), page, limit)
	if err != nil {
		log.Errorf("get blog posts: %s", err)
		pkg.WriteInternalError(w)
		return
	}

	pkg.WritePage(w, posts, pkg.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: pkg.TotalPages(total, limit),
	})
}

func (handler *Handler) handleGetPostBySlug(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	postSlug := vars["slug"]

	post, err := handler.repo.GetPublishedPostBySlug(r.Context(), postSlug)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			pkg.WriteError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Errorf("get blog post [%s]: %s", postSlug, err)
		pkg.WriteInternalError(w)
		return
	}

	if err := handler.repo.IncrementViews(r.Context(), post.ID); err != nil {
		log.Errorf("increment views for post %d: %s", post.ID, err)
		pkg.WriteInternalError(w)
		return
	}
	handler.metricsManager.CounterBlogPostViews.Inc()

	pkg.WriteData(w, http.StatusOK, post)
}

func (handler *Handler) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := handler.repo.GetCategories(r.Context())
	if err != nil {
		log.Errorf("get blog categories: %s", err)
		pkg.WriteInternalError(w)
		return
	}
	pkg.WriteData(w, http.StatusOK, categories)
}

func (handler *Handler) handleGetTags(w http.ResponseWriter, r *http.Request) {
	tags, err := handler.repo.GetTags(r.Context())
	if err != nil {
		log.Errorf("get blog tags: %s", err)
		pkg.WriteInternalError(w)
		return
	}
	pkg.WriteData(w, http.StatusOK, tags)
}

func (handler *Handler) handleGetAllPosts(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	posts, total, err := handler.repo.GetAllPosts(r.Context(), page, limit)
	if err != nil {
		log.Errorf("get all blog posts: %s", err)
		pkg.WriteInternalError(w)
		return
	}

	pkg.WritePage(w, posts, pkg.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: pkg.TotalPages(total, limit),
	})
}

func (handler *Handler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		pkg.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var postReq postRequest
	if err := json.NewDecoder(r.Body).Decode(&postReq); err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Title, slug, excerpt, content, and category_id are required")
		return
	}

	if postReq.Title == "" || postReq.Slug == "" || postReq.Excerpt == "" ||
		postReq.Content == "" || postReq.CategoryID == 0 {
		pkg.WriteError(w, http.StatusBadRequest, "Title, slug, excerpt, content, and category_id are required")
		return
	}

	var tags []string
	if postReq.Tags != nil {
		tags = *postReq.Tags
	}

	postID, err := handler.repo.CreatePost(r.Context(), claims.UserID, postReq.fields(), tags)
	if err != nil {
		if errors.Is(err, ErrPostSlugTaken) {
			pkg.WriteError(w, http.StatusBadRequest, "Post slug already exists")
			return
		}
		log.Errorf("create blog post: %s", err)
		pkg.WriteInternalError(w)
		return
	}

	log.Tracef("new blog post %d: [%s] added", postID, postReq.Title)

	pkg.WriteResponse(w, http.StatusCreated, pkg.ApiResponse{
		Success: true,
		Data:    map[string]int{"id": postID},
		Message: "Post created successfully",
	})
}

func (handler *Handler) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		pkg.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	var postReq postRequest
	if err := json.NewDecoder(r.Body).Decode(&postReq); err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Title, slug, excerpt, content, and category_id are required")
		return
	}

	err = handler.repo.UpdatePost(r.Context(), id, claims.UserID, postReq.fields(), postReq.Tags)
	if err != nil {
		switch {
		case errors.Is(err, ErrPostNotFound):
			pkg.WriteError(w, http.StatusNotFound, "Post not found or access denied")
		case errors.Is(err, ErrPostSlugTaken):
			pkg.WriteError(w, http.StatusBadRequest, "Post slug already exists")
		default:
			log.Errorf("update blog post %d: %s", id, err)
			pkg.WriteInternalError(w)
		}
		return
	}

	pkg.WriteMessage(w, http.StatusOK, "Post updated successfully")
}

func (handler *Handler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		pkg.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	if err := handler.repo.DeletePost(r.Context(), id, claims.UserID); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			pkg.WriteError(w, http.StatusNotFound, "Post not found or access denied")
			return
		}
		log.Errorf("delete blog post %d: %s", id, err)
		pkg.WriteInternalError(w)
		return
	}

	pkg.WriteMessage(w, http.StatusOK, "Post deleted successfully")
}

func (handler *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var categoryReq categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&categoryReq); err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Name and slug are required")
		return
	}
	if categoryReq.Name == "" || categoryReq.Slug == "" {
		pkg.WriteError(w, http.StatusBadRequest, "Name and slug are required")
		return
	}

	category, err := handler.repo.CreateCategory(r.Context(), categoryReq.Name, categoryReq.Slug, categoryReq.Description)
	if err != nil {
		if errors.Is(err, ErrCategorySlugTaken) {
			pkg.WriteError(w, http.StatusBadRequest, "Category slug already exists")
			return
		}
		log.Errorf("create blog category: %s", err)
		pkg.WriteInternalError(w)
		return
	}

	pkg.WriteResponse(w, http.StatusCreated, pkg.ApiResponse{
		Success: true,
		Data:    category,
		Message: "Category created successfully",
	})
}

func (handler *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	var categoryReq categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&categoryReq); err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Name and slug are required")
		return
	}
	if categoryReq.Name == "" || categoryReq.Slug == "" {
		pkg.WriteError(w, http.StatusBadRequest, "Name and slug are required")
		return
	}

	err = handler.repo.UpdateCategory(r.Context(), id, categoryReq.Name, categoryReq.Slug, categoryReq.Description)
	if err != nil {
		switch {
		case errors.Is(err, ErrCategoryNotFound):
			pkg.WriteError(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, ErrCategorySlugTaken):
			pkg.WriteError(w, http.StatusBadRequest, "Category slug already exists")
		default:
			log.Errorf("update blog category %d: %s", id, err)
			pkg.WriteInternalError(w)
		}
		return
	}

	pkg.WriteMessage(w, http.StatusOK, "Category updated successfully")
}

func (handler *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	if err := handler.repo.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, ErrCategoryHasPosts) {
			pkg.WriteError(w, http.StatusBadRequest, "Cannot delete category with existing posts")
			return
		}
		log.Errorf("delete blog category %d: %s", id, err)
		pkg.WriteInternalError(w)
		return
	}

	pkg.WriteMessage(w, http.StatusOK, "Category deleted successfully")
}

func (handler *Handler) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var tagReq tagRequest
	if err := json.NewDecoder(r.Body).Decode(&tagReq); err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Name and slug are required")
		return
	}
	if tagReq.Name == "" || tagReq.Slug == "" {
		pkg.WriteError(w, http.StatusBadRequest, "Name and slug are required")
		return
	}

	tag, err := handler.repo.CreateTag(r.Context(), tagReq.Name, tagReq.Slug)
	if err != nil {
		if errors.Is(err, ErrTagSlugTaken) {
			pkg.WriteError(w, http.StatusBadRequest, "Tag slug already exists")
			return
		}
		log.Errorf("create blog tag: %s", err)
		pkg.WriteInternalError(w)
		return
	}

	pkg.WriteResponse(w, http.StatusCreated, pkg.ApiResponse{
		Success: true,
		Data:    tag,
		Message: "Tag created successfully",
	})
}
