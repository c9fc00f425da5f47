package projects

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mkovacevic/portfolioapi/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type projectsRepo interface {
	GetAll(ctx context.Context) ([]Project, error)
	GetFeatured(ctx context.Context) ([]Project, error)
	GetByID(ctx context.Context, id int) (*Project, error)
	Create(ctx context.Context, newProject NewProject) (int, error)
	Update(ctx context.Context, id int, update ProjectUpdate) error
	Delete(ctx context.Context, id int) error
}

type Handler struct {
	repo projectsRepo
}

func NewHandler(repo projectsRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(apiRouter, adminRouter *mux.Router) {
	apiRouter.HandleFunc("/projects", handler.handleGetAll).Methods("GET", "OPTIONS").Name("projects")
	apiRouter.HandleFunc("/projects/featured", handler.handleGetFeatured).Methods("GET", "OPTIONS").Name("featured-projects")
	apiRouter.HandleFunc("/projects/{id}", handler.handleGetByID).Methods("GET", "OPTIONS").Name("project-by-id")

	adminRouter.HandleFunc("/projects", handler.handleCreate).Methods("POST", "OPTIONS").Name("new-project")
	adminRouter.HandleFunc("/projects/{id}", handler.handleUpdate).Methods("PUT", "OPTIONS").Name("update-project")
	adminRouter.HandleFunc("/projects/{id}", handler.handleDelete).Methods("DELETE", "OPTIONS").Name("delete-project")
}

func (handler *Handler) handleGetAll(w http.ResponseWriter, r *http.Request) {
	projects, err := handler.repo.GetAll(r.Context())
	if err != nil {
		log.Errorf("get projects: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to fetch projects")
		return
	}
	pkg.WriteData(w, http.StatusOK, projects)
}

func (handler *Handler) handleGetFeatured(w http.ResponseWriter, r *http.Request) {
	projects, err := handler.repo.GetFeatured(r.Context())
	if err != nil {
		log.Errorf("get featured projects: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to fetch featured projects")
		return
	}
	pkg.WriteData(w, http.StatusOK, projects)
}

func (handler *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	project, err := handler.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			pkg.WriteError(w, http.StatusNotFound, "Project not found")
			return
		}
		log.Errorf("get project %d: %s", id, err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to fetch project")
		return
	}
	pkg.WriteData(w, http.StatusOK, project)
}

func (handler *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var newProject NewProject
	if err := json.NewDecoder(r.Body).Decode(&newProject); err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Title and description are required")
		return
	}
	if newProject.Title == "" || newProject.Description == "" {
		pkg.WriteError(w, http.StatusBadRequest, "Title and description are required")
		return
	}

	projectID, err := handler.repo.Create(r.Context(), newProject)
	if err != nil {
		log.Errorf("create project: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to create project")
		return
	}

	log.Tracef("new project %d: [%s] added", projectID, newProject.Title)

	pkg.WriteResponse(w, http.StatusCreated, pkg.ApiResponse{
		Success: true,
		Data:    map[string]int{"id": projectID},
		Message: "Project created successfully",
	})
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var update ProjectUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid project payload")
		return
	}

	if err := handler.repo.Update(r.Context(), id, update); err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			pkg.WriteError(w, http.StatusNotFound, "Project not found or update failed")
			return
		}
		log.Errorf("update project %d: %s", id, err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to update project")
		return
	}

	pkg.WriteMessage(w, http.StatusOK, "Project updated successfully")
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	if err := handler.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			pkg.WriteError(w, http.StatusNotFound, "Project not found")
			return
		}
		log.Errorf("delete project %d: %s", id, err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to delete project")
		return
	}

	pkg.WriteMessage(w, http.StatusOK, "Project deleted successfully")
}
