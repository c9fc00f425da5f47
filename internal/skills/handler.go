package skills

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

type skillsRepo interface {
	GetAll(ctx context.Context) ([]Skill, error)
	GetByCategory(ctx context.Context, categoryID int) ([]Skill, error)
	GetByID(ctx context.Context, id int) (*Skill, error)
	GetCategories(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, newSkill NewSkill) (int, error)
	Update(ctx context.Context, id int, update SkillUpdate) error
	Delete(ctx context.Context, id int) error
}

type Handler struct {
	repo skillsRepo
}

func NewHandler(repo skillsRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(apiRouter, adminRouter *mux.Router) {
	// fixed paths before the {id} catch-all, mux matches in registration order
	apiRouter.HandleFunc("/skills", handler.handleGetAll).Methods("GET", "OPTIONS").Name("skills")
	apiRouter.HandleFunc("/skills/categories", handler.handleGetCategories).Methods("GET", "OPTIONS").Name("skill-categories")
	apiRouter.HandleFunc("/skills/category/{categoryId}", handler.handleGetByCategory).Methods("GET", "OPTIONS").Name("skills-by-category")
	apiRouter.HandleFunc("/skills/{id}", handler.handleGetByID).Methods("GET", "OPTIONS").Name("skill-by-id")

	adminRouter.HandleFunc("/skills", handler.handleCreate).Methods("POST", "OPTIONS").Name("new-skill")
	adminRouter.HandleFunc("/skills/{id}", handler.handleUpdate).Methods("PUT", "OPTIONS").Name("update-skill")
	adminRouter.HandleFunc("/skills/{id}", handler.handleDelete).Methods("DELETE", "OPTIONS").Name("delete-skill")
}

func (handler *Handler) handleGetAll(w http.ResponseWriter, r *http.Request) {
	skills, err := handler.repo.GetAll(r.Context())
	if err != nil {
		log.Errorf("get skills: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to fetch skills")
		return
	}
	pkg.WriteData(w, http.StatusOK, skills)
}

func (handler *Handler) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := handler.repo.GetCategories(r.Context())
	if err != nil {
		log.Errorf("get skill categories: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to fetch skill categories")
		return
	}
	pkg.WriteData(w, http.StatusOK, categories)
}

func (handler *Handler) handleGetByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.Atoi(mux.Vars(r)["categoryId"])
	if err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	skills, err := handler.repo.GetByCategory(r.Context(), categoryID)
	if err != nil {
		log.Errorf("get skills for category %d: %s", categoryID, err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to fetch skills by category")
		return
	}
	pkg.WriteData(w, http.StatusOK, skills)
}

func (handler *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid skill ID")
		return
	}

	skill, err := handler.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSkillNotFound) {
			pkg.WriteError(w, http.StatusNotFound, "Skill not found")
			return
		}
		log.Errorf("get skill %d: %s", id, err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to fetch skill")
		return
	}
	pkg.WriteData(w, http.StatusOK, skill)
}

func (handler *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var newSkill NewSkill
	if err := json.NewDecoder(r.Body).Decode(&newSkill); err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid skill payload")
		return
	}

	skillID, err := handler.repo.Create(r.Context(), newSkill)
	if err != nil {
		log.Errorf("create skill: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to create skill")
		return
	}

	pkg.WriteResponse(w, http.StatusCreated, pkg.ApiResponse{
		Success: true,
		Data:    map[string]int{"id": skillID},
		Message: "Skill created successfully",
	})
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid skill ID")
		return
	}

	var update SkillUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid skill payload")
		return
	}

	if err := handler.repo.Update(r.Context(), id, update); err != nil {
		if errors.Is(err, ErrSkillNotFound) {
			pkg.WriteError(w, http.StatusNotFound, "Skill not found or update failed")
			return
		}
		log.Errorf("update skill %d: %s", id, err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to update skill")
		return
	}

	pkg.WriteMessage(w, http.StatusOK, "Skill updated successfully")
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid skill ID")
		return
	}

	if err := handler.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrSkillNotFound) {
			pkg.WriteError(w, http.StatusNotFound, "Skill not found")
			return
		}
		log.Errorf("delete skill %d: %s", id, err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to delete skill")
		return
	}

	pkg.WriteMessage(w, http.StatusOK, "Skill deleted successfully")
}
