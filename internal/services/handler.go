package services

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

type servicesRepo interface {
	GetActive(ctx context.Context) ([]Service, error)
	GetAll(ctx context.Context) ([]Service, error)
	GetByID(ctx context.Context, id int) (*Service, error)
	Create(ctx context.Context, newService NewService) (int, error)
	Update(ctx context.Context, id int, update ServiceUpdate) error
	Delete(ctx context.Context, id int) error
}

type Handler struct {
	repo servicesRepo
}

func NewHandler(repo servicesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(apiRouter, adminRouter *mux.Router) {
	apiRouter.HandleFunc("/services", handler.handleGetActive).Methods("GET", "OPTIONS").Name("services")
	apiRouter.HandleFunc("/services/{id}", handler.handleGetByID).Methods("GET", "OPTIONS").Name("service-by-id")

	// admin listing includes inactive services
	adminRouter.HandleFunc("/services", handler.handleGetAll).Methods("GET", "OPTIONS").Name("all-services")
	adminRouter.HandleFunc("/services", handler.handleCreate).Methods("POST", "OPTIONS").Name("new-service")
	adminRouter.HandleFunc("/services/{id}", handler.handleUpdate).Methods("PUT", "OPTIONS").Name("update-service")
	adminRouter.HandleFunc("/services/{id}", handler.handleDelete).Methods("DELETE", "OPTIONS").Name("delete-service")
}

func (handler *Handler) handleGetActive(w http.ResponseWriter, r *http.Request) {
	services, err := handler.repo.GetActive(r.Context())
	if err != nil {
		log.Errorf("get services: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to fetch services")
		return
	}
	pkg.WriteData(w, http.StatusOK, services)
}

func (handler *Handler) handleGetAll(w http.ResponseWriter, r *http.Request) {
	services, err := handler.repo.GetAll(r.Context())
	if err != nil {
		log.Errorf("get all services: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to fetch all services")
		return
	}
	pkg.WriteData(w, http.StatusOK, services)
}

func (handler *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid service ID")
		return
	}

	service, err := handler.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			pkg.WriteError(w, http.StatusNotFound, "Service not found")
			return
		}
		log.Errorf("get service %d: %s", id, err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to fetch service")
		return
	}
	pkg.WriteData(w, http.StatusOK, service)
}

func (handler *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var newService NewService
	if err := json.NewDecoder(r.Body).Decode(&newService); err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid service payload")
		return
	}

	serviceID, err := handler.repo.Create(r.Context(), newService)
	if err != nil {
		log.Errorf("create service: %s", err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to create service")
		return
	}

	pkg.WriteResponse(w, http.StatusCreated, pkg.ApiResponse{
		Success: true,
		Data:    map[string]int{"id": serviceID},
		Message: "Service created successfully",
	})
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid service ID")
		return
	}

	var update ServiceUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid service payload")
		return
	}

	if err := handler.repo.Update(r.Context(), id, update); err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			pkg.WriteError(w, http.StatusNotFound, "Service not found or update failed")
			return
		}
		log.Errorf("update service %d: %s", id, err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to update service")
		return
	}

	pkg.WriteMessage(w, http.StatusOK, "Service updated successfully")
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteError(w, http.StatusBadRequest, "Invalid service ID")
		return
	}

	if err := handler.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			pkg.WriteError(w, http.StatusNotFound, "Service not found")
			return
		}
		log.Errorf("delete service %d: %s", id, err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to delete service")
		return
	}

	pkg.WriteMessage(w, http.StatusOK, "Service deleted successfully")
}
