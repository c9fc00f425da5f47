package uploads

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mkovacevic/portfolioapi/internal/telemetry/metrics"
	"github.com/mkovacevic/portfolioapi/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// uploadRoute wires one kind to its response wording.
type uploadRoute struct {
	kind           Kind
	noFilesMessage string
	successFormat  string
	failureMessage string
}

type Handler struct {
	store          *DiskStore
	metricsManager *metrics.Manager
}

func NewHandler(store *DiskStore, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		store:          store,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(
	apiRouter *mux.Router,
	requireAuth func(next http.Handler) http.Handler,
	requireAdmin func(next http.Handler) http.Handler,
) {
	uploadRouter := apiRouter.PathPrefix("/upload").Subrouter()
	uploadRouter.Use(requireAuth, requireAdmin)

	images, _ := KindByName("images")
	projects, _ := KindByName("projects")
	blog, _ := KindByName("blog")

	uploadRouter.HandleFunc("/images", handler.handleUpload(uploadRoute{
		kind:           images,
		noFilesMessage: "No files uploaded",
		successFormat:  "%d file(s) uploaded successfully",
		failureMessage: "Failed to upload files",
	})).Methods("POST", "OPTIONS").Name("upload-images")

	uploadRouter.HandleFunc("/projects", handler.handleUpload(uploadRoute{
		kind:           projects,
		noFilesMessage: "No project images uploaded",
		successFormat:  "%d project image(s) uploaded successfully",
		failureMessage: "Failed to upload project images",
	})).Methods("POST", "OPTIONS").Name("upload-project-images")

	uploadRouter.HandleFunc("/blog", handler.handleUpload(uploadRoute{
		kind:           blog,
		noFilesMessage: "No blog images uploaded",
		successFormat:  "%d blog image(s) uploaded successfully",
		failureMessage: "Failed to upload blog images",
	})).Methods("POST", "OPTIONS").Name("upload-blog-images")

	uploadRouter.HandleFunc("/files/{filename}", handler.handleDelete).Methods("DELETE", "OPTIONS").Name("delete-uploaded-file")
}

func (handler *Handler) handleUpload(route uploadRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(route.kind.MaxSize); err != nil {
			pkg.WriteError(w, http.StatusBadRequest, route.noFilesMessage)
			return
		}

		fileHeaders := r.MultipartForm.File["files"]
		if len(fileHeaders) == 0 {
			pkg.WriteError(w, http.StatusBadRequest, route.noFilesMessage)
			return
		}
		if len(fileHeaders) > route.kind.MaxFiles {
			pkg.WriteError(w, http.StatusBadRequest, "Too many files uploaded")
			return
		}

		uploadedFiles := make([]UploadedFile, 0, len(fileHeaders))
		for _, fileHeader := range fileHeaders {
			file, err := fileHeader.Open()
			if err != nil {
				log.Errorf("upload %s: open %s: %s", route.kind.Name, fileHeader.Filename, err)
				pkg.WriteError(w, http.StatusInternalServerError, route.failureMessage)
				return
			}

			uploaded, err := handler.store.Save(
				r.Context(),
				route.kind,
				fileHeader.Filename,
				fileHeader.Header.Get("Content-Type"),
				fileHeader.Size,
				file,
			)
			if closeErr := file.Close(); closeErr != nil {
				log.Warnf("upload %s: close %s: %s", route.kind.Name, fileHeader.Filename, closeErr)
			}
			if err != nil {
				var typeErr *TypeNotAllowedError
				var sizeErr *FileTooLargeError
				if errors.As(err, &typeErr) || errors.As(err, &sizeErr) {
					pkg.WriteError(w, http.StatusBadRequest, err.Error())
					return
				}
				log.Errorf("upload %s: save %s: %s", route.kind.Name, fileHeader.Filename, err)
				pkg.WriteError(w, http.StatusInternalServerError, route.failureMessage)
				return
			}

			handler.metricsManager.CounterUploadedFiles.Inc()
			uploadedFiles = append(uploadedFiles, *uploaded)
		}

		pkg.WriteResponse(w, http.StatusCreated, pkg.ApiResponse{
			Success: true,
			Data:    uploadedFiles,
			Message: fmt.Sprintf(route.successFormat, len(uploadedFiles)),
		})
	}
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]
	if filename == "" {
		pkg.WriteError(w, http.StatusBadRequest, "Filename is required")
		return
	}

	if err := handler.store.Delete(r.Context(), filename); err != nil {
		if errors.Is(err, ErrInvalidFilename) {
			pkg.WriteError(w, http.StatusBadRequest, "Filename is required")
			return
		}
		if errors.Is(err, ErrFileNotFound) {
			pkg.WriteError(w, http.StatusNotFound, "File not found or could not be deleted")
			return
		}
		log.Errorf("delete uploaded file %s: %s", filename, err)
		pkg.WriteError(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}

	pkg.WriteMessage(w, http.StatusOK, "File deleted successfully")
}
