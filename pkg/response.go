package pkg

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// ApiResponse is the envelope every endpoint replies with.
type ApiResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}

func WriteResponse(w http.ResponseWriter, statusCode int, resp ApiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Errorf("failed to write response: %s", err)
	}
}

func WriteData(w http.ResponseWriter, statusCode int, data interface{}) {
	WriteResponse(w, statusCode, ApiResponse{Success: true, Data: data})
}

func WriteDataWithMessage(w http.ResponseWriter, statusCode int, data interface{}, message string) {
	WriteResponse(w, statusCode, ApiResponse{Success: true, Data: data, Message: message})
}

func WriteMessage(w http.ResponseWriter, statusCode int, message string) {
	WriteResponse(w, statusCode, ApiResponse{Success: true, Message: message})
}

func WriteError(w http.ResponseWriter, statusCode int, errMessage string) {
	WriteResponse(w, statusCode, ApiResponse{Success: false, Error: errMessage})
}

func WriteInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}

func WritePage(w http.ResponseWriter, data interface{}, pagination Pagination) {
	WriteResponse(w, http.StatusOK, ApiResponse{
		Success:    true,
		Data:       data,
		Pagination: &pagination,
	})
}
