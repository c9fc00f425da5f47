package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkovacevic/portfolioapi/pkg"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func servicesTestSetup(t *testing.T) (*repoMock, *mux.Router) {
	t.Helper()

	repo := newRepoMock()
	handler := NewHandler(repo)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	admin := api.PathPrefix("/admin").Subrouter()
	handler.SetupRoutes(api, admin)

	return repo, r
}

func doServicesReq(t *testing.T, r *mux.Router, method, target, body string) (*httptest.ResponseRecorder, pkg.ApiResponse) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp pkg.ApiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHandler_CreateService(t *testing.T) {
	repo, r := servicesTestSetup(t)

	rec, resp := doServicesReq(t, r, "POST", "/api/admin/services", `{
		"title": "Backend Development",
		"description": "APIs and services",
		"icon_name": "server",
		"is_active": true
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Service created successfully", resp.Message)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	serviceID := int(data["id"].(float64))

	service := repo.Services[serviceID]
	require.NotNil(t, service)
	assert.Equal(t, "Backend Development", service.Title)
	assert.True(t, service.IsActive)
}

func TestHandler_GetServices_ActiveOnly(t *testing.T) {
	repo, r := servicesTestSetup(t)

	_, err := repo.Create(t.Context(), NewService{Title: "visible", Description: "d", IsActive: true, DisplayOrder: 2})
	require.NoError(t, err)
	_, err = repo.Create(t.Context(), NewService{Title: "hidden", Description: "d", IsActive: false, DisplayOrder: 1})
	require.NoError(t, err)

	rec, resp := doServicesReq(t, r, "GET", "/api/services", "")
	require.Equal(t, http.StatusOK, rec.Code)
	services, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, services, 1)
	assert.Equal(t, "visible", services[0].(map[string]interface{})["title"])

	// admin listing sees inactive too, ordered by display_order
	rec, resp = doServicesReq(t, r, "GET", "/api/admin/services", "")
	require.Equal(t, http.StatusOK, rec.Code)
	all, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, all, 2)
	assert.Equal(t, "hidden", all[0].(map[string]interface{})["title"])
}

func TestHandler_GetServiceByID(t *testing.T) {
	repo, r := servicesTestSetup(t)

	serviceID, err := repo.Create(t.Context(), NewService{Title: "one", Description: "d", IsActive: true})
	require.NoError(t, err)

	rec, resp := doServicesReq(t, r, "GET", fmt.Sprintf("/api/services/%d", serviceID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	service, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "one", service["title"])

	rec, resp = doServicesReq(t, r, "GET", "/api/services/12345", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Service not found", resp.Error)

	rec, resp = doServicesReq(t, r, "GET", "/api/services/nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid service ID", resp.Error)
}

func TestHandler_UpdateService(t *testing.T) {
	repo, r := servicesTestSetup(t)

	serviceID, err := repo.Create(t.Context(), NewService{
		Title: "before", Description: "keep me", IsActive: true,
	})
	require.NoError(t, err)

	rec, resp := doServicesReq(
		t, r, "PUT", fmt.Sprintf("/api/admin/services/%d", serviceID),
		`{"title": "after", "is_active": false}`,
	)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Service updated successfully", resp.Message)

	service := repo.Services[serviceID]
	assert.Equal(t, "after", service.Title)
	assert.Equal(t, "keep me", service.Description)
	assert.False(t, service.IsActive)

	rec, resp = doServicesReq(t, r, "PUT", "/api/admin/services/12345", `{"title": "x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Service not found or update failed", resp.Error)
}

func TestHandler_DeleteService(t *testing.T) {
	repo, r := servicesTestSetup(t)

	serviceID, err := repo.Create(t.Context(), NewService{Title: "doomed", Description: "d"})
	require.NoError(t, err)

	rec, resp := doServicesReq(t, r, "DELETE", fmt.Sprintf("/api/admin/services/%d", serviceID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Service deleted successfully", resp.Message)
	assert.Empty(t, repo.Services)

	rec, resp = doServicesReq(t, r, "DELETE", fmt.Sprintf("/api/admin/services/%d", serviceID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Service not found", resp.Error)
}
