package skills

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

func skillsTestSetup(t *testing.T) (*repoMock, *mux.Router) {
	t.Helper()

	repo := newRepoMock()
	handler := NewHandler(repo)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	admin := api.PathPrefix("/admin").Subrouter()
	handler.SetupRoutes(api, admin)

	return repo, r
}

func doSkillsReq(t *testing.T, r *mux.Router, method, target, body string) (*httptest.ResponseRecorder, pkg.ApiResponse) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp pkg.ApiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHandler_CreateAndGetSkills(t *testing.T) {
	repo, r := skillsTestSetup(t)

	backend := repo.addCategory("Backend", 1)
	frontend := repo.addCategory("Frontend", 2)

	rec, resp := doSkillsReq(t, r, "POST", "/api/admin/skills", fmt.Sprintf(
		`{"category_id": %d, "name": "Go", "proficiency_level": "Expert", "display_order": 1}`, backend.ID,
	))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Skill created successfully", resp.Message)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	skillID := int(data["id"].(float64))
	require.NotZero(t, skillID)
	assert.Equal(t, "Expert", repo.Skills[skillID].ProficiencyLevel)

	_, err := repo.Create(t.Context(), NewSkill{
		CategoryID: frontend.ID, Name: "TypeScript", ProficiencyLevel: "Advanced", DisplayOrder: 1,
	})
	require.NoError(t, err)

	rec, resp = doSkillsReq(t, r, "GET", "/api/skills", "")
	require.Equal(t, http.StatusOK, rec.Code)
	skills, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, skills, 2)
	// ordered by category display_order first
	first := skills[0].(map[string]interface{})
	assert.Equal(t, "Go", first["name"])
	assert.Equal(t, "Backend", first["category_name"])
	assert.Equal(t, "Expert", first["proficiency_level"])

	rec, resp = doSkillsReq(t, r, "GET", fmt.Sprintf("/api/skills/category/%d", frontend.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	byCategory, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "TypeScript", byCategory[0].(map[string]interface{})["name"])
}

func TestHandler_GetSkillCategories(t *testing.T) {
	repo, r := skillsTestSetup(t)

	repo.addCategory("Tools", 2)
	repo.addCategory("Backend", 1)

	rec, resp := doSkillsReq(t, r, "GET", "/api/skills/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	categories, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, categories, 2)
	assert.Equal(t, "Backend", categories[0].(map[string]interface{})["name"])
	assert.Equal(t, "Tools", categories[1].(map[string]interface{})["name"])
}

func TestHandler_GetSkillByID(t *testing.T) {
	repo, r := skillsTestSetup(t)

	category := repo.addCategory("Backend", 1)
	skillID, err := repo.Create(t.Context(), NewSkill{
		CategoryID: category.ID, Name: "PostgreSQL", ProficiencyLevel: "Advanced",
	})
	require.NoError(t, err)

	rec, resp := doSkillsReq(t, r, "GET", fmt.Sprintf("/api/skills/%d", skillID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	skill, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "PostgreSQL", skill["name"])

	rec, resp = doSkillsReq(t, r, "GET", "/api/skills/12345", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Skill not found", resp.Error)

	rec, resp = doSkillsReq(t, r, "GET", "/api/skills/nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid skill ID", resp.Error)
}

func TestHandler_UpdateSkill(t *testing.T) {
	repo, r := skillsTestSetup(t)

	category := repo.addCategory("Backend", 1)
	skillID, err := repo.Create(t.Context(), NewSkill{
		CategoryID: category.ID, Name: "Redis", ProficiencyLevel: "Intermediate", DisplayOrder: 2,
	})
	require.NoError(t, err)

	rec, resp := doSkillsReq(
		t, r, "PUT", fmt.Sprintf("/api/admin/skills/%d", skillID),
		`{"proficiency_level": "Expert"}`,
	)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Skill updated successfully", resp.Message)

	skill := repo.Skills[skillID]
	assert.Equal(t, "Expert", skill.ProficiencyLevel)
	// omitted fields untouched
	assert.Equal(t, "Redis", skill.Name)
	assert.Equal(t, 2, skill.DisplayOrder)

	rec, resp = doSkillsReq(t, r, "PUT", "/api/admin/skills/12345", `{"name": "x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Skill not found or update failed", resp.Error)
}

func TestHandler_DeleteSkill(t *testing.T) {
	repo, r := skillsTestSetup(t)

	category := repo.addCategory("Backend", 1)
	skillID, err := repo.Create(t.Context(), NewSkill{CategoryID: category.ID, Name: "Kafka"})
	require.NoError(t, err)

	rec, resp := doSkillsReq(t, r, "DELETE", fmt.Sprintf("/api/admin/skills/%d", skillID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Skill deleted successfully", resp.Message)
	assert.Empty(t, repo.Skills)

	rec, resp = doSkillsReq(t, r, "DELETE", fmt.Sprintf("/api/admin/skills/%d", skillID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Skill not found", resp.Error)
}
