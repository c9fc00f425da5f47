//go:build e2e_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status, envelope := s.doRequest(ctx, "GET", "/api/health", "", "")
	require.Equal(s.T(), http.StatusOK, status)
	assert.True(s.T(), envelope.Success)
	assert.Equal(s.T(), "Server is running", envelope.Message)
}

func (s *IntegrationTestSuite) TestUnknownApiEndpoint() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status, envelope := s.doRequest(ctx, "GET", "/api/nope/nothing-here", "", "")
	assert.Equal(s.T(), http.StatusNotFound, status)
	assert.Equal(s.T(), "API endpoint not found", envelope.Error)
}

func (s *IntegrationTestSuite) TestProjects_FullFlow() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	t := s.T()

	authToken := doLogin(ctx, t)

	status, envelope := s.doRequest(ctx, "POST", "/api/admin/projects", `{
		"title": "Portfolio Site",
		"description": "This very site",
		"featured": true,
		"technologies": ["Go", "PostgreSQL", "Redis"]
	}`, authToken)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Project created successfully", envelope.Message)
	var created struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &created))

	status, envelope = s.doRequest(ctx, "GET", "/api/projects/featured", "", "")
	require.Equal(t, http.StatusOK, status)
	var featured []struct {
		ID           int      `json:"id"`
		Title        string   `json:"title"`
		Technologies []string `json:"technologies"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &featured))
	require.Len(t, featured, 1)
	assert.Equal(t, "Portfolio Site", featured[0].Title)
	assert.ElementsMatch(t, []string{"Go", "PostgreSQL", "Redis"}, featured[0].Technologies)

	// partial update, technologies replaced
	status, envelope = s.doRequest(
		ctx, "PUT", fmt.Sprintf("/api/admin/projects/%d", created.ID),
		`{"featured": false, "technologies": ["Go"]}`, authToken,
	)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Project updated successfully", envelope.Message)

	status, envelope = s.doRequest(ctx, "GET", fmt.Sprintf("/api/projects/%d", created.ID), "", "")
	require.Equal(t, http.StatusOK, status)
	var project struct {
		Title        string   `json:"title"`
		Featured     bool     `json:"featured"`
		Technologies []string `json:"technologies"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &project))
	assert.Equal(t, "Portfolio Site", project.Title)
	assert.False(t, project.Featured)
	assert.Equal(t, []string{"Go"}, project.Technologies)

	status, envelope = s.doRequest(ctx, "DELETE", fmt.Sprintf("/api/admin/projects/%d", created.ID), "", authToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Project deleted successfully", envelope.Message)
}

func (s *IntegrationTestSuite) TestSkillsAndServices() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	t := s.T()

	authToken := doLogin(ctx, t)

	// skill categories are managed directly in the db
	var categoryID int
	require.NoError(t, s.db.QueryRow(ctx, `
		INSERT INTO skill_categories (name, display_order) VALUES ('Backend', 1) RETURNING id
	`).Scan(&categoryID))

	status, envelope := s.doRequest(ctx, "POST", "/api/admin/skills", fmt.Sprintf(
		`{"category_id": %d, "name": "Go", "proficiency_level": "Expert", "display_order": 1}`, categoryID,
	), authToken)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Skill created successfully", envelope.Message)

	status, envelope = s.doRequest(ctx, "GET", "/api/skills", "", "")
	require.Equal(t, http.StatusOK, status)
	var skills []struct {
		Name             string `json:"name"`
		ProficiencyLevel string `json:"proficiency_level"`
		CategoryName     string `json:"category_name"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &skills))
	require.Len(t, skills, 1)
	assert.Equal(t, "Go", skills[0].Name)
	assert.Equal(t, "Expert", skills[0].ProficiencyLevel)
	assert.Equal(t, "Backend", skills[0].CategoryName)

	status, envelope = s.doRequest(ctx, "POST", "/api/admin/services", `{
		"title": "Consulting",
		"description": "Architecture reviews",
		"is_active": false
	}`, authToken)
	require.Equal(t, http.StatusCreated, status)
	var createdService struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &createdService))

	// inactive services are hidden from the public listing
	status, envelope = s.doRequest(ctx, "GET", "/api/services", "", "")
	require.Equal(t, http.StatusOK, status)
	var publicServices []json.RawMessage
	require.NoError(t, json.Unmarshal(envelope.Data, &publicServices))
	assert.Empty(t, publicServices)

	status, envelope = s.doRequest(ctx, "GET", "/api/admin/services", "", authToken)
	require.Equal(t, http.StatusOK, status)
	var allServices []json.RawMessage
	require.NoError(t, json.Unmarshal(envelope.Data, &allServices))
	assert.Len(t, allServices, 1)

	status, envelope = s.doRequest(
		ctx, "PUT", fmt.Sprintf("/api/admin/services/%d", createdService.ID),
		`{"is_active": true}`, authToken,
	)
	require.Equal(t, http.StatusOK, status)

	status, envelope = s.doRequest(ctx, "GET", "/api/services", "", "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(envelope.Data, &publicServices))
	assert.Len(t, publicServices, 1)
}
