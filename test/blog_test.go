//go:build e2e_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiEnvelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Pagination *struct {
		Page       int `json:"page"`
		Limit      int `json:"limit"`
		Total      int `json:"total"`
		TotalPages int `json:"totalPages"`
	} `json:"pagination"`
}

func (s *IntegrationTestSuite) doRequest(
	ctx context.Context,
	method, path, body, authToken string,
) (int, apiEnvelope) {
	var reqBody *bytes.Buffer
	if body != "" {
		reqBody = bytes.NewBufferString(body)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	var envelope apiEnvelope
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func (s *IntegrationTestSuite) TestBlog_FullFlow() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	t := s.T()

	authToken := doLogin(ctx, t)

	// mutating routes are walled off
	status, envelope := s.doRequest(ctx, "POST", "/api/admin/blog/categories", `{"name": "Go", "slug": "go"}`, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Access token required", envelope.Error)

	status, envelope = s.doRequest(ctx, "POST", "/api/admin/blog/categories", `{"name": "Go", "slug": "go"}`, authToken)
	require.Equal(t, http.StatusCreated, status)
	var category struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &category))
	require.NotZero(t, category.ID)

	postBody := fmt.Sprintf(`{
		"title": "Testing in Go",
		"slug": "testing-in-go",
		"excerpt": "Short intro",
		"content": "Full content here",
		"category_id": %d,
		"is_published": true,
		"tags": ["go", "testing"]
	}`, category.ID)
	status, envelope = s.doRequest(ctx, "POST", "/api/admin/blog/posts", postBody, authToken)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Post created successfully", envelope.Message)
	var created struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &created))

	// duplicate slug is rejected
	status, envelope = s.doRequest(ctx, "POST", "/api/admin/blog/posts", postBody, authToken)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Post slug already exists", envelope.Error)

	// public listing sees the published post
	status, envelope = s.doRequest(ctx, "GET", "/api/blog/posts", "", "")
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 1, envelope.Pagination.Total)

	// fetching by slug bumps the view count
	status, _ = s.doRequest(ctx, "GET", "/api/blog/posts/testing-in-go", "", "")
	require.Equal(t, http.StatusOK, status)
	status, envelope = s.doRequest(ctx, "GET", "/api/blog/posts/testing-in-go", "", "")
	require.Equal(t, http.StatusOK, status)
	var post struct {
		ViewsCount int `json:"views_count"`
		Tags       []struct {
			Name string `json:"name"`
			Slug string `json:"slug"`
		} `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &post))
	assert.Equal(t, 1, post.ViewsCount)
	assert.Len(t, post.Tags, 2)

	status, envelope = s.doRequest(ctx, "DELETE", fmt.Sprintf("/api/admin/blog/posts/%d", created.ID), "", authToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Post deleted successfully", envelope.Message)

	status, envelope = s.doRequest(ctx, "GET", "/api/blog/posts/testing-in-go", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Post not found", envelope.Error)
}
