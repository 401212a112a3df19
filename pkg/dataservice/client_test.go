package dataservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturedRequest records what the fake project saw.
type capturedRequest struct {
	method  string
	path    string
	query   string
	headers http.Header
	body    []byte
}

// fakeProject runs an httptest server that records every request and replies
// with a fixed status and body.
func fakeProject(t *testing.T, status int, body string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var calls []capturedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqBody, _ := io.ReadAll(r.Body)
		calls = append(calls, capturedRequest{
			method:  r.Method,
			path:    r.URL.Path,
			query:   r.URL.RawQuery,
			headers: r.Header.Clone(),
			body:    reqBody,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func TestSelect(t *testing.T) {
	srv, calls := fakeProject(t, http.StatusOK, `[{"id":"st1","name":"Copper"}]`)

	c := New(srv.URL, "service-key")
	var rows []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	err := c.Select(context.Background(), "scrap_types", Query{
		Select:  "id,name",
		Filters: map[string]string{"is_active": Eq("true")},
		Order:   "name.asc",
		Limit:   500,
	}, &rows)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "Copper", rows[0].Name)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, http.MethodGet, call.method)
	assert.Equal(t, "/rest/v1/scrap_types", call.path)
	assert.Contains(t, call.query, "select=id%2Cname")
	assert.Contains(t, call.query, "is_active=eq.true")
	assert.Contains(t, call.query, "order=name.asc")
	assert.Contains(t, call.query, "limit=500")
	assert.Equal(t, "service-key", call.headers.Get("apikey"))
	assert.Equal(t, "Bearer service-key", call.headers.Get("Authorization"))
}

func TestSelectError(t *testing.T) {
	srv, _ := fakeProject(t, http.StatusBadRequest, `{"code":"42P01","message":"relation does not exist"}`)

	c := New(srv.URL, "service-key")
	var rows []map[string]interface{}
	err := c.Select(context.Background(), "nope", Query{}, &rows)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "42P01", apiErr.Code)
	assert.Equal(t, "relation does not exist", apiErr.Message)
}

func TestInsert(t *testing.T) {
	srv, calls := fakeProject(t, http.StatusCreated, `[{"id":"r1","rate_per_kg":5.5}]`)

	c := New(srv.URL, "service-key")
	var inserted []struct {
		ID        string  `json:"id"`
		RatePerKg float64 `json:"rate_per_kg"`
	}
	err := c.Insert(context.Background(), "scrap_rates", map[string]interface{}{
		"scrap_type_id": "st1",
		"rate_per_kg":   5.5,
	}, &inserted)
	require.NoError(t, err)

	require.Len(t, inserted, 1)
	assert.Equal(t, 5.5, inserted[0].RatePerKg)

	call := (*calls)[0]
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/rest/v1/scrap_rates", call.path)
	assert.Equal(t, "return=representation", call.headers.Get("Prefer"))
	assert.Equal(t, "application/json", call.headers.Get("Content-Type"))

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(call.body, &sent))
	assert.Equal(t, "st1", sent["scrap_type_id"])
}

func TestInsertNilDst(t *testing.T) {
	srv, _ := fakeProject(t, http.StatusCreated, `[{"id":"r1"}]`)

	c := New(srv.URL, "service-key")
	err := c.Insert(context.Background(), "scrap_rates", map[string]string{"scrap_type_id": "st1"}, nil)
	require.NoError(t, err)
}

func TestUpdate(t *testing.T) {
	srv, calls := fakeProject(t, http.StatusOK, `[{"id":"r1","is_active":false}]`)

	c := New(srv.URL, "service-key")
	var updated []struct {
		ID       string `json:"id"`
		IsActive bool   `json:"is_active"`
	}
	err := c.Update(context.Background(), "scrap_rates",
		map[string]interface{}{"is_active": false},
		Query{Filters: map[string]string{"scrap_type_id": Eq("st1")}},
		&updated)
	require.NoError(t, err)

	require.Len(t, updated, 1)
	assert.False(t, updated[0].IsActive)

	call := (*calls)[0]
	assert.Equal(t, http.MethodPatch, call.method)
	assert.Contains(t, call.query, "scrap_type_id=eq.st1")
	assert.Equal(t, "return=representation", call.headers.Get("Prefer"))
}

func TestUpdateNoContent(t *testing.T) {
	srv, _ := fakeProject(t, http.StatusNoContent, "")

	c := New(srv.URL, "service-key")
	var updated []map[string]interface{}
	err := c.Update(context.Background(), "scrap_rates",
		map[string]interface{}{"is_active": false}, Query{}, &updated)
	require.NoError(t, err)
	assert.Empty(t, updated)
}

func TestVerifyToken(t *testing.T) {
	srv, calls := fakeProject(t, http.StatusOK, `{"id":"user-1","email":"ops@example.test","role":"authenticated"}`)

	c := New(srv.URL, "anon-key", WithBearer("caller-jwt"))
	user, err := c.VerifyToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "ops@example.test", user.Email)

	call := (*calls)[0]
	assert.Equal(t, "/auth/v1/user", call.path)
	assert.Equal(t, "anon-key", call.headers.Get("apikey"))
	assert.Equal(t, "Bearer caller-jwt", call.headers.Get("Authorization"))
}

func TestVerifyTokenRejected(t *testing.T) {
	srv, _ := fakeProject(t, http.StatusUnauthorized, `{"error":"invalid_token","error_description":"token is expired"}`)

	c := New(srv.URL, "anon-key", WithBearer("stale-jwt"))
	_, err := c.VerifyToken(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "token is expired", apiErr.Message)
	assert.Equal(t, "invalid_token", apiErr.Code)
}

func TestParseErrorShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantMsg  string
		wantCode string
	}{
		{
			name:     "rest shape",
			body:     `{"code":"23505","message":"duplicate key","details":"...","hint":"..."}`,
			wantMsg:  "duplicate key",
			wantCode: "23505",
		},
		{
			name:     "auth error shape",
			body:     `{"error":"invalid_grant","error_description":"bad credentials"}`,
			wantMsg:  "bad credentials",
			wantCode: "invalid_grant",
		},
		{
			name:    "msg shape",
			body:    `{"msg":"JWT expired"}`,
			wantMsg: "JWT expired",
		},
		{
			name:    "message only",
			body:    `{"message":"forbidden"}`,
			wantMsg: "forbidden",
		},
		{
			name:    "error only",
			body:    `{"error":"nope"}`,
			wantMsg: "nope",
		},
		{
			name:    "not json",
			body:    `<html>bad gateway</html>`,
			wantMsg: "request failed: status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := fakeProject(t, http.StatusInternalServerError, tt.body)

			c := New(srv.URL, "key")
			var rows []map[string]interface{}
			err := c.Select(context.Background(), "t", Query{}, &rows)
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, apiErr.Code)
			}
		})
	}
}

func TestNewTrimsTrailingSlash(t *testing.T) {
	c := New("https://proj.example.test/", "key")
	assert.Equal(t, "https://proj.example.test", c.baseURL)
}

func TestWithTimeout(t *testing.T) {
	c := New("https://proj.example.test", "key", WithTimeout(2*time.Second))
	assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
}

func TestEq(t *testing.T) {
	assert.Equal(t, "eq.st1", Eq("st1"))
	assert.Equal(t, "eq.true", Eq("true"))
}
