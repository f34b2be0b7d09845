package docstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/profile-provisioner/internal/config"
)

func testClient(endpoint string) *Client {
	return NewClient(config.DocumentStore{
		Endpoint:  endpoint,
		ProjectID: "project",
		APIKey:    "secret",
		Timeout:   5 * time.Second,
	})
}

func TestCreateDocument(t *testing.T) {
	var gotPath string
	var gotBody createDocumentRequest
	var gotProject, gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotProject = r.Header.Get("X-Appwrite-Project")
		gotKey = r.Header.Get("X-Appwrite-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"$id":"doc-1"}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	data := map[string]any{"userId": "u42", "plan": "free"}
	permissions := []string{`read("user:u42")`, `update("user:u42")`, `delete("user:u42")`}

	id, err := client.CreateDocument(context.Background(), "main", "profiles", "fresh-id", data, permissions)

	require.NoError(t, err)
	assert.Equal(t, "doc-1", id)
	assert.Equal(t, "/databases/main/collections/profiles/documents", gotPath)
	assert.Equal(t, "project", gotProject)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "fresh-id", gotBody.DocumentID)
	assert.Equal(t, permissions, gotBody.Permissions)
	assert.Equal(t, "u42", gotBody.Data["userId"])
}

func TestCreateDocument_StoreError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"quota exceeded","code":400}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	id, err := client.CreateDocument(context.Background(), "main", "profiles", "fresh-id", nil, nil)

	require.Error(t, err)
	assert.Empty(t, id)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, http.StatusBadRequest, storeErr.StatusCode)
	assert.Equal(t, "quota exceeded", storeErr.Message)
}

func TestCreateDocument_StoreErrorWithoutJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error"))
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	_, err := client.CreateDocument(context.Background(), "main", "profiles", "fresh-id", nil, nil)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, http.StatusInternalServerError, storeErr.StatusCode)
	assert.Equal(t, "internal error", storeErr.Message)
}

func TestCreateDocument_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	client := testClient(srv.URL)

	_, err := client.CreateDocument(context.Background(), "main", "profiles", "fresh-id", nil, nil)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.NotEmpty(t, storeErr.Message)
}
