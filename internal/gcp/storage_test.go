package gcp

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	storage "google.golang.org/api/storage/v1"
)

func TestEnsureStagingBucketAlreadyExists(t *testing.T) {
	var creates int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/b/acme-1_infra_manager_staging":
			writeJSON(t, w, &storage.Bucket{Name: "acme-1_infra_manager_staging"})
		case r.Method == http.MethodPost:
			creates++
			writeJSON(t, w, &storage.Bucket{Name: "acme-1_infra_manager_staging"})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})
	provider := newTestProvider(t, "acme-1", handler)

	err := provider.EnsureStagingBucket(context.Background(), "acme-1_infra_manager_staging", "us-central1")
	require.NoError(t, err)
	assert.Zero(t, creates)
}

func TestEnsureStagingBucketCreatesWhenMissing(t *testing.T) {
	var creates int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
		case http.MethodPost:
			creates++
			assert.Equal(t, "acme-1", r.URL.Query().Get("project"))
			writeJSON(t, w, &storage.Bucket{Name: "acme-1_infra_manager_staging"})
		}
	})
	provider := newTestProvider(t, "acme-1", handler)

	err := provider.EnsureStagingBucket(context.Background(), "acme-1_infra_manager_staging", "us-central1")
	require.NoError(t, err)
	assert.Equal(t, 1, creates)
}

func TestEnsureStagingBucketCreateFailureIsFatal(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			// Lookup failures of any kind trigger a create attempt.
			http.Error(w, `{"error":{"code":500,"message":"backend"}}`, http.StatusInternalServerError)
		case http.MethodPost:
			http.Error(w, `{"error":{"code":409,"message":"conflict"}}`, http.StatusConflict)
		}
	})
	provider := newTestProvider(t, "acme-1", handler)

	err := provider.EnsureStagingBucket(context.Background(), "acme-1_infra_manager_staging", "us-central1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create staging bucket")
}

func TestUploadSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.tf"), []byte(`variable "region" {}`), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "modules", "vpc"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "modules", "vpc", "vpc.tf"), []byte(`# vpc`), 0644))

	var uploaded []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/upload/") {
			uploaded = append(uploaded, r.URL.Query().Get("name"))
			writeJSON(t, w, &storage.Object{})
			return
		}
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})
	provider := newTestProvider(t, "acme-1", handler)

	gcsSource, err := provider.UploadSource(context.Background(), "acme-1_infra_manager_staging", "shared-vpc-deployment", dir)
	require.NoError(t, err)
	assert.Equal(t, "gs://acme-1_infra_manager_staging/source/shared-vpc-deployment", gcsSource)
	assert.ElementsMatch(t, []string{
		"source/shared-vpc-deployment/main.tf",
		"source/shared-vpc-deployment/modules/vpc/vpc.tf",
	}, uploaded)
}
