package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default("acme-1")
	assert.Equal(t, "acme-1", cfg.ProjectID)
	assert.Equal(t, DeploymentName, cfg.DeploymentName)
	assert.Equal(t, SolutionID, cfg.SolutionID)
	assert.Equal(t, DefaultRegions, cfg.Regions)
}

func TestStagingBucket(t *testing.T) {
	cfg := Default("acme-1")
	assert.Equal(t, "acme-1_infra_manager_staging", cfg.StagingBucket())
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
regions:
  - europe-west4
deploymentName: my-deployment
rolesFile: custom-roles.txt
`), 0644))

	cfg, err := Load(path, "acme-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"europe-west4"}, cfg.Regions)
	assert.Equal(t, "my-deployment", cfg.DeploymentName)
	assert.Equal(t, "custom-roles.txt", cfg.RolesFile)
	// Untouched fields keep their defaults.
	assert.Equal(t, SolutionID, cfg.SolutionID)
	assert.Equal(t, DefaultSourceDir, cfg.SourceDir)
}

func TestLoadWithoutFileKeepsDefaults(t *testing.T) {
	cfg, err := Load("", "acme-1")
	require.NoError(t, err)
	assert.Equal(t, Default("acme-1"), cfg)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "acme-1")
	require.Error(t, err)
}

func TestLoadRoles(t *testing.T) {
	var tests = []struct {
		name     string
		content  string
		expected []string
	}{
		{
			name:     "trailing newline",
			content:  "roles/viewer\nroles/storage.admin\n",
			expected: []string{"roles/viewer", "roles/storage.admin"},
		},
		{
			name:     "no trailing newline",
			content:  "roles/viewer\nroles/storage.admin",
			expected: []string{"roles/viewer", "roles/storage.admin"},
		},
		{
			name:     "blank lines skipped",
			content:  "roles/viewer\n\n\nroles/storage.admin\n",
			expected: []string{"roles/viewer", "roles/storage.admin"},
		},
		{
			name:     "duplicates kept",
			content:  "roles/viewer\nroles/viewer\n",
			expected: []string{"roles/viewer", "roles/viewer"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "roles.txt")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0644))

			roles, err := LoadRoles(path)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, roles)
		})
	}
}

func TestLoadRolesMissingFile(t *testing.T) {
	_, err := LoadRoles(filepath.Join(t.TempDir(), "roles.txt"))
	require.Error(t, err)
}
