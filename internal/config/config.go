package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	SolutionID     = "shared-vpc-jumpstart"
	DeploymentName = "shared-vpc-deployment"

	DeploymentNameLabel     = "goog-solutions-console-deployment-name"
	SolutionIDLabel         = "goog-solutions-console-solution-id"
	ModificationReasonLabel = "modification-reason"
	ModificationReason      = "make-it-mine"

	stagingBucketSuffix = "_infra_manager_staging"

	DefaultRolesFile = "roles.txt"
	DefaultSourceDir = "infra"
	DefaultVarsFile  = "infra/terraform.tfvars"
)

// DefaultRegions is the fixed set of locations searched for an existing
// deployment, in order. The first region whose listing matches wins.
var DefaultRegions = []string{
	"us-central1",
	"us-west1",
	"us-east1",
	"europe-west1",
	"asia-east1",
}

// Config carries everything a provisioning run needs beyond the project id.
type Config struct {
	ProjectID string

	Regions    []string
	SolutionID string

	// DeploymentName is used for the service-account lookup, the variables
	// artifact and the apply even when the label search discovers a
	// deployment under a different name; the search outcome only selects
	// the region.
	DeploymentName string

	RolesFile string
	SourceDir string
	VarsFile  string
}

func Default(projectID string) *Config {
	return &Config{
		ProjectID:      projectID,
		Regions:        DefaultRegions,
		SolutionID:     SolutionID,
		DeploymentName: DeploymentName,
		RolesFile:      DefaultRolesFile,
		SourceDir:      DefaultSourceDir,
		VarsFile:       DefaultVarsFile,
	}
}

type overrides struct {
	Regions        []string `yaml:"regions"`
	SolutionID     string   `yaml:"solutionId"`
	DeploymentName string   `yaml:"deploymentName"`
	RolesFile      string   `yaml:"rolesFile"`
	SourceDir      string   `yaml:"sourceDir"`
	VarsFile       string   `yaml:"varsFile"`
}

// Load builds the run configuration, applying overrides from the given YAML
// file when path is non-empty.
func Load(path, projectID string) (*Config, error) {
	cfg := Default(projectID)
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var o overrides
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
	}

	if len(o.Regions) > 0 {
		cfg.Regions = o.Regions
	}
	if o.SolutionID != "" {
		cfg.SolutionID = o.SolutionID
	}
	if o.DeploymentName != "" {
		cfg.DeploymentName = o.DeploymentName
	}
	if o.RolesFile != "" {
		cfg.RolesFile = o.RolesFile
	}
	if o.SourceDir != "" {
		cfg.SourceDir = o.SourceDir
	}
	if o.VarsFile != "" {
		cfg.VarsFile = o.VarsFile
	}

	return cfg, nil
}

// StagingBucket is the per-project bucket Infra Manager stages source in.
func (c *Config) StagingBucket() string {
	return c.ProjectID + stagingBucketSuffix
}

// LoadRoles reads the line-delimited role list. A final line without a
// trailing newline is still read. Blank lines are skipped; duplicates are
// kept, the grant step is idempotent anyway.
func LoadRoles(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roles file: %w", err)
	}
	defer f.Close()

	var roles []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		role := strings.TrimSpace(scanner.Text())
		if role == "" {
			continue
		}
		roles = append(roles, role)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read roles file: %w", err)
	}

	return roles, nil
}
