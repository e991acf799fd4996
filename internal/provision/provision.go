package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/solutions-console/provision-wizard/internal/config"
	"github.com/solutions-console/provision-wizard/internal/gcp"
	"github.com/solutions-console/provision-wizard/internal/message"
	"github.com/solutions-console/provision-wizard/internal/terraform"
	"github.com/solutions-console/provision-wizard/internal/tfvars"
)

// ErrAborted is returned when the user declines the confirmation prompt.
var ErrAborted = errors.New("aborted by user")

type Options struct {
	ConfigFile    string
	SkipAPICheck  bool
	LocalValidate bool
	AssumeYes     bool
}

// Run executes the full provisioning pipeline for the project.
func Run(ctx context.Context, projectID string, opts Options) error {
	cfg, err := config.Load(opts.ConfigFile, projectID)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	roles, err := config.LoadRoles(cfg.RolesFile)
	if err != nil {
		return fmt.Errorf("failed to load role list: %w", err)
	}

	if !opts.AssumeYes {
		proceed, err := message.BoolSelect(fmt.Sprintf("Provision deployment '%s' in project '%s'?", cfg.DeploymentName, cfg.ProjectID))
		if err != nil {
			return fmt.Errorf("failed to confirm execution: %w", err)
		}
		if !proceed {
			return ErrAborted
		}
	}

	if !opts.SkipAPICheck {
		if err := gcp.EnsureServices(ctx, cfg.ProjectID); err != nil {
			return fmt.Errorf("failed to ensure required APIs: %w", err)
		}
	}

	provider, err := gcp.New(ctx, cfg.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to initialize gcp clients: %w", err)
	}

	return RunWithProvider(ctx, provider, cfg, roles, opts)
}

// RunWithProvider drives the pipeline stages against an already-built
// provider. Stages run strictly in order; the first failure aborts the run
// and earlier side effects are left in place.
func RunWithProvider(ctx context.Context, provider *gcp.Provider, cfg *config.Config, roles []string, opts Options) error {
	region, discovered := provider.ResolveDeployment(ctx, cfg)
	if discovered != "" && discovered != cfg.DeploymentName {
		message.Info("Found deployment '%s' in region '%s'; provisioning targets '%s'", discovered, region, cfg.DeploymentName)
	} else {
		message.Info("Using deployment '%s' in region '%s'", cfg.DeploymentName, region)
	}

	deployment, err := provider.GetDeployment(ctx, region, cfg.DeploymentName)
	if err != nil {
		return fmt.Errorf("failed to resolve service account: %w", err)
	}
	if deployment.ServiceAccount == "" {
		return fmt.Errorf("deployment '%s' has no service account attached", cfg.DeploymentName)
	}
	member := gcp.Member(deployment.ServiceAccount)
	message.Info("Deployment service account: %s", deployment.ServiceAccount)

	if err := provider.GrantRoles(ctx, member, roles); err != nil {
		return fmt.Errorf("failed to reconcile IAM roles: %w", err)
	}

	deployment, err = provider.GetDeployment(ctx, region, cfg.DeploymentName)
	if err != nil {
		return fmt.Errorf("failed to refresh deployment metadata: %w", err)
	}
	vars := tfvars.Vars{
		Region:    gcp.RegionInput(deployment),
		ProjectID: cfg.ProjectID,
		Labels: map[string]string{
			config.DeploymentNameLabel: cfg.DeploymentName,
			config.SolutionIDLabel:     cfg.SolutionID,
		},
	}
	if err := tfvars.WriteFile(cfg.VarsFile, vars); err != nil {
		return fmt.Errorf("failed to generate variables file: %w", err)
	}
	message.Info("Variables file written to '%s'", cfg.VarsFile)

	bucket := cfg.StagingBucket()
	if err := provider.EnsureStagingBucket(ctx, bucket, region); err != nil {
		return fmt.Errorf("failed to ensure staging bucket: %w", err)
	}

	gcsSource, err := provider.UploadSource(ctx, bucket, cfg.DeploymentName, cfg.SourceDir)
	if err != nil {
		return fmt.Errorf("failed to stage deployment source: %w", err)
	}

	if opts.LocalValidate {
		if err := terraform.Validate(ctx, cfg.SourceDir); err != nil {
			return fmt.Errorf("failed local validation: %w", err)
		}
	}

	inputs, err := tfvars.Inputs(cfg.VarsFile)
	if err != nil {
		return fmt.Errorf("failed to read variables file back: %w", err)
	}

	labels := map[string]string{
		config.DeploymentNameLabel:     cfg.DeploymentName,
		config.SolutionIDLabel:         cfg.SolutionID,
		config.ModificationReasonLabel: config.ModificationReason,
	}
	if err := provider.ApplyDeployment(ctx, region, cfg.DeploymentName, deployment.ServiceAccount, gcsSource, inputs, labels); err != nil {
		return fmt.Errorf("failed to apply deployment: %w", err)
	}

	message.Success("Deployment '%s' provisioned in project '%s'", cfg.DeploymentName, cfg.ProjectID)
	return nil
}
