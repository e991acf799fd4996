package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	inframanager "google.golang.org/api/config/v1"

	"github.com/solutions-console/provision-wizard/internal/config"
	"github.com/solutions-console/provision-wizard/internal/message"
)

const operationPollInterval = 5 * time.Second

// ResolveDeployment scans the configured regions in order for a deployment
// carrying the solutions-console labels and stops at the first region whose
// listing matches. It returns that region and the discovered deployment name.
// A region whose listing fails is treated like a region with no match. When
// nothing matches anywhere, the first configured region is returned with an
// empty name; the caller decides the deployment name either way.
func (p *Provider) ResolveDeployment(ctx context.Context, cfg *config.Config) (string, string) {
	filter := fmt.Sprintf("labels.%s:* AND labels.%s=%s",
		config.DeploymentNameLabel, config.SolutionIDLabel, cfg.SolutionID)

	for _, region := range cfg.Regions {
		parent := fmt.Sprintf("projects/%s/locations/%s", p.projectID, region)
		resp, err := p.infra.Projects.Locations.Deployments.List(parent).
			Filter(filter).PageSize(1).Context(ctx).Do()
		if err != nil {
			message.Debug("Listing deployments in region '%s' failed: %v", region, err)
			continue
		}
		if len(resp.Deployments) > 0 {
			name := lastSegment(resp.Deployments[0].Name)
			message.Debug("Found deployment '%s' in region '%s'", name, region)
			return region, name
		}
	}

	return cfg.Regions[0], ""
}

// GetDeployment fetches the deployment description.
func (p *Provider) GetDeployment(ctx context.Context, region, name string) (*inframanager.Deployment, error) {
	fullName := fmt.Sprintf("projects/%s/locations/%s/deployments/%s", p.projectID, region, name)
	deployment, err := p.infra.Projects.Locations.Deployments.Get(fullName).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to describe deployment '%s' in region '%s': %w", name, region, err)
	}
	return deployment, nil
}

// RegionInput extracts the "region" input value from the deployment's
// terraform blueprint. Missing or non-string values come back empty.
func RegionInput(deployment *inframanager.Deployment) string {
	if deployment == nil || deployment.TerraformBlueprint == nil {
		return ""
	}
	variable, ok := deployment.TerraformBlueprint.InputValues["region"]
	if !ok {
		return ""
	}
	value, _ := variable.InputValue.(string)
	return value
}

// ApplyDeployment creates the deployment if it does not exist yet and updates
// it otherwise, then waits for the returned operation to finish.
func (p *Provider) ApplyDeployment(ctx context.Context, region, name, serviceAccount, gcsSource string, inputs map[string]interface{}, labels map[string]string) error {
	parent := fmt.Sprintf("projects/%s/locations/%s", p.projectID, region)
	fullName := parent + "/deployments/" + name

	inputValues := make(map[string]inframanager.TerraformVariable, len(inputs))
	for key, value := range inputs {
		inputValues[key] = inframanager.TerraformVariable{InputValue: value}
	}

	deployment := &inframanager.Deployment{
		ServiceAccount: serviceAccount,
		Labels:         labels,
		TerraformBlueprint: &inframanager.TerraformBlueprint{
			GcsSource:   gcsSource,
			InputValues: inputValues,
		},
	}

	var op *inframanager.Operation
	if _, err := p.infra.Projects.Locations.Deployments.Get(fullName).Context(ctx).Do(); err != nil {
		notFound, classifiedErr := isGoogleAPIErrorNotFound(err, fmt.Sprintf("failed to check deployment '%s' existence", name))
		if !notFound {
			return classifiedErr
		}
		message.Info("Creating deployment '%s' in region '%s'", name, region)
		op, err = p.infra.Projects.Locations.Deployments.Create(parent, deployment).
			DeploymentId(name).RequestId(uuid.NewString()).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to create deployment '%s': %w", name, err)
		}
	} else {
		message.Info("Updating deployment '%s' in region '%s'", name, region)
		op, err = p.infra.Projects.Locations.Deployments.Patch(fullName, deployment).
			UpdateMask("service_account,labels,terraform_blueprint").
			RequestId(uuid.NewString()).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to update deployment '%s': %w", name, err)
		}
	}

	if err := p.waitOperation(ctx, op); err != nil {
		return fmt.Errorf("failed to apply deployment '%s': %w", name, err)
	}

	return nil
}

func (p *Provider) waitOperation(ctx context.Context, op *inframanager.Operation) error {
	for !op.Done {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(operationPollInterval):
		}

		refreshed, err := p.infra.Projects.Locations.Operations.Get(op.Name).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to poll operation '%s': %w", op.Name, err)
		}
		op = refreshed
	}

	if op.Error != nil {
		return fmt.Errorf("operation '%s' failed: %s", op.Name, op.Error.Message)
	}
	return nil
}

func lastSegment(resourceName string) string {
	if i := strings.LastIndex(resourceName, "/"); i >= 0 {
		return resourceName[i+1:]
	}
	return resourceName
}
