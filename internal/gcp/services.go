package gcp

import (
	"context"
	"fmt"

	serviceusage "cloud.google.com/go/serviceusage/apiv1"
	serviceusagepb "cloud.google.com/go/serviceusage/apiv1/serviceusagepb"

	"github.com/solutions-console/provision-wizard/internal/message"
)

var requiredServices = []string{
	"config.googleapis.com",
	"cloudresourcemanager.googleapis.com",
	"storage.googleapis.com",
	"serviceusage.googleapis.com",
}

// EnsureServices enables every service API the provisioning run depends on,
// waiting for each enable operation to finish.
func EnsureServices(ctx context.Context, projectID string) error {
	svcUsage, err := serviceusage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create a service usage client: %w", err)
	}
	defer svcUsage.Close()

	for _, serviceID := range requiredServices {
		name := fmt.Sprintf("projects/%s/services/%s", projectID, serviceID)

		service, err := svcUsage.GetService(ctx, &serviceusagepb.GetServiceRequest{
			Name: name,
		})
		if err != nil {
			notFound, classifiedErr := isGoogleGRPCErrorNotFound(err, fmt.Sprintf("failed to check if '%s' is enabled in project '%s'", serviceID, projectID))
			if !notFound {
				return classifiedErr
			}
		} else if service.State == serviceusagepb.State_ENABLED {
			message.Debug("API '%s' already enabled in project '%s'", serviceID, projectID)
			continue
		}

		message.Info("Enabling API '%s' in project '%s'", serviceID, projectID)
		op, err := svcUsage.EnableService(ctx, &serviceusagepb.EnableServiceRequest{
			Name: name,
		})
		if err != nil {
			return fmt.Errorf("failed to enable API '%s' in project '%s': %w", serviceID, projectID, err)
		}
		if _, err := op.Wait(ctx); err != nil {
			return fmt.Errorf("failed to enable API '%s' in project '%s': %w", serviceID, projectID, err)
		}
		message.Success("API '%s' enabled", serviceID)
	}

	return nil
}
