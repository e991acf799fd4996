package gcp

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	crm "google.golang.org/api/cloudresourcemanager/v1"
	inframanager "google.golang.org/api/config/v1"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"
)

// Provider bundles the typed clients a provisioning run talks to: the Infra
// Manager deployment service, the project IAM policy store and object storage.
type Provider struct {
	projectID string

	infra   *inframanager.Service
	crm     *crm.Service
	storage *storage.Service
}

// New builds a Provider from Application Default Credentials.
// See: https://cloud.google.com/docs/authentication/application-default-credentials#personal
// The user running the tool needs at least:
// - roles/config.admin
// - roles/resourcemanager.projectIamAdmin
// - roles/storage.admin
func New(ctx context.Context, projectID string) (*Provider, error) {
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return nil, fmt.Errorf("failed to load default gcp credentials: %w", err)
	}

	return NewWithOptions(ctx, projectID, option.WithCredentials(creds))
}

// NewWithOptions builds a Provider with explicit client options instead of
// default credentials.
func NewWithOptions(ctx context.Context, projectID string, opts ...option.ClientOption) (*Provider, error) {
	infraService, err := inframanager.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create an infra manager service: %w", err)
	}

	crmService, err := crm.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create a resource manager service: %w", err)
	}

	storageService, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create a storage service: %w", err)
	}

	return &Provider{
		projectID: projectID,
		infra:     infraService,
		crm:       crmService,
		storage:   storageService,
	}, nil
}
