package gcp

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	storage "google.golang.org/api/storage/v1"

	"github.com/solutions-console/provision-wizard/internal/message"
)

// EnsureStagingBucket makes sure the staging bucket exists. A lookup error of
// any kind falls through to a create attempt; only the create error is
// surfaced.
func (p *Provider) EnsureStagingBucket(ctx context.Context, name, region string) error {
	if _, err := p.storage.Buckets.Get(name).Context(ctx).Do(); err == nil {
		message.Info("Staging bucket 'gs://%s' already exists", name)
		return nil
	}

	bucket := &storage.Bucket{
		Name:     name,
		Location: region,
	}
	if _, err := p.storage.Buckets.Insert(p.projectID, bucket).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to create staging bucket 'gs://%s': %w", name, err)
	}
	message.Success("Staging bucket 'gs://%s' created", name)

	return nil
}

// UploadSource copies every regular file under dir into the staging bucket
// and returns the gs:// prefix the deployment blueprint should reference.
func (p *Provider) UploadSource(ctx context.Context, bucket, deployment, dir string) (string, error) {
	prefix := path.Join("source", deployment)

	err := filepath.WalkDir(dir, func(filePath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, filePath)
		if err != nil {
			return err
		}

		f, err := os.Open(filePath)
		if err != nil {
			return err
		}
		defer f.Close()

		object := &storage.Object{Name: path.Join(prefix, filepath.ToSlash(rel))}
		if _, err := p.storage.Objects.Insert(bucket, object).Name(object.Name).Media(f).Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to upload '%s': %w", rel, err)
		}
		message.Debug("Uploaded gs://%s/%s", bucket, object.Name)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload deployment source from '%s': %w", dir, err)
	}

	return fmt.Sprintf("gs://%s/%s", bucket, prefix), nil
}
