package terraform

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/hashicorp/hc-install/product"
	"github.com/hashicorp/hc-install/releases"
	"github.com/hashicorp/terraform-exec/tfexec"

	"github.com/solutions-console/provision-wizard/internal/message"
)

type terraformLogger struct{}

func (terraformLogger) Write(p []byte) (n int, err error) {
	message.Debug(strings.TrimSuffix(string(p), "\n")) //nolint:all
	return len(p), nil
}
func (terraformLogger) Printf(format string, v ...interface{}) {
	message.Debug("Terraform: "+format, v...)
}

// Validate installs a pinned terraform and runs init + validate against the
// deployment source directory.
func Validate(ctx context.Context, workingDir string) error {
	installer := &releases.ExactVersion{
		Product: product.Terraform,
		Version: version.Must(version.NewVersion("1.9.8")),
	}
	installer.SetLogger(log.New(&terraformLogger{}, "Terraform Installer: ", 0))

	execPath, err := installer.Install(context.Background())
	if err != nil {
		return fmt.Errorf("failed to install Terraform: %w", err)
	}

	tf, err := tfexec.NewTerraform(workingDir, execPath)
	if err != nil {
		return fmt.Errorf("failed to create Terraform: %w", err)
	}
	tf.SetLogger(&terraformLogger{})

	if err := tf.Init(ctx, tfexec.Upgrade(true)); err != nil {
		return fmt.Errorf("failed to init Terraform: %w", err)
	}

	result, err := tf.Validate(ctx)
	if err != nil {
		return fmt.Errorf("failed to validate Terraform source: %w", err)
	}
	if !result.Valid {
		for _, diagnostic := range result.Diagnostics {
			message.Warning("Terraform: %s", diagnostic.Summary)
		}
		return fmt.Errorf("terraform source in '%s' is invalid (%d error(s))", workingDir, result.ErrorCount)
	}

	return nil
}
