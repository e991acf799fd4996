package cmd

import (
	"github.com/spf13/cobra"

	"github.com/solutions-console/provision-wizard/internal/provision"
)

var projectID string
var configFile string
var skipAPICheck bool
var localValidate bool
var assumeYes bool

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Grant deployment roles and apply the solution deployment",
	Long: `It locates the solution deployment, grants the deployment service account
the roles listed in the role file, generates the terraform variables file,
ensures the staging bucket exists and applies the deployment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return provision.Run(cmd.Context(), projectID, provision.Options{
			ConfigFile:    configFile,
			SkipAPICheck:  skipAPICheck,
			LocalValidate: localValidate,
			AssumeYes:     assumeYes,
		})
	},
}

func init() {
	provisionCmd.Flags().StringVarP(&projectID, "project", "p", "", "project id hosting the deployment (required)")
	_ = provisionCmd.MarkFlagRequired("project")
	provisionCmd.Flags().StringVar(&configFile, "config", "", "path to a YAML file overriding run defaults")
	provisionCmd.Flags().BoolVar(&skipAPICheck, "skip-api-check", false, "skip checking and enabling required service APIs")
	provisionCmd.Flags().BoolVar(&localValidate, "local-validate", false, "run terraform validate on the deployment source before applying")
	provisionCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(provisionCmd)
}
