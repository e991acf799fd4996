package gcp

import (
	"context"
	"fmt"
	"slices"
	"strings"

	crm "google.golang.org/api/cloudresourcemanager/v1"

	"github.com/solutions-console/provision-wizard/internal/message"
)

// Member converts a deployment service-account resource name
// (projects/<p>/serviceAccounts/<email>) into the IAM member string for its
// trailing email segment.
func Member(serviceAccount string) string {
	email := serviceAccount
	if i := strings.LastIndex(serviceAccount, "/"); i >= 0 {
		email = serviceAccount[i+1:]
	}
	return "serviceAccount:" + email
}

// GrantRoles fetches the project IAM policy once and, for every role the
// member does not hold yet, issues one policy mutation. Roles already held
// are only logged. The first failed mutation aborts; earlier grants stay in
// place.
func (p *Provider) GrantRoles(ctx context.Context, member string, roles []string) error {
	policy, err := p.crm.Projects.GetIamPolicy(p.projectID, &crm.GetIamPolicyRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to retrieve IAM policy of project '%s': %w", p.projectID, err)
	}

	for _, role := range roles {
		if hasBinding(policy, role, member) {
			message.Info("Role '%s' already granted to '%s', skipping", role, member)
			continue
		}

		addBinding(policy, role, member)
		message.Info("Granting role: gcloud projects add-iam-policy-binding %s --member='%s' --role='%s'",
			p.projectID, member, role)
		updated, err := p.crm.Projects.SetIamPolicy(p.projectID, &crm.SetIamPolicyRequest{
			Policy: policy,
		}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to grant role '%s' to '%s': %w", role, member, err)
		}
		policy.Etag = updated.Etag
		message.Success("Role '%s' granted to '%s'", role, member)
	}

	return nil
}

func hasBinding(policy *crm.Policy, role, member string) bool {
	for _, binding := range policy.Bindings {
		if binding.Role == role && slices.Contains(binding.Members, member) {
			return true
		}
	}
	return false
}

func addBinding(policy *crm.Policy, role, member string) {
	for _, binding := range policy.Bindings {
		if binding.Role == role {
			binding.Members = append(binding.Members, member)
			return
		}
	}
	policy.Bindings = append(policy.Bindings, &crm.Binding{
		Role:    role,
		Members: []string{member},
	})
}
