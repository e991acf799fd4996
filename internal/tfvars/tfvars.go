package tfvars

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Vars is the material written to the variables artifact consumed by the
// deployment apply.
type Vars struct {
	Region    string
	ProjectID string
	Labels    map[string]string
}

// Render produces the terraform.tfvars payload. Label keys are sorted so the
// artifact is stable across runs.
func Render(v Vars) string {
	var b strings.Builder
	fmt.Fprintf(&b, "region     = %q\n", v.Region)
	fmt.Fprintf(&b, "project_id = %q\n", v.ProjectID)
	b.WriteString("labels = {\n")

	keys := make([]string, 0, len(v.Labels))
	for key := range v.Labels {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, "  %q = %q\n", key, v.Labels[key])
	}

	b.WriteString("}\n")
	return b.String()
}

// WriteFile materializes the artifact at path, creating parent directories.
func WriteFile(path string, v Vars) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create variables file directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(Render(v)), 0644); err != nil {
		return fmt.Errorf("failed to write variables file: %w", err)
	}
	return nil
}

// Inputs reads the artifact back into the input-value map the apply consumes.
// Only the flat key = "value" lines and a single labels block are understood,
// which is exactly what Render emits.
func Inputs(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read variables file: %w", err)
	}

	inputs := map[string]interface{}{}
	var labels map[string]interface{}
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "}" {
			continue
		}
		if strings.HasPrefix(line, "labels") && strings.HasSuffix(line, "{") {
			labels = map[string]interface{}{}
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k := strings.Trim(strings.TrimSpace(key), `"`)
		v := strings.Trim(strings.TrimSpace(value), `"`)
		if labels != nil {
			labels[k] = v
		} else {
			inputs[k] = v
		}
	}
	if labels != nil {
		inputs["labels"] = labels
	}

	return inputs, nil
}
