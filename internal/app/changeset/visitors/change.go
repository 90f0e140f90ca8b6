package visitors

import "github.com/light-bringer/procat-changeset/internal/app/changeset/domain"

// Change is a field change rendered as display strings.
type Change struct {
	Name      string  `yaml:"name"`
	Namespace string  `yaml:"namespace,omitempty"`
	OldValue  *string `yaml:"old"`
	NewValue  *string `yaml:"new"`
}

// Path returns the namespaced field name.
func (c Change) Path() string {
	return domain.JoinPath(c.Namespace, c.Name)
}
