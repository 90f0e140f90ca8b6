package collect_changes

import (
	"fmt"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/contracts"
)

// association is an association path that may lead to scheduled changes.
type association struct {
	field  string
	target string
	nested []association
}

// findReachable returns the associations of typeName whose target type has
// scheduled updates, or which lead to further reachable associations.
//
// mapped is shared across the whole search: a target type is explored once,
// on the first path that reaches it.
func findReachable(meta contracts.Metadata, ws *workspace, typeName string, mapped map[string]bool) ([]association, error) {
	mapped[typeName] = true

	names, err := meta.AssociationNames(typeName)
	if err != nil {
		return nil, fmt.Errorf("failed to list associations of %s: %w", typeName, err)
	}

	var reachable []association
	for _, name := range names {
		target, err := meta.AssociationTarget(typeName, name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve association %s.%s: %w", typeName, name, err)
		}
		if mapped[target] {
			continue
		}

		nested, err := findReachable(meta, ws, target, mapped)
		if err != nil {
			return nil, err
		}

		if ws.hasUpdatesFor(target) || len(nested) > 0 {
			reachable = append(reachable, association{field: name, target: target, nested: nested})
		}
	}

	return reachable, nil
}
