package coupling

import (
	"github.com/jasontalley/pact/atom"
)

// Entry is one atom in the read-only catalog view the analyzer consumes.
// The analyzer never touches the registry itself; it classifies against a
// point-in-time snapshot of identifiers and status.
type Entry struct {
	HumanID     string      `json:"human_id"`
	Description string      `json:"description"`
	Status      atom.Status `json:"status"`
}

// Catalog is a snapshot of the full atom catalog, every status included.
// Superseded atoms stay in the catalog: tests referencing them are valid.
type Catalog []Entry

// byHumanID indexes the catalog for classification.
func (c Catalog) byHumanID() map[string]Entry {
	index := make(map[string]Entry, len(c))
	for _, e := range c {
		index[e.HumanID] = e
	}
	return index
}
