package registry

import (
	"context"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jasontalley/pact/atom"
	"github.com/jasontalley/pact/atom/storage"
	"github.com/jasontalley/pact/errors"
)

// catalogDocument is the YAML shape of an exported catalog.
type catalogDocument struct {
	ExportedAt time.Time    `yaml:"exported_at"`
	Atoms      []*atom.Atom `yaml:"atoms"`
}

// ExportYAML writes the full catalog, every status included, as YAML.
func (r *Registry) ExportYAML(ctx context.Context, w io.Writer) error {
	atoms, err := r.store.ListAtoms(ctx, storage.ListFilter{})
	if err != nil {
		return err
	}
	doc := catalogDocument{ExportedAt: time.Now().UTC(), Atoms: atoms}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "failed to encode catalog")
	}
	return errors.Wrap(enc.Close(), "failed to flush catalog")
}

// ImportYAML creates a draft atom for every entry in the document. Imported
// atoms get fresh ids and enter the lifecycle at draft regardless of their
// exported status; already-created atoms stay when a later entry fails.
func (r *Registry) ImportYAML(ctx context.Context, rd io.Reader) ([]*atom.Atom, error) {
	var doc catalogDocument
	if err := yaml.NewDecoder(rd).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode catalog")
	}

	imported := make([]*atom.Atom, 0, len(doc.Atoms))
	for i, entry := range doc.Atoms {
		if entry == nil {
			continue
		}
		created, err := r.Create(ctx, CreateRequest{
			Description:            entry.Description,
			Category:               entry.Category,
			Tags:                   entry.Tags,
			ObservableOutcomes:     entry.ObservableOutcomes,
			FalsifiabilityCriteria: entry.FalsifiabilityCriteria,
		})
		if err != nil {
			return imported, errors.Wrapf(err, "failed to import atom %d of %d", i+1, len(doc.Atoms))
		}
		imported = append(imported, created)
	}
	r.logger.Infow("Imported atoms", "count", len(imported))
	return imported, nil
}
