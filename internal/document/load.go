package document

import (
	"context"
	"fmt"

	"github.com/hanpama/gqlmodel/internal/language"
)

// CombinedUnit names the single unit produced when documents are not split.
const CombinedUnit = "combined"

// Document is one parsed source document.
type Document struct {
	Meta  *Metadata
	Query *language.QueryDocument
}

// Set is the outcome of loading documents: the parsed documents, the
// fragments they define and the units to generate.
type Set struct {
	Documents []*Document
	Fragments language.FragmentDefinitionList
	Units     []*Unit
}

// Load reads every document d lists, parses them, and validates them together
// against s. With split set, each document becomes its own unit; otherwise
// all documents form one unit. Failures are reported as a ValidationError
// holding every violation found.
func Load(ctx context.Context, d Discovery, s *language.Schema, split bool) (*Set, error) {
	metas, err := d.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	if len(metas) == 0 {
		return nil, ValidationError{violationNoDocuments()}
	}

	set := &Set{}
	merged := &language.QueryDocument{}
	var violations ValidationError
	for _, meta := range metas {
		content, err := d.ReadDocument(ctx, meta.ID)
		if err != nil {
			return nil, err
		}
		query, err := language.ParseQuery(meta.FilePath, content)
		if err != nil {
			violations = append(violations, violationFromError(err, meta.FilePath))
			continue
		}
		set.Documents = append(set.Documents, &Document{Meta: meta, Query: query})
		merged.Operations = append(merged.Operations, query.Operations...)
		merged.Fragments = append(merged.Fragments, query.Fragments...)
		for _, op := range query.Operations {
			if op.Name == "" {
				violations = append(violations, violationAnonymousOperation(op.Position))
			}
		}
	}
	if len(violations) > 0 {
		return nil, violations
	}

	for _, gqlErr := range language.Validate(s, merged) {
		violations = append(violations, violationFromError(gqlErr, ""))
	}
	if len(violations) > 0 {
		return nil, violations
	}

	set.Fragments = merged.Fragments
	if split {
		for _, doc := range set.Documents {
			set.Units = append(set.Units, &Unit{
				Name:        doc.Meta.FilePath,
				Operations:  doc.Query.Operations,
				Fragments:   doc.Query.Fragments,
				Definitions: set.Fragments,
			})
		}
	} else {
		set.Units = []*Unit{{
			Name:        CombinedUnit,
			Operations:  merged.Operations,
			Fragments:   merged.Fragments,
			Definitions: set.Fragments,
		}}
	}
	return set, nil
}

// LoadFiles is a convenience function that discovers documents on disk and loads them.
func LoadFiles(ctx context.Context, s *language.Schema, split bool, locations ...string) (*Set, error) {
	discovery, err := NewFileSystemDiscovery(ctx, locations...)
	if err != nil {
		return nil, fmt.Errorf("discover documents: %w", err)
	}
	return Load(ctx, discovery, s, split)
}
