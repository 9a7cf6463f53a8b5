package document

import (
	"context"
	"fmt"
)

type InMemoryDocument struct {
	Name    string
	Content string
}

// InMemoryDiscovery serves documents held in memory, in the order given.
type InMemoryDiscovery struct {
	docs     []*Metadata
	contents map[string]string
}

func NewInMemoryDiscovery(docs []InMemoryDocument) *InMemoryDiscovery {
	discovery := &InMemoryDiscovery{contents: make(map[string]string)}
	for _, doc := range docs {
		discovery.docs = append(discovery.docs, &Metadata{
			ID:       doc.Name,
			Name:     doc.Name,
			FilePath: doc.Name + ".graphql",
		})
		discovery.contents[doc.Name] = doc.Content
	}
	return discovery
}

// ListDocuments implements Discovery interface
func (d *InMemoryDiscovery) ListDocuments(ctx context.Context) ([]*Metadata, error) {
	return d.docs, nil
}

// ReadDocument implements Discovery interface
func (d *InMemoryDiscovery) ReadDocument(ctx context.Context, id string) (string, error) {
	content, ok := d.contents[id]
	if !ok {
		return "", fmt.Errorf("document %q not found", id)
	}
	return content, nil
}
