package document

import "context"

// Metadata describes one discovered document.
type Metadata struct {
	ID       string
	Name     string
	FilePath string
}

// Discovery finds operation and fragment documents and reads their source.
type Discovery interface {
	ListDocuments(ctx context.Context) ([]*Metadata, error)
	ReadDocument(ctx context.Context, id string) (string, error)
}
