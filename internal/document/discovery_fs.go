package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions lists the file extensions treated as GraphQL documents when
// walking directories.
var Extensions = []string{".graphql", ".gql"}

// FileSystemDiscovery implements Discovery over files, directories and glob
// patterns on the local filesystem.
type FileSystemDiscovery struct {
	metas map[string]*Metadata
}

// NewFileSystemDiscovery resolves every location into document files.
// Directories are walked recursively; patterns are expanded with
// filepath.Glob; plain paths must exist.
func NewFileSystemDiscovery(ctx context.Context, locations ...string) (*FileSystemDiscovery, error) {
	discovery := &FileSystemDiscovery{metas: make(map[string]*Metadata)}
	for _, loc := range locations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.ContainsAny(loc, "*?[") {
			matches, err := filepath.Glob(loc)
			if err != nil {
				return nil, fmt.Errorf("invalid document pattern %q: %w", loc, err)
			}
			for _, m := range matches {
				if err := discovery.addPath(m, false); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := discovery.addPath(loc, true); err != nil {
			return nil, err
		}
	}
	return discovery, nil
}

func (d *FileSystemDiscovery) addPath(path string, explicit bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("document location %q: %w", path, err)
	}
	if !info.IsDir() {
		if explicit || isDocument(path) {
			d.add(path)
		}
		return nil
	}
	err = filepath.WalkDir(path, func(p string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !isDocument(p) {
			return nil
		}
		d.add(p)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk document directory %q: %w", path, err)
	}
	return nil
}

func (d *FileSystemDiscovery) add(path string) {
	clean := filepath.Clean(path)
	base := filepath.Base(clean)
	d.metas[clean] = &Metadata{
		ID:       clean,
		Name:     strings.TrimSuffix(base, filepath.Ext(base)),
		FilePath: clean,
	}
}

func isDocument(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ListDocuments returns the discovered documents ordered by path.
func (d *FileSystemDiscovery) ListDocuments(ctx context.Context) ([]*Metadata, error) {
	docs := make([]*Metadata, 0, len(d.metas))
	for _, m := range d.metas {
		docs = append(docs, m)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].FilePath < docs[j].FilePath })
	return docs, nil
}

// ReadDocument reads the source of a discovered document.
func (d *FileSystemDiscovery) ReadDocument(ctx context.Context, id string) (string, error) {
	meta, ok := d.metas[id]
	if !ok {
		return "", fmt.Errorf("document %q not found", id)
	}
	content, err := os.ReadFile(meta.FilePath)
	if err != nil {
		return "", fmt.Errorf("failed to read document %q: %w", id, err)
	}
	return string(content), nil
}
