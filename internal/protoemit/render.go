package protoemit

import (
	"io"
	"os"
	"path/filepath"

	"github.com/jhump/protoreflect/v2/protoprint"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Render prints fd as .proto source.
func Render(fd protoreflect.FileDescriptor, w io.Writer) error {
	pp := protoprint.Printer{}
	return pp.PrintProtoFile(fd, w)
}

// WriteFile renders fd under dir at the descriptor's path and returns the
// path written.
func WriteFile(fd protoreflect.FileDescriptor, dir string) (string, error) {
	fp := filepath.Join(dir, filepath.FromSlash(fd.Path()))
	if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(fp)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := Render(fd, f); err != nil {
		return "", err
	}
	return fp, f.Close()
}
