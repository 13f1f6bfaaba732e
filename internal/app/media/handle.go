package media

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"strings"
)

// FileHandle is how an uploaded file reaches the ingestor. The concrete
// type is decided once, at the HTTP boundary; the ingestor never probes
// for fields.
type FileHandle interface {
	fileHandle()
}

// PathRef is a file already on local disk. Name, when set, is the original
// client filename and is used for the extension; Path is never removed.
type PathRef struct {
	Path string
	Name string
}

// InMemoryBytes is a file held entirely in memory.
type InMemoryBytes struct {
	Name string
	Data []byte
}

// MovableHandle is a file that can only be materialized by moving it to a
// destination path. The ingestor owns the destination and removes it after
// the upload.
type MovableHandle struct {
	Name   string
	MoveTo func(dst string) error
}

func (PathRef) fileHandle()       {}
func (InMemoryBytes) fileHandle() {}
func (MovableHandle) fileHandle() {}

// UnsupportedError reports a handle the ingestor cannot read, naming the
// fields that were absent. It matches ErrUnsupportedFileRepresentation.
type UnsupportedError struct {
	Kind    string
	Missing []string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: %s (missing %s)", ErrUnsupportedFileRepresentation, e.Kind, strings.Join(e.Missing, ", "))
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupportedFileRepresentation
}

// resolve dereferences pointer handles and checks the fields each variant
// needs.
func resolve(h FileHandle) (FileHandle, error) {
	switch v := h.(type) {
	case *PathRef:
		if v != nil {
			return resolve(*v)
		}
	case *InMemoryBytes:
		if v != nil {
			return resolve(*v)
		}
	case *MovableHandle:
		if v != nil {
			return resolve(*v)
		}
	case PathRef:
		if strings.TrimSpace(v.Path) == "" {
			return nil, &UnsupportedError{Kind: "path reference", Missing: []string{"path"}}
		}
		return v, nil
	case InMemoryBytes:
		if len(v.Data) == 0 {
			return nil, &UnsupportedError{Kind: "in-memory buffer", Missing: []string{"data"}}
		}
		return v, nil
	case MovableHandle:
		if v.MoveTo == nil {
			return nil, &UnsupportedError{Kind: "movable handle", Missing: []string{"move function"}}
		}
		return v, nil
	}
	return nil, &UnsupportedError{Kind: fmt.Sprintf("%T", h), Missing: []string{"path", "data", "move function"}}
}

// FromMultipart maps a request upload onto a FileHandle. Parts that the
// multipart reader spilled to disk become a PathRef; the rest are read into
// memory.
func FromMultipart(fh *multipart.FileHeader) (FileHandle, error) {
	if fh == nil {
		return nil, &UnsupportedError{Kind: "multipart file", Missing: []string{"file header"}}
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	if osf, ok := f.(*os.File); ok {
		return PathRef{Path: osf.Name(), Name: fh.Filename}, nil
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return InMemoryBytes{Name: fh.Filename, Data: data}, nil
}
