package storage

import (
	"io"
	"os"
	"path/filepath"
)

// BlobStore holds gig images behind an opaque save/remove interface.
// Save with the same name replaces the previous blob, which makes
// image attachment retry-safe.
type BlobStore interface {
	Save(name string, data io.Reader) (ref string, err error)
	Remove(name string) error
}

// DiskStore is a BlobStore writing under a local directory, served
// back over the /uploads static route.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	return &DiskStore{root: root}, nil
}

// Root returns the directory blobs are written under.
func (s *DiskStore) Root() string {
	return s.root
}

func (s *DiskStore) Save(name string, data io.Reader) (string, error) {
	// Write to a temp file first so a failed upload never clobbers an
	// existing image
	target := filepath.Join(s.root, filepath.Base(name))
	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	return "/uploads/" + filepath.Base(name), nil
}

func (s *DiskStore) Remove(name string) error {
	err := os.Remove(filepath.Join(s.root, filepath.Base(name)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
