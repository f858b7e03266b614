package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidPath = errors.New("invalid storage path")

// File is an upload on its way to storage.
type File struct {
	Name    string
	Size    int64
	Content io.Reader
}

// Ext returns the lower-cased extension without the dot.
func (f File) Ext() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Name)), ".")
}

// Storage persists uploaded files and resolves their public URLs.
type Storage interface {
	Save(dir string, f File) (string, error)
	Delete(name string) error
	URL(name string) string
}

// LocalStorage writes files below a root directory served under a URL prefix.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStorage{root: root, baseURL: baseURL}
}

func (s *LocalStorage) Root() string { return s.root }

// Save stores f under dir with a unique name and returns the stored name.
func (s *LocalStorage) Save(dir string, f File) (string, error) {
	if f.Content == nil {
		return "", fmt.Errorf("save %q: empty upload", f.Name)
	}
	base := strings.TrimSuffix(filepath.Base(f.Name), filepath.Ext(f.Name))
	base = sanitize(base)
	if base == "" {
		base = "file"
	}
	name := path.Join(dir, fmt.Sprintf("%s_%s", base, uuid.NewString()[:8]))
	if ext := f.Ext(); ext != "" {
		name += "." + ext
	}
	name = strings.TrimPrefix(path.Clean("/"+name), "/")

	full, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(full)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, f.Content); err != nil {
		out.Close()
		os.Remove(full)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return name, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *LocalStorage) Delete(name string) error {
	if name == "" {
		return nil
	}
	full, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStorage) URL(name string) string {
	if name == "" {
		return ""
	}
	return s.baseURL + name
}

func (s *LocalStorage) resolve(name string) (string, error) {
	clean := path.Clean("/" + name)
	if clean == "/" {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('_')
		}
	}
	return b.String()
}
