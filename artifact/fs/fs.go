// Package fs stores artifacts on the local filesystem under per-session
// directories. Refs map to relative file paths, so a rendered plot saved as
// "plots/fig1.png" lands at <root>/<session>/plots/fig1.png and stays
// addressable by external tools such as a LaTeX toolchain.
package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/autopaper/autopaper/artifact"
)

// Store is a filesystem-backed ArtifactStore rooted at a base directory.
type Store struct {
	root string
}

// NewStore creates the base directory if needed and returns a store.
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("artifact root directory required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the base directory of the store.
func (s *Store) Root() string { return s.root }

// Path resolves a (session, ref) pair to its absolute location or fails when
// the ref would escape the session directory.
func (s *Store) Path(sessionID, ref string) (string, error) {
	if sessionID == "" || ref == "" {
		return "", fmt.Errorf("session id and ref required")
	}
	sessionDir := filepath.Join(s.root, filepath.Base(sessionID))
	path := filepath.Join(sessionDir, filepath.FromSlash(ref))
	if !strings.HasPrefix(path, sessionDir+string(filepath.Separator)) {
		return "", fmt.Errorf("ref %q escapes session directory", ref)
	}
	return path, nil
}

// Save writes the artifact bytes, creating intermediate directories.
func (s *Store) Save(sessionID, ref string, data []byte) error {
	path, err := s.Path(sessionID, ref)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

// Get reads the artifact bytes or returns artifact.ErrNotFound.
func (s *Store) Get(sessionID, ref string) ([]byte, error) {
	path, err := s.Path(sessionID, ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, artifact.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}

// List walks the session directory and returns all refs in lexical order.
// An unknown session yields an empty slice.
func (s *Store) List(sessionID string) ([]string, error) {
	sessionDir := filepath.Join(s.root, filepath.Base(sessionID))
	refs := []string{}
	err := filepath.WalkDir(sessionDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(sessionDir, path)
		if err != nil {
			return err
		}
		refs = append(refs, filepath.ToSlash(rel))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	sort.Strings(refs)
	return refs, nil
}

// Delete removes the artifact or returns artifact.ErrNotFound.
func (s *Store) Delete(sessionID, ref string) error {
	path, err := s.Path(sessionID, ref)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return artifact.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	return nil
}
