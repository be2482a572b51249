package vocabulary

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cbodonnell/wordfall/pkg/log"
)

// FileSource reads words from a text file. A missing or empty file is
// rewritten with the default list before it is read.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Load(ctx context.Context) ([]string, error) {
	if err := s.ensureSeeded(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word file %s: %v", s.Path, err)
	}
	defer f.Close()

	return Parse(f)
}

func (s *FileSource) ensureSeeded() error {
	info, err := os.Stat(s.Path)
	switch {
	case err == nil && info.Size() > 0:
		return nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to stat word file %s: %v", s.Path, err)
	}

	log.Info("Seeding word file %s with the default list", s.Path)
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("failed to create word file directory: %v", err)
	}
	content := strings.Join(Default(), "\n") + "\n"
	if err := os.WriteFile(s.Path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to seed word file %s: %v", s.Path, err)
	}
	return nil
}

// Fallback tries each source in order and returns the first non-empty list.
type Fallback []Source

func (f Fallback) Load(ctx context.Context) ([]string, error) {
	var errs []error
	for _, source := range f {
		words, err := source.Load(ctx)
		if err != nil {
			log.Warn("Word source %T failed: %v", source, err)
			errs = append(errs, err)
			continue
		}
		if len(words) > 0 {
			return words, nil
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("no word source succeeded: %w", errors.Join(errs...))
	}
	return nil, nil
}
