package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrInvalidName is returned if the artifact name is empty or contains a
	// path separator.
	ErrInvalidName = errors.New("artifact name must be a plain file name")
	// ErrInvalidContent ...
	ErrInvalidContent = errors.New("artifact content must be valid UTF-8 text")
	// ErrOutsideScratchDir is returned when asked to remove a file that does
	// not belong to the scratch dir.
	ErrOutsideScratchDir = errors.New("path is outside of the scratch dir")
)

const (
	dirPerm  = 0700
	filePerm = 0600
)

// FileSink writes artifacts as files in a scratch dir readable only by the
// current user.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) (*FileSink, error) {
	if dir == "" {
		return nil, fmt.Errorf("missing scratch dir")
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, err
	}
	return &FileSink{dir}, nil
}

func (s *FileSink) Dir() string {
	return s.dir
}

// Write creates a new file called name in the scratch dir. It fails if a
// file with the same name already exists.
func (s *FileSink) Write(name, content string) (string, error) {
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		return "", ErrInvalidName
	}
	if !utf8.ValidString(content) {
		return "", ErrInvalidContent
	}

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// Remove deletes the artifact at path. Removing a missing file is not an
// error.
func (s *FileSink) Remove(path string) error {
	if !s.contains(path) {
		return ErrOutsideScratchDir
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Purge deletes every leftover file in the scratch dir, for example those of
// a process that was killed in the middle of a backup.
func (s *FileSink) Purge() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		if err := os.Remove(path); err != nil {
			log.WithError(err).Warnf("failed to remove artifact %s", path)
			continue
		}
		count++
	}
	return count, nil
}

func (s *FileSink) contains(path string) bool {
	rel, err := filepath.Rel(s.dir, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..") && !strings.Contains(rel, string(filepath.Separator))
}
