// Package upload stores attachment binaries on disk and describes them
// with the domain.FileDescriptor that messages carry.
package upload

import (
	"bytes"
	"chat-signal/domain"
	"chat-signal/domain/mimetypes"
	"chat-signal/errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const sniffLength = 3072

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.]`)
	folders     = map[string]struct{}{"images": {}, "audio": {}, "videos": {}, "files": {}}
)

type Store struct {
	log     *slog.Logger
	root    string
	maxSize int64
}

func NewStore(log *slog.Logger, root string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: upload root: %v", errors.ErrStorage, err)
	}
	return &Store{log: log, root: root, maxSize: maxSize}, nil
}

// Root is the directory served under /uploads.
func (s *Store) Root() string { return s.root }

// Store sniffs the content type, refuses types outside the allow list and
// writes the payload under a uuid-prefixed sanitized name. When asAudio is set
// webm/ogg/mp4 containers are filed as audio.
func (s *Store) Store(originalName string, r io.Reader, asAudio bool, duration *float64) (domain.FileDescriptor, error) {
	header := make([]byte, sniffLength)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return domain.FileDescriptor{}, fmt.Errorf("%w: read upload: %v", errors.ErrStorage, err)
	}
	if n == 0 {
		return domain.FileDescriptor{}, fmt.Errorf("%w: empty upload", errors.ErrValidation)
	}
	header = header[:n]

	detected := mimetypes.ToMIME(mimetype.Detect(header).String())
	if asAudio {
		detected = detected.AsAudio()
	}
	if !detected.Allowed() {
		return domain.FileDescriptor{}, fmt.Errorf("%w: %s", errors.ErrUnsupportedFile, detected)
	}
	kind, folder := detected.Category()

	dir := filepath.Join(s.root, folder)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return domain.FileDescriptor{}, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	filename := uuid.NewString() + "-" + unsafeChars.ReplaceAllString(filepath.Base(originalName), "-")
	path := filepath.Join(dir, filename)

	size, err := s.write(path, io.MultiReader(bytes.NewReader(header), r))
	if err != nil {
		_ = os.Remove(path)
		return domain.FileDescriptor{}, err
	}

	s.log.Debug("Upload stored", "file", filename, "mime", detected, "size", size)
	return domain.FileDescriptor{
		URL:         fmt.Sprintf("/uploads/%s/%s", folder, filename),
		APIURL:      fmt.Sprintf("/api/media/%s/%s", folder, filename),
		DownloadURL: fmt.Sprintf("/api/download/%s/%s", folder, filename),
		Type:        string(kind),
		Name:        originalName,
		Size:        size,
		MimeType:    string(detected),
		Folder:      folder,
		Duration:    duration,
	}, nil
}

func (s *Store) write(path string, r io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	defer f.Close()

	size, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	if size > s.maxSize {
		return 0, fmt.Errorf("%w: limit is %d bytes", errors.ErrFileTooLarge, s.maxSize)
	}
	return size, nil
}

// Path resolves a stored file, refusing unknown folders and path traversal.
func (s *Store) Path(folder, filename string) (string, error) {
	if _, ok := folders[folder]; !ok || filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return "", fmt.Errorf("%w: %s/%s", errors.ErrNotFound, folder, filename)
	}
	path := filepath.Join(s.root, folder, filename)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s/%s", errors.ErrNotFound, folder, filename)
	}
	return path, nil
}
