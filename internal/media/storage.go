// Package media stores uploaded song files and cover images on local disk.
//
// A stored blob is addressed by its reference, "<kind>/<name>", which is the
// value persisted in the database and served under /media/.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind names the subdirectory a blob lives in.
type Kind string

const (
	KindSong          Kind = "songs"
	KindAlbumCover    Kind = "albums"
	KindPlaylistCover Kind = "playlists"
)

// Kinds lists every subdirectory managed under the media root.
var Kinds = []Kind{KindSong, KindAlbumCover, KindPlaylistCover}

// ErrInvalidReference is returned for references outside the media root or
// naming an unknown kind.
var ErrInvalidReference = errors.New("invalid media reference")

const maxSaveAttempts = 5

// LocalStorage writes blobs beneath a root directory.
type LocalStorage struct {
	root  string
	now   func() time.Time
	token func() string
}

// NewLocalStorage ensures the root and its per-kind subdirectories exist.
func NewLocalStorage(root string) (*LocalStorage, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("media root is required")
	}
	for _, kind := range Kinds {
		if err := os.MkdirAll(filepath.Join(root, string(kind)), 0o755); err != nil {
			return nil, fmt.Errorf("create media dir %s: %w", kind, err)
		}
	}
	return &LocalStorage{
		root: root,
		now:  time.Now,
		token: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		},
	}, nil
}

// Root returns the directory blobs are stored under.
func (s *LocalStorage) Root() string {
	return s.root
}

// Save writes r under kind using filename when it is free. On collision the
// name becomes "<base>_<unix>_<token><ext>". Files are created exclusively,
// so concurrent saves of the same name never share a file.
func (s *LocalStorage) Save(ctx context.Context, kind Kind, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !validKind(kind) {
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidReference, kind)
	}

	name := sanitizeFilename(filename)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	var (
		file *os.File
		err  error
	)
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		if attempt > 0 {
			name = fmt.Sprintf("%s_%d_%s%s", base, s.now().Unix(), s.token(), ext)
		}
		file, err = os.OpenFile(filepath.Join(s.root, string(kind), name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("create media file: %w", err)
		}
	}
	if err != nil {
		return "", fmt.Errorf("create media file: no free name for %q", filename)
	}

	ref := path.Join(string(kind), name)
	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("close media file: %w", err)
	}
	return ref, nil
}

// Remove deletes a stored blob. Removing a blob that is already gone is not
// an error.
func (s *LocalStorage) Remove(ref string) error {
	p, err := s.Path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}

// Exists reports whether a blob is present.
func (s *LocalStorage) Exists(ref string) (bool, error) {
	p, err := s.Path(ref)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat media file: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

// Path resolves a reference to a filesystem path, rejecting anything that
// would escape its kind directory.
func (s *LocalStorage) Path(ref string) (string, error) {
	kind, name, ok := strings.Cut(ref, "/")
	if !ok || !validKind(Kind(kind)) {
		return "", ErrInvalidReference
	}
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", ErrInvalidReference
	}
	return filepath.Join(s.root, kind, name), nil
}

func validKind(kind Kind) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// sanitizeFilename keeps the client's base name but drops directory parts
// and characters that are awkward in URLs.
func sanitizeFilename(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "file"
	}
	return name
}

// Upload is a file received from a client, not yet stored.
type Upload struct {
	Filename string
	Body     io.Reader
}
