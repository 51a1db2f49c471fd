package storage

import (
	"errors"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize caps uploads at 2048 KB.
const MaxImageSize = 2048 * 1024

var (
	ErrUnsupportedType = errors.New("photo must be a jpeg, jpg, png or gif image")
	ErrTooLarge        = errors.New("photo must not be larger than 2048 kilobytes")
)

var allowedExt = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
}

// ImageStore saves uploaded images under Root and hands out relative
// paths that survive a move of the root directory.
type ImageStore struct {
	Root string
}

func (s *ImageStore) Upload(file *multipart.FileHeader, directory string) (string, error) {
	if file.Size > MaxImageSize {
		return "", ErrTooLarge
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}
	if ct := file.Header.Get("Content-Type"); ct != "" &&
		ct != "application/octet-stream" && !strings.HasPrefix(ct, "image/") {
		return "", ErrUnsupportedType
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	rel := path.Join(directory, uuid.NewString()+ext)
	abs := filepath.Join(s.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(abs)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(abs)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(abs)
		return "", err
	}
	return rel, nil
}

// Delete removes a previously uploaded image. Empty paths, the default
// placeholder and already-missing files are all no-ops.
func (s *ImageStore) Delete(rel string) error {
	if rel == "" || path.Base(rel) == "blank.png" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether a relative path still resolves to a stored file.
func (s *ImageStore) Exists(rel string) bool {
	if rel == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(s.Root, filepath.FromSlash(rel)))
	return err == nil
}
