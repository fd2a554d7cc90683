// Package storage keeps uploaded menu images on local disk under the public
// directory the HTTP server serves.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	MaxImageSize = 5 << 20
	menuPrefix   = "menu"
)

var (
	ErrMissingExtension = errors.New("image file extension is required")
	ErrUnsupportedType  = errors.New("unsupported image type")
	ErrTooLarge         = errors.New("image file too large (max 5MB)")
)

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// LocalStore writes objects below Root and exposes them under PublicPath.
type LocalStore struct {
	Root       string
	PublicPath string
	BaseURL    string
}

func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{Root: root, PublicPath: "/public", BaseURL: strings.TrimRight(baseURL, "/")}
}

// ValidateImage checks the name and size of an upload before it is read.
func ValidateImage(filename string, size int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", ErrMissingExtension
	}
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	if size > MaxImageSize {
		return "", ErrTooLarge
	}
	return ext, nil
}

func slug(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	s := strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(base), "-"), "-")
	if len(s) > 40 {
		s = strings.TrimRight(s[:40], "-")
	}
	if s == "" {
		s = "image"
	}
	return s
}

// ObjectKey builds menu/<id>-<unix>-<slug><ext>.
func ObjectKey(itemID, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(menuPrefix, fmt.Sprintf("%s-%d-%s%s", itemID, now.Unix(), slug(filename), ext))
}

// SaveMenuImage stores the image of a menu item and returns its public URL.
func (s *LocalStore) SaveMenuImage(itemID, filename string, size int64, r io.Reader, now time.Time) (string, error) {
	if _, err := ValidateImage(filename, size); err != nil {
		return "", err
	}
	key := ObjectKey(itemID, filename, now)
	fullPath := filepath.Join(s.Root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	n, err := io.Copy(out, io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		_ = os.Remove(fullPath)
		return "", err
	}
	if n > MaxImageSize {
		_ = os.Remove(fullPath)
		return "", ErrTooLarge
	}

	log.Info().Str("component", "storage").Str("key", key).Int64("bytes", n).Msg("menu image stored")
	return s.URL(key), nil
}

func (s *LocalStore) URL(key string) string {
	return s.BaseURL + path.Join(s.PublicPath, key)
}

// Delete removes the object behind a URL produced by this store. URLs that
// point anywhere else are refused.
func (s *LocalStore) Delete(url string) error {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil
	}
	rel := strings.TrimPrefix(trimmed, s.BaseURL)
	rel = strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(rel, "/")), "/")
	publicRel := strings.TrimPrefix(s.PublicPath, "/") + "/"
	if !strings.HasPrefix(rel, publicRel+menuPrefix+"/") {
		return fmt.Errorf("refusing to delete non-upload path: %s", url)
	}
	rel = strings.TrimPrefix(rel, publicRel)

	cleanBase := filepath.Clean(s.Root)
	target := filepath.Clean(filepath.Join(cleanBase, filepath.FromSlash(rel)))
	if !strings.HasPrefix(target, cleanBase+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside upload root: %s", url)
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
