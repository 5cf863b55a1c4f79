package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one JSON file per key under a directory.
// Files are scoped to a server URL so profiles pointing at different
// deployments never share tokens.
type FileStore struct {
	dir    string
	suffix string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir for the given base URL.
func NewFileStore(dir, baseURL string) *FileStore {
	hash := sha1.Sum([]byte(baseURL))
	return &FileStore{
		dir:    dir,
		suffix: hex.EncodeToString(hash[:6]),
	}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", sanitizeKey(key), s.suffix))
}

// Get loads the entry for key. A missing, unreadable or corrupt file is a miss.
func (s *FileStore) Get(_ context.Context, key string) (Entry, bool, error) {
	if disabled() {
		return Entry{}, false, nil
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("read cache entry: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Set writes the entry, replacing any previous one atomically.
func (s *FileStore) Set(_ context.Context, key string, entry Entry) error {
	if disabled() {
		return nil
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	path := s.path(key)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry. Removing a missing entry is not an error.
func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// ClearAll removes every cache file from dir.
// Only files matching this package's naming scheme are touched.
func ClearAll(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !isCacheFilename(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// DefaultDir returns "$XDG_CACHE_HOME/lark-cli/tokens" or the platform equivalent.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "lark-cli", "tokens"), nil
}

func disabled() bool {
	return os.Getenv("LARK_NO_CACHE") != ""
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "token"
	}
	r := strings.NewReplacer("/", "-", "\\", "-", ":", "-", "_", "-")
	return r.Replace(key)
}

func isCacheFilename(name string) bool {
	// "<key>_<12hex>.json"
	if filepath.Ext(name) != ".json" {
		return false
	}
	base := strings.TrimSuffix(name, ".json")
	idx := strings.LastIndexByte(base, '_')
	if idx <= 0 {
		return false
	}
	suffix := base[idx+1:]
	if len(suffix) != 12 {
		return false
	}
	_, err := hex.DecodeString(suffix)
	return err == nil
}
