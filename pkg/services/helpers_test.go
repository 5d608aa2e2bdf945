package services

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rfberaldo/sqlz"
	"github.com/rikkicasupanan/portfolio/pkg/database"
	"github.com/stretchr/testify/require"
)

const testPublicBaseURL = "http://localhost:4566/gallery"

func newTestDB(t *testing.T) *sqlz.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "portfolio.db") + "?_pragma=foreign_keys(1)"

	db, err := database.Connect(dsn)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
	return db
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(now time.Time) *fixedClock {
	return &fixedClock{now: now}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(time.Millisecond)
	return c.now
}

type fakeStorage struct {
	mu           sync.Mutex
	objects      map[string][]byte
	modified     map[string]time.Time
	contentTypes map[string]string
	removed      []string
	signErr      error
	uploadErr    error
	signedPaths  []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		objects:      map[string][]byte{},
		modified:     map[string]time.Time{},
		contentTypes: map[string]string{},
	}
}

func (f *fakeStorage) put(key string, body []byte, modified time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.objects[key] = body
	f.modified[key] = modified
}

func (f *fakeStorage) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.objects[key]
	return ok
}

func (f *fakeStorage) EnsureBucket() error {
	return nil
}

func (f *fakeStorage) SignUploadURL(path string) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.signedPaths = append(f.signedPaths, path)
	return "http://localhost:4566/gallery/" + path + "?X-Amz-Signature=abc", nil
}

func (f *fakeStorage) Upload(path string, body io.Reader, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}

	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	f.put(path, b, time.Now())

	f.mu.Lock()
	f.contentTypes[path] = contentType
	f.mu.Unlock()

	return nil
}

func (f *fakeStorage) Open(path string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.objects[path]
	if !ok {
		return nil, fmt.Errorf("object %s not found", path)
	}

	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *fakeStorage) Stat(path string) (*StoredObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.objects[path]; !ok {
		return nil, nil
	}

	return &StoredObject{Key: path, LastModified: f.modified[path]}, nil
}

func (f *fakeStorage) List(prefix string) ([]StoredObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := []StoredObject{}

	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			result = append(result, StoredObject{Key: key, LastModified: f.modified[key]})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result, nil
}

func (f *fakeStorage) Remove(paths ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range paths {
		delete(f.objects, p)
		delete(f.modified, p)
		f.removed = append(f.removed, p)
	}

	return nil
}

func (f *fakeStorage) PublicURL(path string) string {
	return testPublicBaseURL + "/" + path
}

func (f *fakeStorage) StoragePath(publicURL string) (string, bool) {
	return storagePathFromURL(testPublicBaseURL, publicURL)
}
