package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rikkicasupanan/portfolio/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"spaces and punctuation", "My Photo!.JPG", "my_photo_.jpg"},
		{"already safe", "dawn-01_final.png", "dawn-01_final.png"},
		{"unicode", "café à.jpg", "caf___.jpg"},
		{"path separators", "../etc/passwd", ".._etc_passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFileName(tt.input))
		})
	}
}

func TestBuildStoragePath(t *testing.T) {
	now := time.UnixMilli(1714564800123)

	got := BuildStoragePath("pub-1", "My Photo!.JPG", now)
	assert.Equal(t, "pub-1/1714564800123-my_photo_.jpg", got)
}

func TestPhotoService_CreateUploadURL(t *testing.T) {
	t.Run("returns a path under the publication and a signed url for it", func(t *testing.T) {
		f := newPublicationFixture(t)
		publication := f.addPublication(t, "Sea")

		ticket, err := f.photos.CreateUploadURL(publication.ID, "My Photo!.JPG")
		require.NoError(t, err)

		prefix := publication.ID + "/"
		require.True(t, strings.HasPrefix(ticket.Path, prefix))

		rest := strings.TrimPrefix(ticket.Path, prefix)
		millis, name, found := strings.Cut(rest, "-")
		require.True(t, found)
		assert.Equal(t, "my_photo_.jpg", name)
		assert.Regexp(t, `^\d+$`, millis)

		assert.Contains(t, ticket.SignedURL, ticket.Path)
		assert.Equal(t, []string{ticket.Path}, f.storage.signedPaths)
	})

	t.Run("unknown publication", func(t *testing.T) {
		f := newPublicationFixture(t)

		_, err := f.photos.CreateUploadURL("nope", "a.jpg")
		assert.ErrorIs(t, err, models.ErrPublicationNotFound)
		assert.Empty(t, f.storage.signedPaths)
	})

	t.Run("missing file name is a validation error", func(t *testing.T) {
		f := newPublicationFixture(t)
		publication := f.addPublication(t, "Sea")

		_, err := f.photos.CreateUploadURL(publication.ID, " ")

		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("store refusing to sign yields an UploadURLError", func(t *testing.T) {
		f := newPublicationFixture(t)
		publication := f.addPublication(t, "Sea")

		cause := fmt.Errorf("bucket 'gallery' not found")
		f.storage.signErr = cause

		_, err := f.photos.CreateUploadURL(publication.ID, "a.jpg")

		var uploadErr *UploadURLError
		require.True(t, errors.As(err, &uploadErr))
		assert.ErrorIs(t, err, cause)
		assert.True(t, strings.HasPrefix(uploadErr.Path, publication.ID+"/"))
	})
}

func TestPhotoService_RegisterPhoto(t *testing.T) {
	f := newPublicationFixture(t)
	publication := f.addPublication(t, "Sea")

	photo, err := f.photos.RegisterPhoto(PhotoInput{
		PublicationID: publication.ID,
		Path:          publication.ID + "/1-a.jpg",
		Alt:           " waves ",
		DisplayOrder:  3,
	})
	require.NoError(t, err)

	got, err := f.photos.Get(photo.ID)
	require.NoError(t, err)
	assert.Equal(t, testPublicBaseURL+"/"+publication.ID+"/1-a.jpg", got.ImageURL)
	assert.Equal(t, "waves", got.Alt)
	assert.Equal(t, 3, got.DisplayOrder)

	_, err = f.photos.RegisterPhoto(PhotoInput{PublicationID: "missing", Path: "missing/1-a.jpg"})
	assert.Error(t, err, "the foreign key rejects photos without a publication")
}

func TestPhotoService_UploadAndRegister(t *testing.T) {
	f := newPublicationFixture(t)
	publication := f.addPublication(t, "Sea")

	photo, err := f.photos.UploadAndRegister(publication.ID, "Beach Day.png", "image/png", "sand", 0, strings.NewReader("png-bytes"))
	require.NoError(t, err)

	path, ok := f.storage.StoragePath(photo.ImageURL)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(path, "-beach_day.png"))
	assert.True(t, f.storage.has(path))
	assert.Equal(t, "image/png", f.storage.contentTypes[path])

	f.storage.uploadErr = fmt.Errorf("connection reset")

	_, err = f.photos.UploadAndRegister(publication.ID, "b.png", "image/png", "", 0, strings.NewReader("x"))
	require.Error(t, err)

	all, err := f.photos.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1, "a failed upload registers nothing")
}

func TestPhotoService_Delete(t *testing.T) {
	t.Run("removes the stored file and its thumbnail", func(t *testing.T) {
		f := newPublicationFixture(t)
		publication := f.addPublication(t, "Sea")
		photo := f.addPhoto(t, publication.ID, "1-a.jpg", 0)

		f.storage.put(ThumbnailKey(publication.ID+"/1-a.jpg"), []byte("thumb"), time.Now())

		require.NoError(t, f.photos.Delete(photo.ID))

		_, err := f.photos.Get(photo.ID)
		assert.ErrorIs(t, err, models.ErrPhotoNotFound)
		assert.False(t, f.storage.has(publication.ID+"/1-a.jpg"))
		assert.False(t, f.storage.has(ThumbnailKey(publication.ID+"/1-a.jpg")))
	})

	t.Run("foreign url skips storage but still deletes the row", func(t *testing.T) {
		f := newPublicationFixture(t)
		publication := f.addPublication(t, "Sea")

		photo, err := f.photos.RegisterPhoto(PhotoInput{PublicationID: publication.ID, Path: "x.jpg"})
		require.NoError(t, err)

		_, err = f.photos.db.Exec(t.Context(), `UPDATE photos SET image_url=? WHERE id=?`, "https://elsewhere.example.com/x.jpg", photo.ID)
		require.NoError(t, err)

		require.NoError(t, f.photos.Delete(photo.ID))

		_, err = f.photos.Get(photo.ID)
		assert.ErrorIs(t, err, models.ErrPhotoNotFound)
		assert.Empty(t, f.storage.removed)
	})

	t.Run("unknown photo", func(t *testing.T) {
		f := newPublicationFixture(t)
		assert.ErrorIs(t, f.photos.Delete("nope"), models.ErrPhotoNotFound)
	})
}

func TestStoragePathFromURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
		ok       bool
	}{
		{"matching", testPublicBaseURL + "/pub/1-a.jpg", "pub/1-a.jpg", true},
		{"other host", "https://cdn.example.com/pub/1-a.jpg", "", false},
		{"base only", testPublicBaseURL + "/", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := storagePathFromURL(testPublicBaseURL+"/", tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, path)
		})
	}
}

func TestThumbnailURL(t *testing.T) {
	storage := newFakeStorage()

	assert.Equal(t, testPublicBaseURL+"/thumbnails/p/1-a.jpg", ThumbnailURL(storage, testPublicBaseURL+"/p/1-a.jpg"))
	assert.Equal(t, "https://cdn.example.com/x.jpg", ThumbnailURL(storage, "https://cdn.example.com/x.jpg"))
}
