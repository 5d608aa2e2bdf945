package services

import (
	"testing"
	"time"

	"github.com/rikkicasupanan/portfolio/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publicationFixture struct {
	publications PublicationService
	photos       PhotoService
	content      ContentService
	storage      *fakeStorage
}

func newPublicationFixture(t *testing.T) publicationFixture {
	t.Helper()

	db := newTestDB(t)
	clock := newFixedClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	storage := newFakeStorage()

	return publicationFixture{
		publications: NewPublicationService(PublicationServiceConfig{DB: db, Now: clock.Now, Storage: storage}),
		photos:       NewPhotoService(PhotoServiceConfig{DB: db, Now: clock.Now, Storage: storage}),
		content:      NewContentService(ContentServiceConfig{DB: db}),
		storage:      storage,
	}
}

func (f publicationFixture) addPublication(t *testing.T, title string) *models.Publication {
	t.Helper()

	publication, err := f.publications.Add(PublicationInput{Num: "01", Title: title, Year: "2024"})
	require.NoError(t, err)
	return publication
}

func (f publicationFixture) addPhoto(t *testing.T, publicationID, fileName string, order int) *models.Photo {
	t.Helper()

	path := publicationID + "/" + fileName
	f.storage.put(path, []byte("jpeg"), time.Now())

	photo, err := f.photos.RegisterPhoto(PhotoInput{PublicationID: publicationID, Path: path, DisplayOrder: order})
	require.NoError(t, err)
	return photo
}

func TestPublicationService_Add(t *testing.T) {
	t.Run("essay is optional", func(t *testing.T) {
		f := newPublicationFixture(t)

		added, err := f.publications.Add(PublicationInput{Num: " 02 ", Title: "Streets", Year: "2023"})
		require.NoError(t, err)

		got, err := f.publications.Get(added.ID)
		require.NoError(t, err)
		assert.Equal(t, "02", got.Num)
		assert.Empty(t, got.Essay)
		assert.True(t, got.Visible)
		assert.Empty(t, got.Photos)
	})

	t.Run("num, title and year are required", func(t *testing.T) {
		f := newPublicationFixture(t)

		_, err := f.publications.Add(PublicationInput{Essay: "words"})

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Len(t, validationErr.Fields, 3)
		assert.Contains(t, err.Error(), "num is required")
	})
}

func TestContentService_VisiblePublicationsWithOrderedPhotos(t *testing.T) {
	f := newPublicationFixture(t)

	shown := f.addPublication(t, "Shown")
	hidden := f.addPublication(t, "Hidden")

	f.addPhoto(t, shown.ID, "b.jpg", 2)
	f.addPhoto(t, shown.ID, "a.jpg", 1)
	f.addPhoto(t, hidden.ID, "c.jpg", 0)

	_, err := f.publications.ToggleVisibility(hidden.ID)
	require.NoError(t, err)

	public, err := f.content.GetVisiblePublications()
	require.NoError(t, err)
	require.Len(t, public, 1)

	require.Len(t, public[0].Photos, 2)
	assert.Equal(t, testPublicBaseURL+"/"+shown.ID+"/a.jpg", public[0].Photos[0].ImageURL)
	assert.Equal(t, testPublicBaseURL+"/"+shown.ID+"/b.jpg", public[0].Photos[1].ImageURL)

	all, err := f.publications.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPublicationService_HideAndShowKeepsPosition(t *testing.T) {
	f := newPublicationFixture(t)

	for i, title := range []string{"one", "two", "three"} {
		_, err := f.publications.Add(PublicationInput{Num: "0", Title: title, Year: "2024", DisplayOrder: i})
		require.NoError(t, err)
	}

	all, err := f.publications.GetAll()
	require.NoError(t, err)
	middle := all[1]

	_, err = f.publications.ToggleVisibility(middle.ID)
	require.NoError(t, err)

	public, err := f.content.GetVisiblePublications()
	require.NoError(t, err)
	assert.Len(t, public, 2)

	_, err = f.publications.ToggleVisibility(middle.ID)
	require.NoError(t, err)

	public, err = f.content.GetVisiblePublications()
	require.NoError(t, err)
	require.Len(t, public, 3)
	assert.Equal(t, "two", public[1].Title)
}

func TestPublicationService_DeleteCascadesToPhotos(t *testing.T) {
	f := newPublicationFixture(t)

	doomed := f.addPublication(t, "Doomed")
	kept := f.addPublication(t, "Kept")

	first := f.addPhoto(t, doomed.ID, "one.jpg", 0)
	second := f.addPhoto(t, doomed.ID, "two.jpg", 1)
	survivor := f.addPhoto(t, kept.ID, "three.jpg", 0)

	f.storage.put(ThumbnailKey(doomed.ID+"/one.jpg"), []byte("thumb"), time.Now())

	require.NoError(t, f.publications.Delete(doomed.ID))

	_, err := f.publications.Get(doomed.ID)
	assert.ErrorIs(t, err, models.ErrPublicationNotFound)

	for _, id := range []string{first.ID, second.ID} {
		_, err = f.photos.Get(id)
		assert.ErrorIs(t, err, models.ErrPhotoNotFound)
	}

	_, err = f.photos.Get(survivor.ID)
	assert.NoError(t, err)

	assert.False(t, f.storage.has(doomed.ID+"/one.jpg"))
	assert.False(t, f.storage.has(doomed.ID+"/two.jpg"))
	assert.False(t, f.storage.has(ThumbnailKey(doomed.ID+"/one.jpg")))
	assert.True(t, f.storage.has(kept.ID+"/three.jpg"))
}

func TestPublicationService_Update(t *testing.T) {
	f := newPublicationFixture(t)

	added := f.addPublication(t, "Old")

	err := f.publications.Update(added.ID, PublicationInput{Num: "09", Title: "New", Year: "2025", Essay: "An essay"})
	require.NoError(t, err)

	got, err := f.publications.Get(added.ID)
	require.NoError(t, err)
	assert.Equal(t, "09", got.Num)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "An essay", got.Essay)

	err = f.publications.Update("missing", PublicationInput{Num: "1", Title: "x", Year: "1"})
	assert.ErrorIs(t, err, models.ErrPublicationNotFound)
}
