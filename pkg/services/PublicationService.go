package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rfberaldo/sqlz"
	"github.com/rikkicasupanan/portfolio/pkg/models"
)

const publicationColumns = `
   p.id
   , p.created_at
   , p.num
   , p.title
   , p.year
   , COALESCE(p.essay, '') AS essay
   , p.display_order
   , p.visible
`

const photoColumns = `
   ph.id
   , ph.created_at
   , ph.publication_id
   , ph.image_url
   , COALESCE(ph.alt, '') AS alt
   , ph.display_order
`

type PublicationInput struct {
	Num          string `form:"num" validate:"required"`
	Title        string `form:"title" validate:"required"`
	Year         string `form:"year" validate:"required"`
	Essay        string `form:"essay"`
	DisplayOrder int    `form:"display_order"`
}

func (i PublicationInput) normalized() PublicationInput {
	i.Num = strings.TrimSpace(i.Num)
	i.Title = strings.TrimSpace(i.Title)
	i.Year = strings.TrimSpace(i.Year)
	i.Essay = strings.TrimSpace(i.Essay)
	return i
}

type PublicationServicer interface {
	Add(input PublicationInput) (*models.Publication, error)
	Delete(id string) error
	Get(id string) (*models.Publication, error)
	GetAll() ([]*models.Publication, error)
	ToggleVisibility(id string) (bool, error)
	Update(id string, input PublicationInput) error
}

type PublicationServiceConfig struct {
	DB      *sqlz.DB
	Now     func() time.Time
	Storage GalleryStorer
}

type PublicationService struct {
	db      *sqlz.DB
	now     func() time.Time
	storage GalleryStorer
}

func NewPublicationService(config PublicationServiceConfig) PublicationService {
	if config.Now == nil {
		config.Now = time.Now
	}

	return PublicationService{
		db:      config.DB,
		now:     config.Now,
		storage: config.Storage,
	}
}

func (s PublicationService) Add(input PublicationInput) (*models.Publication, error) {
	var (
		err error
	)

	input = input.normalized()

	if err = ValidateStruct(input); err != nil {
		return nil, err
	}

	result := &models.Publication{
		BaseModel: models.BaseModel{
			ID:        uuid.NewString(),
			CreatedAt: s.now().UTC(),
		},
		Num:          input.Num,
		Title:        input.Title,
		Year:         input.Year,
		Essay:        input.Essay,
		DisplayOrder: input.DisplayOrder,
		Visible:      true,
		Photos:       []models.Photo{},
	}

	sql := `
INSERT INTO publications (
   id
   , created_at
   , num
   , title
   , year
   , essay
   , display_order
   , visible
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

	params := []any{
		result.ID,
		result.CreatedAt,
		result.Num,
		result.Title,
		result.Year,
		nullIfEmpty(result.Essay),
		result.DisplayOrder,
		result.Visible,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, params...); err != nil {
		return nil, fmt.Errorf("error adding publication '%s': %w", result.Title, err)
	}

	return result, nil
}

/*
Delete removes the publication and every photo it owns. Photo rows are
deleted explicitly so the result does not depend on the store enforcing
ON DELETE CASCADE. Stored files are removed afterwards on a best-effort
basis; leftovers are picked up by reconciliation.
*/
func (s PublicationService) Delete(id string) error {
	var (
		err    error
		photos []models.Photo
	)

	if photos, err = queryPhotos(s.db, []string{id}); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, `DELETE FROM photos WHERE publication_id=?`, id); err != nil {
		return fmt.Errorf("error deleting photos of publication %s: %w", id, err)
	}

	if _, err = s.db.Exec(ctx, `DELETE FROM publications WHERE id=?`, id); err != nil {
		return fmt.Errorf("error deleting publication %s: %w", id, err)
	}

	if s.storage == nil {
		return nil
	}

	keys := []string{}

	for _, photo := range photos {
		if path, ok := s.storage.StoragePath(photo.ImageURL); ok {
			keys = append(keys, path, ThumbnailKey(path))
		}
	}

	if err = s.storage.Remove(keys...); err != nil {
		slog.Error("error removing stored files of deleted publication", "publicationID", id, "error", err)
	}

	return nil
}

func (s PublicationService) Get(id string) (*models.Publication, error) {
	var (
		err error
	)

	result := &models.Publication{}

	sql := `
SELECT ` + publicationColumns + `
FROM publications AS p
WHERE 1=1
   AND p.id=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, result, sql, id); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, models.ErrPublicationNotFound
		}

		return nil, fmt.Errorf("error querying for publication %s: %w", id, err)
	}

	if result.Photos, err = queryPhotos(s.db, []string{id}); err != nil {
		return nil, err
	}

	return result, nil
}

/*
GetAll returns every publication, hidden ones included, with their photos.
*/
func (s PublicationService) GetAll() ([]*models.Publication, error) {
	return queryPublications(s.db, false)
}

func (s PublicationService) ToggleVisibility(id string) (bool, error) {
	var (
		err         error
		publication *models.Publication
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, `UPDATE publications SET visible = NOT visible WHERE id=?`, id); err != nil {
		return false, fmt.Errorf("error toggling visibility of publication %s: %w", id, err)
	}

	if publication, err = s.Get(id); err != nil {
		return false, err
	}

	return publication.Visible, nil
}

func (s PublicationService) Update(id string, input PublicationInput) error {
	var (
		err error
	)

	input = input.normalized()

	if err = ValidateStruct(input); err != nil {
		return err
	}

	if _, err = s.Get(id); err != nil {
		return err
	}

	sql := `
UPDATE publications SET
   num=?
   , title=?
   , year=?
   , essay=?
   , display_order=?
WHERE id=?
`

	params := []any{
		input.Num,
		input.Title,
		input.Year,
		nullIfEmpty(input.Essay),
		input.DisplayOrder,
		id,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, params...); err != nil {
		return fmt.Errorf("error updating publication %s: %w", id, err)
	}

	return nil
}

func queryPublications(db *sqlz.DB, visibleOnly bool) ([]*models.Publication, error) {
	var (
		err    error
		photos []models.Photo
	)

	result := []*models.Publication{}

	sql := `
SELECT ` + publicationColumns + `
FROM publications AS p
WHERE 1=1
`

	if visibleOnly {
		sql += `   AND p.visible=1
`
	}

	sql += `ORDER BY p.display_order ASC, p.created_at ASC, p.rowid ASC`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = db.Query(ctx, &result, sql); err != nil && !sqlz.IsNotFound(err) {
		return result, fmt.Errorf("error querying for publications: %w", err)
	}

	if len(result) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(result))
	byID := map[string]*models.Publication{}

	for _, publication := range result {
		publication.Photos = []models.Photo{}
		ids = append(ids, publication.ID)
		byID[publication.ID] = publication
	}

	if photos, err = queryPhotos(db, ids); err != nil {
		return result, err
	}

	for _, photo := range photos {
		if publication, ok := byID[photo.PublicationID]; ok {
			publication.Photos = append(publication.Photos, photo)
		}
	}

	return result, nil
}

/*
queryPhotos returns the photos of the given publications, ordered by their
display order within the publication.
*/
func queryPhotos(db *sqlz.DB, publicationIDs []string) ([]models.Photo, error) {
	var (
		err error
	)

	result := []models.Photo{}

	if len(publicationIDs) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(publicationIDs)), ",")

	sql := `
SELECT ` + photoColumns + `
FROM photos AS ph
WHERE 1=1
   AND ph.publication_id IN (` + placeholders + `)
ORDER BY ph.display_order ASC, ph.created_at ASC, ph.rowid ASC
`

	params := make([]any, 0, len(publicationIDs))

	for _, id := range publicationIDs {
		params = append(params, id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = db.Query(ctx, &result, sql, params...); err != nil && !sqlz.IsNotFound(err) {
		return result, fmt.Errorf("error querying for photos: %w", err)
	}

	return result, nil
}
