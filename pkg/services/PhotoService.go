package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rfberaldo/sqlz"
	"github.com/rikkicasupanan/portfolio/pkg/models"
)

var unsafeFileNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

/*
UploadURLError means the store refused to issue a signed upload URL. No
bytes have moved when this is returned.
*/
type UploadURLError struct {
	Path string
	Err  error
}

func (e *UploadURLError) Error() string {
	return fmt.Sprintf("could not create upload URL for '%s': %s", e.Path, e.Err.Error())
}

func (e *UploadURLError) Unwrap() error {
	return e.Err
}

type UploadTicket struct {
	SignedURL string `json:"signedUrl"`
	Path      string `json:"path"`
}

type UploadURLInput struct {
	PublicationID string `form:"publicationId" validate:"required"`
	FileName      string `form:"fileName" validate:"required"`
}

type PhotoInput struct {
	PublicationID string `form:"publicationId" validate:"required"`
	Path          string `form:"path" validate:"required"`
	Alt           string `form:"alt"`
	DisplayOrder  int    `form:"displayOrder"`
}

type PhotoServicer interface {
	CreateUploadURL(publicationID, fileName string) (UploadTicket, error)
	Delete(id string) error
	Get(id string) (*models.Photo, error)
	GetAll() ([]models.Photo, error)
	RegisterPhoto(input PhotoInput) (*models.Photo, error)
	UploadAndRegister(publicationID, fileName, contentType, alt string, displayOrder int, body io.Reader) (*models.Photo, error)
}

type PhotoServiceConfig struct {
	DB      *sqlz.DB
	Now     func() time.Time
	Storage GalleryStorer
}

type PhotoService struct {
	db      *sqlz.DB
	now     func() time.Time
	storage GalleryStorer
}

func NewPhotoService(config PhotoServiceConfig) PhotoService {
	if config.Now == nil {
		config.Now = time.Now
	}

	return PhotoService{
		db:      config.DB,
		now:     config.Now,
		storage: config.Storage,
	}
}

/*
SanitizeFileName replaces every character outside [A-Za-z0-9._-] with an
underscore and lowercases the result.
*/
func SanitizeFileName(fileName string) string {
	return strings.ToLower(unsafeFileNameChars.ReplaceAllString(fileName, "_"))
}

/*
BuildStoragePath returns {publicationID}/{unix millis}-{sanitized name}.
*/
func BuildStoragePath(publicationID, fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%d-%s", publicationID, now.UnixMilli(), SanitizeFileName(fileName))
}

/*
CreateUploadURL is step one and two of the upload handshake: derive the
destination path and have the store sign a PUT URL for exactly that path.
*/
func (s PhotoService) CreateUploadURL(publicationID, fileName string) (UploadTicket, error) {
	var (
		err       error
		signedURL string
	)

	input := UploadURLInput{
		PublicationID: strings.TrimSpace(publicationID),
		FileName:      strings.TrimSpace(fileName),
	}

	if err = ValidateStruct(input); err != nil {
		return UploadTicket{}, err
	}

	if err = s.ensurePublicationExists(input.PublicationID); err != nil {
		return UploadTicket{}, err
	}

	path := BuildStoragePath(input.PublicationID, input.FileName, s.now())

	if signedURL, err = s.storage.SignUploadURL(path); err != nil {
		return UploadTicket{}, &UploadURLError{Path: path, Err: err}
	}

	return UploadTicket{SignedURL: signedURL, Path: path}, nil
}

/*
Delete removes the photo row and its stored file. When the stored URL does
not match the storage URL pattern the file removal is skipped but the row
is still deleted.
*/
func (s PhotoService) Delete(id string) error {
	var (
		err   error
		photo *models.Photo
	)

	if photo, err = s.Get(id); err != nil {
		return err
	}

	if path, ok := s.storage.StoragePath(photo.ImageURL); ok {
		if err = s.storage.Remove(path, ThumbnailKey(path)); err != nil {
			slog.Error("error removing stored file of photo", "photoID", id, "path", path, "error", err)
		}
	} else {
		slog.Warn("photo URL does not match storage pattern. skipping file removal", "photoID", id, "imageURL", photo.ImageURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, `DELETE FROM photos WHERE id=?`, id); err != nil {
		return fmt.Errorf("error deleting photo %s: %w", id, err)
	}

	return nil
}

func (s PhotoService) Get(id string) (*models.Photo, error) {
	var (
		err error
	)

	result := &models.Photo{}

	sql := `
SELECT ` + photoColumns + `
FROM photos AS ph
WHERE 1=1
   AND ph.id=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, result, sql, id); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, models.ErrPhotoNotFound
		}

		return nil, fmt.Errorf("error querying for photo %s: %w", id, err)
	}

	return result, nil
}

func (s PhotoService) GetAll() ([]models.Photo, error) {
	var (
		err error
	)

	result := []models.Photo{}

	sql := `
SELECT ` + photoColumns + `
FROM photos AS ph
ORDER BY ph.publication_id, ph.display_order ASC, ph.created_at ASC
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &result, sql); err != nil && !sqlz.IsNotFound(err) {
		return result, fmt.Errorf("error querying for all photos: %w", err)
	}

	return result, nil
}

/*
RegisterPhoto is the final step of the handshake. If it fails after the
file was uploaded, the file stays in the store until reconciliation finds
it.
*/
func (s PhotoService) RegisterPhoto(input PhotoInput) (*models.Photo, error) {
	var (
		err error
	)

	input.PublicationID = strings.TrimSpace(input.PublicationID)
	input.Path = strings.TrimSpace(input.Path)
	input.Alt = strings.TrimSpace(input.Alt)

	if err = ValidateStruct(input); err != nil {
		return nil, err
	}

	result := &models.Photo{
		BaseModel: models.BaseModel{
			ID:        uuid.NewString(),
			CreatedAt: s.now().UTC(),
		},
		PublicationID: input.PublicationID,
		ImageURL:      s.storage.PublicURL(input.Path),
		Alt:           input.Alt,
		DisplayOrder:  input.DisplayOrder,
	}

	sql := `
INSERT INTO photos (
   id
   , created_at
   , publication_id
   , image_url
   , alt
   , display_order
) VALUES (?, ?, ?, ?, ?, ?)
`

	params := []any{
		result.ID,
		result.CreatedAt,
		result.PublicationID,
		result.ImageURL,
		nullIfEmpty(result.Alt),
		result.DisplayOrder,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, params...); err != nil {
		return nil, fmt.Errorf("error registering photo '%s': %w", input.Path, err)
	}

	return result, nil
}

/*
UploadAndRegister is the legacy path: the file body comes through this
process, is stored, then registered, as one linear sequence.
*/
func (s PhotoService) UploadAndRegister(publicationID, fileName, contentType, alt string, displayOrder int, body io.Reader) (*models.Photo, error) {
	var (
		err error
	)

	input := UploadURLInput{
		PublicationID: strings.TrimSpace(publicationID),
		FileName:      strings.TrimSpace(fileName),
	}

	if err = ValidateStruct(input); err != nil {
		return nil, err
	}

	if err = s.ensurePublicationExists(input.PublicationID); err != nil {
		return nil, err
	}

	path := BuildStoragePath(input.PublicationID, input.FileName, s.now())

	if err = s.storage.Upload(path, body, contentType); err != nil {
		return nil, err
	}

	return s.RegisterPhoto(PhotoInput{
		PublicationID: input.PublicationID,
		Path:          path,
		Alt:           alt,
		DisplayOrder:  displayOrder,
	})
}

func (s PhotoService) ensurePublicationExists(publicationID string) error {
	var (
		err error
	)

	row := struct {
		ID string `db:"id"`
	}{}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &row, `SELECT id FROM publications WHERE id=?`, publicationID); err != nil {
		if sqlz.IsNotFound(err) {
			return models.ErrPublicationNotFound
		}

		return fmt.Errorf("error querying for publication %s: %w", publicationID, err)
	}

	return nil
}
