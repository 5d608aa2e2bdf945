package thumbnails

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"

	"github.com/alitto/pond/v2"
	"github.com/nfnt/resize"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/metrics"
	"github.com/rikkicasupanan/portfolio/pkg/models"
	"github.com/rikkicasupanan/portfolio/pkg/services"
)

const maxThumbnailSize uint = 400

type PhotoLister interface {
	GetAll() ([]models.Photo, error)
}

type ThumbnailCreator interface {
	CreateThumbnails()
	CreateForPhoto(photo *models.Photo) error
}

type ThumbnailCreatorConfig struct {
	MaxWorkers   int
	PhotoService PhotoLister
	ShutdownCtx  context.Context
	Storage      services.GalleryStorer
}

type ThumbnailCreatorService struct {
	maxWorkers   int
	photoService PhotoLister
	shutdownCtx  context.Context
	storage      services.GalleryStorer
}

func NewThumbnailCreatorService(config ThumbnailCreatorConfig) ThumbnailCreatorService {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = 1
	}

	if config.ShutdownCtx == nil {
		config.ShutdownCtx = context.Background()
	}

	return ThumbnailCreatorService{
		maxWorkers:   config.MaxWorkers,
		photoService: config.PhotoService,
		shutdownCtx:  config.ShutdownCtx,
		storage:      config.Storage,
	}
}

/*
CreateThumbnails makes sure every registered photo has a thumbnail at
least as new as its original.
*/
func (c ThumbnailCreatorService) CreateThumbnails() {
	var (
		err    error
		photos []models.Photo
	)

	slog.Info("starting thumbnail creation...")

	if photos, err = c.photoService.GetAll(); err != nil {
		slog.Error("error retrieving photos from database", "error", err)
		return
	}

	slog.Info("checking photos for thumbnails...", "numPhotos", len(photos))

	pool := pond.NewPool(c.maxWorkers, pond.WithContext(c.shutdownCtx))

	for _, photo := range photos {
		path, ok := c.storage.StoragePath(photo.ImageURL)

		if !ok {
			continue
		}

		pool.Submit(func() {
			if c.doesThumbnailExist(path) {
				return
			}

			slog.Info("creating thumbnail...", "photoID", photo.ID, "path", path)

			err := c.createThumbnail(path)
			metrics.ThumbnailsCreatedTotal.WithLabelValues(metrics.Result(err)).Inc()

			if err != nil {
				slog.Error("error creating thumbnail", "photoID", photo.ID, "path", path, "error", err)
			}
		})
	}

	_ = pool.Stop().Wait()
}

/*
CreateForPhoto creates the thumbnail of a single, just registered photo.
*/
func (c ThumbnailCreatorService) CreateForPhoto(photo *models.Photo) error {
	path, ok := c.storage.StoragePath(photo.ImageURL)

	if !ok {
		return fmt.Errorf("photo %s is not stored in the gallery bucket", photo.ID)
	}

	err := c.createThumbnail(path)
	metrics.ThumbnailsCreatedTotal.WithLabelValues(metrics.Result(err)).Inc()
	return err
}

func (c ThumbnailCreatorService) doesThumbnailExist(path string) bool {
	var (
		err           error
		originalStat  *services.StoredObject
		thumbnailStat *services.StoredObject
	)

	if thumbnailStat, err = c.storage.Stat(services.ThumbnailKey(path)); err != nil {
		slog.Error("error retrieving metadata for thumbnail", "path", path, "error", err)
		return false
	}

	if thumbnailStat == nil {
		return false
	}

	if originalStat, err = c.storage.Stat(path); err != nil || originalStat == nil {
		return true
	}

	return !thumbnailStat.LastModified.Before(originalStat.LastModified)
}

func (c ThumbnailCreatorService) createThumbnail(path string) error {
	var (
		err      error
		img      image.Image
		original io.ReadCloser
		buf      bytes.Buffer
	)

	if original, err = c.storage.Open(path); err != nil {
		return fmt.Errorf("error retrieving original image %s: %w", path, err)
	}

	defer original.Close()

	if img, err = resizeReader(original, maxThumbnailSize); err != nil {
		return fmt.Errorf("error resizing image: %w", err)
	}

	if err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("error encoding image for thumbnail: %w", err)
	}

	if err = c.storage.Upload(services.ThumbnailKey(path), &buf, "image/jpeg"); err != nil {
		return fmt.Errorf("error uploading thumbnail: %w", err)
	}

	return nil
}

func resizeReader(r io.Reader, maxSize uint) (image.Image, error) {
	var (
		err error
		img image.Image
	)

	if img, _, err = image.Decode(r); err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}

	return resizeImage(img, maxSize), nil
}

func resizeImage(img image.Image, maxSize uint) image.Image {
	/*
	 * Resize along the longest edge
	 */
	bounds := img.Bounds()
	width := uint(bounds.Dx())
	height := uint(bounds.Dy())

	var newWidth, newHeight uint
	if width > height {
		newWidth = maxSize
		newHeight = uint(float64(height) * (float64(maxSize) / float64(width)))
	} else {
		newHeight = maxSize
		newWidth = uint(float64(width) * (float64(maxSize) / float64(height)))
	}

	return resize.Resize(newWidth, newHeight, img, resize.Lanczos3)
}
