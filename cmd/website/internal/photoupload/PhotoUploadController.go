package photoupload

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rikkicasupanan/portfolio/cmd/website/internal/httpjson"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/metrics"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/pagecache"
	"github.com/rikkicasupanan/portfolio/pkg/models"
	"github.com/rikkicasupanan/portfolio/pkg/services"
)

const maxLegacyUploadSize = 32 << 20

type PhotoUploadHandlers interface {
	CreateUploadURL(w http.ResponseWriter, r *http.Request)
	LegacyUpload(w http.ResponseWriter, r *http.Request)
	RegisterPhoto(w http.ResponseWriter, r *http.Request)
}

type ThumbnailRequester interface {
	CreateForPhoto(photo *models.Photo) error
}

type PhotoUploadControllerConfig struct {
	PageCache          pagecache.PageCache
	PhotoService       services.PhotoServicer
	ThumbnailRequester ThumbnailRequester
}

type PhotoUploadController struct {
	pageCache          pagecache.PageCache
	photoService       services.PhotoServicer
	thumbnailRequester ThumbnailRequester
}

func NewPhotoUploadController(config PhotoUploadControllerConfig) PhotoUploadController {
	if config.PageCache == nil {
		config.PageCache = pagecache.NoopCache{}
	}

	return PhotoUploadController{
		pageCache:          config.PageCache,
		photoService:       config.PhotoService,
		thumbnailRequester: config.ThumbnailRequester,
	}
}

type uploadURLRequest struct {
	PublicationID string `json:"publicationId"`
	FileName      string `json:"fileName"`
}

type registerPhotoRequest struct {
	PublicationID string `json:"publicationId"`
	Path          string `json:"path"`
	Alt           string `json:"alt"`
	DisplayOrder  int    `json:"displayOrder"`
}

type successResponse struct {
	Success bool `json:"success"`
}

/*
POST /admin/photos/upload-url
*/
func (c PhotoUploadController) CreateUploadURL(w http.ResponseWriter, r *http.Request) {
	var (
		err     error
		request uploadURLRequest
		ticket  services.UploadTicket
	)

	if err = httpjson.Decode(r, &request); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ticket, err = c.photoService.CreateUploadURL(request.PublicationID, request.FileName)
	metrics.UploadURLsIssuedTotal.WithLabelValues(metrics.Result(err)).Inc()

	if err != nil {
		slog.Error("error creating upload URL", "error", err, "publicationID", request.PublicationID, "fileName", request.FileName)
		httpjson.Error(w, statusForError(err), err.Error())
		return
	}

	httpjson.OK(w, ticket)
}

/*
POST /admin/photos
*/
func (c PhotoUploadController) RegisterPhoto(w http.ResponseWriter, r *http.Request) {
	var (
		err     error
		request registerPhotoRequest
		photo   *models.Photo
	)

	if err = httpjson.Decode(r, &request); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	photo, err = c.photoService.RegisterPhoto(services.PhotoInput{
		PublicationID: request.PublicationID,
		Path:          request.Path,
		Alt:           request.Alt,
		DisplayOrder:  request.DisplayOrder,
	})

	metrics.PhotosRegisteredTotal.WithLabelValues("handshake", metrics.Result(err)).Inc()

	if err != nil {
		slog.Error("error registering photo", "error", err, "publicationID", request.PublicationID, "path", request.Path)
		httpjson.Error(w, statusForError(err), err.Error())
		return
	}

	c.afterRegister(photo)
	httpjson.OK(w, successResponse{Success: true})
}

/*
POST /api/upload-photo
*/
func (c PhotoUploadController) LegacyUpload(w http.ResponseWriter, r *http.Request) {
	var (
		err   error
		photo *models.Photo
	)

	if err = r.ParseMultipartForm(maxLegacyUploadSize); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Missing file or publication.")
		return
	}

	publicationID := strings.TrimSpace(r.FormValue("publication_id"))
	file, header, err := r.FormFile("file")

	if err != nil || publicationID == "" {
		httpjson.Error(w, http.StatusBadRequest, "Missing file or publication.")
		return
	}

	defer file.Close()

	photo, err = c.photoService.UploadAndRegister(
		publicationID,
		header.Filename,
		header.Header.Get("Content-Type"),
		r.FormValue("alt"),
		services.ParseDisplayOrder(r.FormValue("display_order")),
		file,
	)

	metrics.PhotosRegisteredTotal.WithLabelValues("legacy", metrics.Result(err)).Inc()

	if err != nil {
		slog.Error("error uploading photo", "error", err, "publicationID", publicationID, "fileName", header.Filename)
		httpjson.Error(w, statusForError(err), err.Error())
		return
	}

	c.afterRegister(photo)
	httpjson.OK(w, successResponse{Success: true})
}

func (c PhotoUploadController) afterRegister(photo *models.Photo) {
	c.pageCache.Invalidate("/admin", "/gallery")

	if c.thumbnailRequester == nil {
		return
	}

	go func() {
		if err := c.thumbnailRequester.CreateForPhoto(photo); err != nil {
			slog.Error("error creating thumbnail for new photo", "photoID", photo.ID, "error", err)
		}
	}()
}

func statusForError(err error) int {
	var (
		validationErr *services.ValidationError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrPublicationNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
