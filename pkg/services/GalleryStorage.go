package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/s3/createbucketoptions"
	"github.com/adampresley/adamgokit/s3/listoptions"
	"github.com/adampresley/adamgokit/s3/putoptions"
	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

const thumbnailFolder = "thumbnails"

type StoredObject struct {
	Key          string
	LastModified time.Time
}

/*
GalleryStorer is the blob side of the content store. Only trusted
server-side code holds one.
*/
type GalleryStorer interface {
	EnsureBucket() error
	SignUploadURL(path string) (string, error)
	Upload(path string, body io.Reader, contentType string) error
	Open(path string) (io.ReadCloser, error)
	Stat(path string) (*StoredObject, error)
	List(prefix string) ([]StoredObject, error)
	Remove(paths ...string) error
	PublicURL(path string) string
	StoragePath(publicURL string) (string, bool)
}

type GalleryStorageConfig struct {
	Bucket              string
	PublicBaseURL       string
	Presigner           *awss3.PresignClient
	Region              string
	S3Client            s3.S3Client
	UploadURLExpiration time.Duration
}

type GalleryStorage struct {
	bucket              string
	publicBaseURL       string
	presigner           *awss3.PresignClient
	region              string
	s3Client            s3.S3Client
	uploadURLExpiration time.Duration
}

func NewGalleryStorage(config GalleryStorageConfig) GalleryStorage {
	if config.UploadURLExpiration <= 0 {
		config.UploadURLExpiration = 2 * time.Hour
	}

	return GalleryStorage{
		bucket:              config.Bucket,
		publicBaseURL:       strings.TrimRight(config.PublicBaseURL, "/"),
		presigner:           config.Presigner,
		region:              config.Region,
		s3Client:            config.S3Client,
		uploadURLExpiration: config.UploadURLExpiration,
	}
}

func (s GalleryStorage) EnsureBucket() error {
	var (
		err    error
		exists bool
	)

	if exists, err = s.s3Client.BucketExists(s.bucket); err != nil {
		return fmt.Errorf("error ensuring bucket '%s' exists: %w", s.bucket, err)
	}

	if exists {
		return nil
	}

	slog.Info("creating bucket", "bucketName", s.bucket)

	if err = s.s3Client.CreateBucket(s.bucket, createbucketoptions.WithRegion(s.region)); err != nil {
		return fmt.Errorf("error creating bucket '%s': %w", s.bucket, err)
	}

	return nil
}

/*
SignUploadURL issues a time-limited PUT URL scoped to exactly one key. The
bucket is checked first because presigning alone never talks to the store.
*/
func (s GalleryStorage) SignUploadURL(path string) (string, error) {
	var (
		err    error
		exists bool
	)

	if exists, err = s.s3Client.BucketExists(s.bucket); err != nil {
		return "", fmt.Errorf("error checking bucket '%s': %w", s.bucket, err)
	}

	if !exists {
		return "", fmt.Errorf("bucket '%s' not found", s.bucket)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	request, err := s.presigner.PresignPutObject(
		ctx,
		&awss3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(path),
		},
		awss3.WithPresignExpires(s.uploadURLExpiration),
	)

	if err != nil {
		return "", fmt.Errorf("error signing upload URL for '%s': %w", path, err)
	}

	return request.URL, nil
}

func (s GalleryStorage) Upload(path string, body io.Reader, contentType string) error {
	stream, err := s.s3Client.PutStream(s.bucket, path, putoptions.WithContentType(contentType))

	if err != nil {
		return fmt.Errorf("error opening upload stream for '%s': %w", path, err)
	}

	if _, err = io.Copy(stream.Writer, body); err != nil {
		s.abortUpload(path, stream, err)
		return fmt.Errorf("error uploading '%s': %w", path, err)
	}

	if err = stream.Writer.Close(); err != nil {
		return fmt.Errorf("error closing upload stream for '%s': %w", path, err)
	}

	if _, err = stream.Wait(); err != nil {
		return fmt.Errorf("error finishing upload of '%s': %w", path, err)
	}

	return nil
}

/*
abortUpload stops a stream whose body failed part way. A writer that can
be closed with an error never stores anything. Otherwise closing it lets
the uploader store what it received, so that partial object is removed.
*/
func (s GalleryStorage) abortUpload(path string, stream s3.PutStreamResponse, cause error) {
	if aborter, ok := stream.Writer.(interface{ CloseWithError(error) error }); ok {
		_ = aborter.CloseWithError(cause)
		_, _ = stream.Wait()
		return
	}

	_ = stream.Writer.Close()
	_, _ = stream.Wait()

	if err := s.Remove(path); err != nil {
		slog.Error("error removing partial upload", "path", path, "error", err)
	}
}

func (s GalleryStorage) Open(path string) (io.ReadCloser, error) {
	object, err := s.s3Client.Get(s.bucket, path)

	if err != nil {
		return nil, fmt.Errorf("error retrieving '%s': %w", path, err)
	}

	return object.Body, nil
}

/*
Stat returns nil, nil when the object does not exist.
*/
func (s GalleryStorage) Stat(path string) (*StoredObject, error) {
	stat, err := s.s3Client.StatObject(s.bucket, path)

	if err != nil {
		return nil, fmt.Errorf("error retrieving metadata for '%s': %w", path, err)
	}

	if stat == nil {
		return nil, nil
	}

	return &StoredObject{Key: path, LastModified: stat.LastModified}, nil
}

func (s GalleryStorage) List(prefix string) ([]StoredObject, error) {
	response, err := s.s3Client.List(s.bucket, prefix, listoptions.WithGetAll())

	if err != nil {
		return nil, fmt.Errorf("error listing '%s': %w", prefix, err)
	}

	result := make([]StoredObject, 0, len(response.Objects))

	for _, obj := range response.Objects {
		result = append(result, StoredObject{Key: obj.Key, LastModified: obj.LastModified})
	}

	return result, nil
}

func (s GalleryStorage) Remove(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}

	if _, err := s.s3Client.Delete(s.bucket, paths); err != nil {
		return fmt.Errorf("error removing %v: %w", paths, err)
	}

	return nil
}

func (s GalleryStorage) PublicURL(path string) string {
	return s.publicBaseURL + "/" + path
}

/*
StoragePath reverses PublicURL. URLs that do not start with the public base
(external or malformed) report false.
*/
func (s GalleryStorage) StoragePath(publicURL string) (string, bool) {
	return storagePathFromURL(s.publicBaseURL, publicURL)
}

func storagePathFromURL(publicBaseURL, publicURL string) (string, bool) {
	path, ok := strings.CutPrefix(publicURL, strings.TrimRight(publicBaseURL, "/")+"/")

	if !ok || path == "" {
		return "", false
	}

	return path, true
}

func ThumbnailKey(path string) string {
	return thumbnailFolder + "/" + path
}

func IsThumbnailKey(key string) bool {
	return strings.HasPrefix(key, thumbnailFolder+"/")
}

/*
ThumbnailURL returns the public URL of the thumbnail for a stored photo
URL, or the URL itself when it does not point into the gallery bucket.
*/
func ThumbnailURL(storage GalleryStorer, imageURL string) string {
	path, ok := storage.StoragePath(imageURL)

	if !ok {
		return imageURL
	}

	return storage.PublicURL(ThumbnailKey(path))
}
