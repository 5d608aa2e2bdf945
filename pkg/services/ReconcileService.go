package services

import (
	"log/slog"
	"sync"
	"time"

	"github.com/adampresley/adamgokit/slices"
	"github.com/rikkicasupanan/portfolio/pkg/models"
)

type MissingBlob struct {
	PhotoID string
	Path    string
}

/*
ReconcileReport lists what a run changed or found. UnmatchedPhotos holds
the IDs of photos whose URL does not point into the gallery bucket, which
happens when the public base URL changes. While there are any, no files
are removed.
*/
type ReconcileReport struct {
	RemovedBlobs    []string
	MissingBlobs    []MissingBlob
	UnmatchedPhotos []string
}

func (r ReconcileReport) HasFindings() bool {
	return len(r.RemovedBlobs) > 0 || len(r.MissingBlobs) > 0 || len(r.UnmatchedPhotos) > 0
}

type ReconcileServicer interface {
	Reconcile() ReconcileReport
	StartRoutine(interval time.Duration)
	StopRoutine()
}

type ReconcileServiceConfig struct {
	GracePeriod time.Duration

	// Notify receives the report of every completed run, findings or not.
	Notify       func(report ReconcileReport) error
	Now          func() time.Time
	PhotoService PhotoServicer
	Storage      GalleryStorer
}

/*
ReconcileService closes the gaps the upload handshake can leave behind.
Stored files that no photo row references are removed once they are older
than the grace period, so uploads still in flight are left alone. Photo
rows whose file is missing are only reported.
*/
type ReconcileService struct {
	config  ReconcileServiceConfig
	stop    chan struct{}
	wg      *sync.WaitGroup
	started bool
}

func NewReconcileService(config ReconcileServiceConfig) *ReconcileService {
	if config.GracePeriod <= 0 {
		config.GracePeriod = 24 * time.Hour
	}

	if config.Now == nil {
		config.Now = time.Now
	}

	return &ReconcileService{
		config: config,
		stop:   make(chan struct{}),
		wg:     &sync.WaitGroup{},
	}
}

func (s *ReconcileService) Reconcile() ReconcileReport {
	var (
		err     error
		photos  []models.Photo
		objects []StoredObject
	)

	l := slog.With("function", "Reconcile")
	l.Info("starting gallery storage reconciliation")

	report := ReconcileReport{
		RemovedBlobs:    []string{},
		MissingBlobs:    []MissingBlob{},
		UnmatchedPhotos: []string{},
	}

	if photos, err = s.config.PhotoService.GetAll(); err != nil {
		l.Error("error retrieving photos from database", "error", err)
		return report
	}

	if objects, err = s.config.Storage.List(""); err != nil {
		l.Error("error listing gallery storage", "error", err)
		return report
	}

	registeredPaths := []string{}

	for _, photo := range photos {
		path, ok := s.config.Storage.StoragePath(photo.ImageURL)

		if !ok {
			report.UnmatchedPhotos = append(report.UnmatchedPhotos, photo.ID)
			continue
		}

		registeredPaths = append(registeredPaths, path)
	}

	storedKeys := slices.Map(objects, func(input StoredObject, index int) string {
		return input.Key
	})

	cutoffTime := s.config.Now().Add(-s.config.GracePeriod)

	removable := objects

	if len(report.UnmatchedPhotos) > 0 {
		l.Warn("photo URLs do not match the gallery base URL. skipping file removal", "unmatched", len(report.UnmatchedPhotos))
		removable = []StoredObject{}
	}

	for _, object := range removable {
		if IsThumbnailKey(object.Key) || slices.IsInSlice(object.Key, registeredPaths) {
			continue
		}

		if !object.LastModified.Before(cutoffTime) {
			continue
		}

		l.Info("removing unregistered gallery file", "key", object.Key, "modTime", object.LastModified)

		if err = s.config.Storage.Remove(object.Key, ThumbnailKey(object.Key)); err != nil {
			l.Error("failed to remove unregistered gallery file", "error", err, "key", object.Key)
			continue
		}

		report.RemovedBlobs = append(report.RemovedBlobs, object.Key)
	}

	for _, photo := range photos {
		path, ok := s.config.Storage.StoragePath(photo.ImageURL)

		if !ok || slices.IsInSlice(path, storedKeys) {
			continue
		}

		l.Warn("photo references a missing file", "photoID", photo.ID, "path", path)
		report.MissingBlobs = append(report.MissingBlobs, MissingBlob{PhotoID: photo.ID, Path: path})
	}

	if s.config.Notify != nil {
		if err = s.config.Notify(report); err != nil {
			l.Error("failed to publish reconciliation report", "error", err)
		}
	}

	l.Info("completed gallery storage reconciliation",
		"removed", len(report.RemovedBlobs),
		"missing", len(report.MissingBlobs),
		"unmatched", len(report.UnmatchedPhotos),
	)
	return report
}

func (s *ReconcileService) StartRoutine(interval time.Duration) {
	if s.started {
		return
	}

	s.started = true
	ticker := time.NewTicker(interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case <-ticker.C:
				s.Reconcile()
			case <-s.stop:
				ticker.Stop()
				return
			}
		}
	}()

	slog.Info("reconciliation routine started", "interval", interval)
}

func (s *ReconcileService) StopRoutine() {
	if !s.started {
		return
	}

	close(s.stop)
	s.wg.Wait()
	s.started = false
	slog.Info("reconciliation routine stopped")
}
