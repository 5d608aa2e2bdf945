package services

import (
	"github.com/rfberaldo/sqlz"
	"github.com/rikkicasupanan/portfolio/pkg/models"
)

/*
ContentReader is the public-read capability. It only ever exposes filtered,
ordered reads of visible content.
*/
type ContentReader interface {
	GetVisibleProjects() ([]*models.Project, error)
	GetVisiblePublications() ([]*models.Publication, error)
}

type ContentServiceConfig struct {
	DB *sqlz.DB
}

type ContentService struct {
	db *sqlz.DB
}

/*
NewContentService expects the restricted handle (opened read-only).
*/
func NewContentService(config ContentServiceConfig) ContentService {
	return ContentService{
		db: config.DB,
	}
}

func (s ContentService) GetVisibleProjects() ([]*models.Project, error) {
	return queryProjects(s.db, true)
}

func (s ContentService) GetVisiblePublications() ([]*models.Publication, error) {
	return queryPublications(s.db, true)
}
