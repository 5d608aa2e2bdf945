package models

import (
	"github.com/adampresley/adamgokit/slices"
	"github.com/rikkicasupanan/portfolio/pkg/models"
)

type AdminProject struct {
	*models.Project

	IsEditing        bool
	TechnologiesText string
}

type AdminPublication struct {
	*models.Publication

	IsEditing   bool
	PhotoCount  int
	AdminPhotos []AdminPhoto
}

type AdminPhoto struct {
	ID           string
	ImageURL     string
	ThumbnailURL string
	Alt          string
	DisplayOrder int
}

func NewAdminProjects(projects []*models.Project, editID string) []AdminProject {
	return slices.Map(projects, func(project *models.Project, index int) AdminProject {
		return AdminProject{
			Project:          project,
			IsEditing:        editID != "" && project.ID == editID,
			TechnologiesText: project.Technologies.String(),
		}
	})
}

func NewAdminPublications(publications []*models.Publication, editID string, thumbnailURL ThumbnailURLFunc) []AdminPublication {
	return slices.Map(publications, func(publication *models.Publication, index int) AdminPublication {
		return AdminPublication{
			Publication: publication,
			IsEditing:   editID != "" && publication.ID == editID,
			PhotoCount:  len(publication.Photos),
			AdminPhotos: slices.Map(publication.Photos, func(photo models.Photo, index int) AdminPhoto {
				return AdminPhoto{
					ID:           photo.ID,
					ImageURL:     photo.ImageURL,
					ThumbnailURL: thumbnailURL(photo.ImageURL),
					Alt:          photo.Alt,
					DisplayOrder: photo.DisplayOrder,
				}
			}),
		}
	})
}
