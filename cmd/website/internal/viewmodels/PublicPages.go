package viewmodels

import (
	internalmodels "github.com/rikkicasupanan/portfolio/cmd/website/internal/models"
	"github.com/rikkicasupanan/portfolio/pkg/models"
)

type ProjectsPage struct {
	BaseViewModel
	Projects []*models.Project
}

type GalleryPage struct {
	BaseViewModel
	Sections []internalmodels.GallerySection
}

type AboutPage struct {
	BaseViewModel
	OwnerName string
}

type ContactPage struct {
	BaseViewModel
}
