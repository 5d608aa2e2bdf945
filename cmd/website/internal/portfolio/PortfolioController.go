package portfolio

import (
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	internalmodels "github.com/rikkicasupanan/portfolio/cmd/website/internal/models"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/pagecache"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/viewmodels"
	"github.com/rikkicasupanan/portfolio/pkg/models"
	"github.com/rikkicasupanan/portfolio/pkg/services"
)

type PortfolioHandlers interface {
	GalleryPage(w http.ResponseWriter, r *http.Request)
	ProjectsPage(w http.ResponseWriter, r *http.Request)
}

type PortfolioControllerConfig struct {
	ContentReader services.ContentReader
	PageCache     pagecache.PageCache
	Renderer      rendering.TemplateRenderer
	ThumbnailURL  internalmodels.ThumbnailURLFunc
}

/*
PortfolioController renders the public content pages. It only holds the
read capability of the store.
*/
type PortfolioController struct {
	contentReader services.ContentReader
	pageCache     pagecache.PageCache
	renderer      rendering.TemplateRenderer
	thumbnailURL  internalmodels.ThumbnailURLFunc
}

func NewPortfolioController(config PortfolioControllerConfig) PortfolioController {
	if config.PageCache == nil {
		config.PageCache = pagecache.NoopCache{}
	}

	return PortfolioController{
		contentReader: config.ContentReader,
		pageCache:     config.PageCache,
		renderer:      config.Renderer,
		thumbnailURL:  config.ThumbnailURL,
	}
}

/*
GET /projects
*/
func (c PortfolioController) ProjectsPage(w http.ResponseWriter, r *http.Request) {
	if httphelpers.IsHtmx(r) {
		c.renderProjects(w, r)
		return
	}

	pagecache.Serve(c.pageCache, w, r, func(w http.ResponseWriter) bool {
		return c.renderProjects(w, r)
	})
}

/*
renderProjects reports whether the page may be cached. A failed read
still renders, but only with an empty list.
*/
func (c PortfolioController) renderProjects(w http.ResponseWriter, r *http.Request) bool {
	projects, complete := c.visibleProjects()

	viewData := viewmodels.ProjectsPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx:             httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{},
		},
		Projects: projects,
	}

	if err := c.renderer.Render("pages/projects", viewData, w); err != nil {
		slog.Error("error rendering projects page", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return false
	}

	return complete
}

/*
GET /gallery
*/
func (c PortfolioController) GalleryPage(w http.ResponseWriter, r *http.Request) {
	if httphelpers.IsHtmx(r) {
		c.renderGallery(w, r)
		return
	}

	pagecache.Serve(c.pageCache, w, r, func(w http.ResponseWriter) bool {
		return c.renderGallery(w, r)
	})
}

func (c PortfolioController) renderGallery(w http.ResponseWriter, r *http.Request) bool {
	publications, complete := c.visiblePublications()

	viewData := viewmodels.GalleryPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{
				{Type: "module", Src: "/static/js/pages/gallery.js"},
			},
		},
		Sections: internalmodels.NewGallerySections(publications, c.thumbnailURL),
	}

	if err := c.renderer.Render("pages/gallery", viewData, w); err != nil {
		slog.Error("error rendering gallery page", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return false
	}

	return complete
}

/*
visibleProjects degrades a failed read to an empty list so the page still
renders. The flag is false when that happened.
*/
func (c PortfolioController) visibleProjects() ([]*models.Project, bool) {
	projects, err := c.contentReader.GetVisibleProjects()

	if err != nil {
		slog.Error("error reading visible projects", "error", err)
		return []*models.Project{}, false
	}

	return projects, true
}

func (c PortfolioController) visiblePublications() ([]*models.Publication, bool) {
	publications, err := c.contentReader.GetVisiblePublications()

	if err != nil {
		slog.Error("error reading visible publications", "error", err)
		return []*models.Publication{}, false
	}

	return publications, true
}
