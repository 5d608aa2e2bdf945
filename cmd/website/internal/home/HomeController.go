package home

import (
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/viewmodels"
)

type HomeHandlers interface {
	AboutPage(w http.ResponseWriter, r *http.Request)
	ContactPage(w http.ResponseWriter, r *http.Request)
	HomePage(w http.ResponseWriter, r *http.Request)
}

type HomeControllerConfig struct {
	OwnerName string
	Renderer  rendering.TemplateRenderer
}

type HomeController struct {
	ownerName string
	renderer  rendering.TemplateRenderer
}

func NewHomeController(config HomeControllerConfig) HomeController {
	return HomeController{
		ownerName: config.OwnerName,
		renderer:  config.Renderer,
	}
}

/*
GET /
*/
func (c HomeController) HomePage(w http.ResponseWriter, r *http.Request) {
	viewData := viewmodels.HomePage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{
				{Type: "module", Src: "/static/js/pages/split-world.js"},
			},
		},
		OwnerName: c.ownerName,
	}

	c.renderer.Render("pages/home", viewData, w)
}

/*
GET /about
*/
func (c HomeController) AboutPage(w http.ResponseWriter, r *http.Request) {
	viewData := viewmodels.AboutPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx:             httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{},
		},
		OwnerName: c.ownerName,
	}

	c.renderer.Render("pages/about", viewData, w)
}

/*
GET /contact
*/
func (c HomeController) ContactPage(w http.ResponseWriter, r *http.Request) {
	viewData := viewmodels.ContactPage{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{
				{Type: "module", Src: "/static/js/pages/contact.js"},
			},
		},
	}

	c.renderer.Render("pages/contact", viewData, w)
}
