package admin

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/authgate"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/metrics"
	internalmodels "github.com/rikkicasupanan/portfolio/cmd/website/internal/models"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/pagecache"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/viewmodels"
	"github.com/rikkicasupanan/portfolio/pkg/models"
	"github.com/rikkicasupanan/portfolio/pkg/services"
)

type AdminHandlers interface {
	AdminPanelPage(w http.ResponseWriter, r *http.Request)
	LoginPage(w http.ResponseWriter, r *http.Request)
	LoginAction(w http.ResponseWriter, r *http.Request)
	LogoutAction(w http.ResponseWriter, r *http.Request)

	AddProject(w http.ResponseWriter, r *http.Request)
	UpdateProject(w http.ResponseWriter, r *http.Request)
	ToggleProject(w http.ResponseWriter, r *http.Request)
	ProposeDeleteProject(w http.ResponseWriter, r *http.Request)
	CommitDeleteProject(w http.ResponseWriter, r *http.Request)

	AddPublication(w http.ResponseWriter, r *http.Request)
	UpdatePublication(w http.ResponseWriter, r *http.Request)
	TogglePublication(w http.ResponseWriter, r *http.Request)
	ProposeDeletePublication(w http.ResponseWriter, r *http.Request)
	CommitDeletePublication(w http.ResponseWriter, r *http.Request)

	ProposeDeletePhoto(w http.ResponseWriter, r *http.Request)
	CommitDeletePhoto(w http.ResponseWriter, r *http.Request)
}

type AdminControllerConfig struct {
	AuthService               services.AuthServicer
	DeleteConfirmationService services.DeleteConfirmationServicer
	PageCache                 pagecache.PageCache
	PhotoService              services.PhotoServicer
	ProjectService            services.ProjectServicer
	PublicationService        services.PublicationServicer
	Renderer                  rendering.TemplateRenderer
	ThumbnailURL              internalmodels.ThumbnailURLFunc
}

/*
AdminController holds the privileged capabilities. Every mutation redirects
back to the panel with either a msg or an error query value; store errors
are shown verbatim.
*/
type AdminController struct {
	authService               services.AuthServicer
	deleteConfirmationService services.DeleteConfirmationServicer
	pageCache                 pagecache.PageCache
	photoService              services.PhotoServicer
	projectService            services.ProjectServicer
	publicationService        services.PublicationServicer
	renderer                  rendering.TemplateRenderer
	thumbnailURL              internalmodels.ThumbnailURLFunc
}

func NewAdminController(config AdminControllerConfig) AdminController {
	if config.PageCache == nil {
		config.PageCache = pagecache.NoopCache{}
	}

	if config.ThumbnailURL == nil {
		config.ThumbnailURL = func(imageURL string) string { return imageURL }
	}

	return AdminController{
		authService:               config.AuthService,
		deleteConfirmationService: config.DeleteConfirmationService,
		pageCache:                 config.PageCache,
		photoService:              config.PhotoService,
		projectService:            config.ProjectService,
		publicationService:        config.PublicationService,
		renderer:                  config.Renderer,
		thumbnailURL:              config.ThumbnailURL,
	}
}

/*
GET /admin
*/
func (c AdminController) AdminPanelPage(w http.ResponseWriter, r *http.Request) {
	var (
		err          error
		projects     []*models.Project
		publications []*models.Publication
	)

	viewData := viewmodels.AdminPanel{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx:  httphelpers.IsHtmx(r),
			IsAdmin: true,
			JavascriptIncludes: []rendering.JavascriptInclude{
				{Type: "module", Src: "/static/js/admin-upload.js"},
			},
		},
		Tab:          normalizeTab(httphelpers.GetFromRequest[string](r, "tab")),
		EditID:       httphelpers.GetFromRequest[string](r, "edit"),
		Projects:     []internalmodels.AdminProject{},
		Publications: []internalmodels.AdminPublication{},
	}

	if msg := httphelpers.GetFromRequest[string](r, "msg"); msg != "" {
		viewData.Message = msg
	}

	if errorMessage := httphelpers.GetFromRequest[string](r, "error"); errorMessage != "" {
		viewData.IsError = true
		viewData.Message = errorMessage
	}

	if projects, err = c.projectService.GetAll(); err != nil {
		slog.Error("error getting projects for admin panel", "error", err)
		viewData.IsError = true
		viewData.Message = err.Error()
	}

	if publications, err = c.publicationService.GetAll(); err != nil {
		slog.Error("error getting publications for admin panel", "error", err)
		viewData.IsError = true
		viewData.Message = err.Error()
	}

	viewData.Projects = internalmodels.NewAdminProjects(projects, viewData.EditID)
	viewData.Publications = internalmodels.NewAdminPublications(publications, viewData.EditID, c.thumbnailURL)

	c.renderer.Render("pages/admin/panel", viewData, w)
}

/*
GET /admin/login
*/
func (c AdminController) LoginPage(w http.ResponseWriter, r *http.Request) {
	viewData := viewmodels.AdminLogin{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
	}

	c.renderer.Render("pages/admin/login", viewData, w)
}

/*
POST /admin/login
*/
func (c AdminController) LoginAction(w http.ResponseWriter, r *http.Request) {
	pageName := "pages/admin/login"

	viewData := viewmodels.AdminLogin{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
		},
		Email: httphelpers.GetFromRequest[string](r, "email"),
	}

	err := c.authService.Login(w, r, viewData.Email, httphelpers.GetFromRequest[string](r, "password"))

	if errors.Is(err, services.ErrInvalidCredentials) {
		viewData.IsWarning = true
		viewData.Message = "Invalid email or password."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	if err != nil {
		slog.Error("error logging in admin", "error", err)
		viewData.IsError = true
		viewData.Message = "An unexpected error occurred. Please try again."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	http.Redirect(w, r, authgate.AdminPath, http.StatusFound)
}

/*
POST /admin/logout
*/
func (c AdminController) LogoutAction(w http.ResponseWriter, r *http.Request) {
	if err := c.authService.Logout(w, r); err != nil {
		slog.Error("error logging out admin", "error", err)
	}

	http.Redirect(w, r, authgate.LoginPath, http.StatusFound)
}

/*
POST /admin/projects
*/
func (c AdminController) AddProject(w http.ResponseWriter, r *http.Request) {
	_, err := c.projectService.Add(projectInputFromRequest(r))
	c.finishMutation(w, r, services.EntityProject, "add", err, "Project added.")
}

/*
POST /admin/projects/{id}
*/
func (c AdminController) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[string](r, "id")
	err := c.projectService.Update(id, projectInputFromRequest(r))
	c.finishMutation(w, r, services.EntityProject, "update", err, "Project updated.")
}

/*
POST /admin/projects/{id}/toggle
*/
func (c AdminController) ToggleProject(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[string](r, "id")
	visible, err := c.projectService.ToggleVisibility(id)
	c.finishMutation(w, r, services.EntityProject, "toggle", err, visibilityMessage("Project", visible))
}

/*
GET /admin/projects/{id}/delete
*/
func (c AdminController) ProposeDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[string](r, "id")
	project, err := c.projectService.Get(id)

	if err != nil {
		c.redirectToPanel(w, r, services.EntityProject, "", err.Error())
		return
	}

	c.renderConfirmDelete(w, r, services.EntityProject, id, project.Title)
}

/*
POST /admin/projects/{id}/delete
*/
func (c AdminController) CommitDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[string](r, "id")
	err := c.verifyConfirmation(r, services.EntityProject, id)

	if err == nil {
		err = c.projectService.Delete(id)
	}

	c.finishMutation(w, r, services.EntityProject, "delete", err, "Project deleted.")
}

/*
POST /admin/publications
*/
func (c AdminController) AddPublication(w http.ResponseWriter, r *http.Request) {
	_, err := c.publicationService.Add(publicationInputFromRequest(r))
	c.finishMutation(w, r, services.EntityPublication, "add", err, "Publication added.")
}

/*
POST /admin/publications/{id}
*/
func (c AdminController) UpdatePublication(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[string](r, "id")
	err := c.publicationService.Update(id, publicationInputFromRequest(r))
	c.finishMutation(w, r, services.EntityPublication, "update", err, "Publication updated.")
}

/*
POST /admin/publications/{id}/toggle
*/
func (c AdminController) TogglePublication(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[string](r, "id")
	visible, err := c.publicationService.ToggleVisibility(id)
	c.finishMutation(w, r, services.EntityPublication, "toggle", err, visibilityMessage("Publication", visible))
}

/*
GET /admin/publications/{id}/delete
*/
func (c AdminController) ProposeDeletePublication(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[string](r, "id")
	publication, err := c.publicationService.Get(id)

	if err != nil {
		c.redirectToPanel(w, r, services.EntityPublication, "", err.Error())
		return
	}

	label := fmt.Sprintf("%s (%d photos)", publication.Title, len(publication.Photos))
	c.renderConfirmDelete(w, r, services.EntityPublication, id, label)
}

/*
POST /admin/publications/{id}/delete
*/
func (c AdminController) CommitDeletePublication(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[string](r, "id")
	err := c.verifyConfirmation(r, services.EntityPublication, id)

	if err == nil {
		err = c.publicationService.Delete(id)
	}

	c.finishMutation(w, r, services.EntityPublication, "delete", err, "Publication deleted.")
}

/*
GET /admin/photos/{id}/delete
*/
func (c AdminController) ProposeDeletePhoto(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[string](r, "id")
	photo, err := c.photoService.Get(id)

	if err != nil {
		c.redirectToPanel(w, r, services.EntityPhoto, "", err.Error())
		return
	}

	label := photo.Alt
	if label == "" {
		label = photo.ImageURL
	}

	c.renderConfirmDelete(w, r, services.EntityPhoto, id, label)
}

/*
POST /admin/photos/{id}/delete
*/
func (c AdminController) CommitDeletePhoto(w http.ResponseWriter, r *http.Request) {
	id := httphelpers.GetFromRequest[string](r, "id")
	err := c.verifyConfirmation(r, services.EntityPhoto, id)

	if err == nil {
		err = c.photoService.Delete(id)
	}

	c.finishMutation(w, r, services.EntityPhoto, "delete", err, "Photo deleted.")
}

func (c AdminController) renderConfirmDelete(w http.ResponseWriter, r *http.Request, kind, id, label string) {
	token, err := c.deleteConfirmationService.Propose(kind, id)

	if err != nil {
		slog.Error("error proposing delete", "kind", kind, "id", id, "error", err)
		c.redirectToPanel(w, r, kind, "", err.Error())
		return
	}

	viewData := viewmodels.ConfirmDelete{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx:  httphelpers.IsHtmx(r),
			IsAdmin: true,
		},
		Kind:   kind,
		ID:     id,
		Label:  label,
		Token:  token,
		Action: fmt.Sprintf("/admin/%ss/%s/delete", kind, url.PathEscape(id)),
		Back:   panelURL(kind, "", ""),
	}

	c.renderer.Render("pages/admin/confirm-delete", viewData, w)
}

func (c AdminController) verifyConfirmation(r *http.Request, kind, id string) error {
	return c.deleteConfirmationService.Verify(httphelpers.GetFromRequest[string](r, "token"), kind, id)
}

/*
finishMutation records the outcome, invalidates the public page that shows
the entity on success and sends the admin back to the panel.
*/
func (c AdminController) finishMutation(w http.ResponseWriter, r *http.Request, kind, action string, err error, successMessage string) {
	metrics.AdminMutationsTotal.WithLabelValues(kind, action, metrics.Result(err)).Inc()

	if err != nil {
		slog.Error("admin mutation failed", "entity", kind, "action", action, "error", err)
		c.redirectToPanel(w, r, kind, "", err.Error())
		return
	}

	c.pageCache.Invalidate(authgate.AdminPath, publicPathFor(kind))
	c.redirectToPanel(w, r, kind, successMessage, "")
}

func (c AdminController) redirectToPanel(w http.ResponseWriter, r *http.Request, kind, message, errorMessage string) {
	http.Redirect(w, r, panelURL(kind, message, errorMessage), http.StatusSeeOther)
}

func panelURL(kind, message, errorMessage string) string {
	values := url.Values{}
	values.Set("tab", tabFor(kind))

	if message != "" {
		values.Set("msg", message)
	}

	if errorMessage != "" {
		values.Set("error", errorMessage)
	}

	return authgate.AdminPath + "?" + values.Encode()
}

func tabFor(kind string) string {
	if kind == services.EntityProject {
		return viewmodels.TabProjects
	}

	return viewmodels.TabPublications
}

func normalizeTab(tab string) string {
	if tab == viewmodels.TabPublications {
		return tab
	}

	return viewmodels.TabProjects
}

func publicPathFor(kind string) string {
	if kind == services.EntityProject {
		return "/projects"
	}

	return "/gallery"
}

func visibilityMessage(entity string, visible bool) string {
	if visible {
		return entity + " is now visible."
	}

	return entity + " is now hidden."
}

func projectInputFromRequest(r *http.Request) services.ProjectInput {
	return services.ProjectInput{
		Title:        httphelpers.GetFromRequest[string](r, "title"),
		Year:         httphelpers.GetFromRequest[string](r, "year"),
		Description:  httphelpers.GetFromRequest[string](r, "description"),
		Technologies: models.ParseStringList(httphelpers.GetFromRequest[string](r, "technologies")),
		GithubURL:    httphelpers.GetFromRequest[string](r, "github_url"),
		LiveURL:      httphelpers.GetFromRequest[string](r, "live_url"),
		DisplayOrder: services.ParseDisplayOrder(httphelpers.GetFromRequest[string](r, "display_order")),
	}
}

func publicationInputFromRequest(r *http.Request) services.PublicationInput {
	return services.PublicationInput{
		Num:          httphelpers.GetFromRequest[string](r, "num"),
		Title:        httphelpers.GetFromRequest[string](r, "title"),
		Year:         httphelpers.GetFromRequest[string](r, "year"),
		Essay:        httphelpers.GetFromRequest[string](r, "essay"),
		DisplayOrder: services.ParseDisplayOrder(httphelpers.GetFromRequest[string](r, "display_order")),
	}
}
