package portfolio

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/pagecache"
	"github.com/rikkicasupanan/portfolio/cmd/website/internal/viewmodels"
	"github.com/rikkicasupanan/portfolio/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContentReader struct {
	projects     []*models.Project
	publications []*models.Publication
	err          error
}

func (f *fakeContentReader) GetVisibleProjects() ([]*models.Project, error) {
	return f.projects, f.err
}

func (f *fakeContentReader) GetVisiblePublications() ([]*models.Publication, error) {
	return f.publications, f.err
}

type fakeRenderer struct {
	err error
}

func (f fakeRenderer) Render(templateName string, data any, w io.Writer) error {
	if f.err != nil {
		return f.err
	}

	switch page := data.(type) {
	case viewmodels.ProjectsPage:
		for _, project := range page.Projects {
			_, _ = fmt.Fprintf(w, "<h2>%s</h2>", project.Title)
		}

	case viewmodels.GalleryPage:
		for _, section := range page.Sections {
			_, _ = fmt.Fprintf(w, "<h2>%s</h2>", section.Title)
		}
	}

	return nil
}

func (f fakeRenderer) RenderString(templateString string, data any, w io.Writer) error {
	return f.err
}

func setupTestCache(t *testing.T) pagecache.RedisCache {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return pagecache.NewRedisCache(pagecache.RedisCacheConfig{Client: client, TTL: time.Hour})
}

func TestPortfolioController_ReadFailuresRenderEmptyLists(t *testing.T) {
	controller := NewPortfolioController(PortfolioControllerConfig{
		ContentReader: &fakeContentReader{err: errors.New("connection refused")},
	})

	projects, complete := controller.visibleProjects()
	assert.NotNil(t, projects)
	assert.Empty(t, projects)
	assert.False(t, complete)

	publications, complete := controller.visiblePublications()
	assert.NotNil(t, publications)
	assert.Empty(t, publications)
	assert.False(t, complete)
}

func TestPortfolioController_PassesVisibleContentThrough(t *testing.T) {
	controller := NewPortfolioController(PortfolioControllerConfig{
		ContentReader: &fakeContentReader{
			projects:     []*models.Project{{Title: "Foo"}},
			publications: []*models.Publication{{Title: "Series I"}},
		},
	})

	projects, complete := controller.visibleProjects()
	assert.True(t, complete)
	assert.Equal(t, "Foo", projects[0].Title)

	publications, complete := controller.visiblePublications()
	assert.True(t, complete)
	assert.Equal(t, "Series I", publications[0].Title)
}

func TestPortfolioController_RecoversAfterStoreOutage(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		serve func(c PortfolioController, w http.ResponseWriter, r *http.Request)
	}{
		{"projects", "/projects", PortfolioController.ProjectsPage},
		{"gallery", "/gallery", PortfolioController.GalleryPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeContentReader{err: errors.New("connection refused")}

			controller := NewPortfolioController(PortfolioControllerConfig{
				ContentReader: reader,
				PageCache:     setupTestCache(t),
				Renderer:      fakeRenderer{},
			})

			w := httptest.NewRecorder()
			tt.serve(controller, w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Body.String())

			reader.err = nil
			reader.projects = []*models.Project{{Title: "Compiler"}}
			reader.publications = []*models.Publication{{Title: "Compiler"}}

			w = httptest.NewRecorder()
			tt.serve(controller, w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "<h2>Compiler</h2>", w.Body.String())
			assert.Equal(t, "miss", w.Header().Get("X-Page-Cache"))

			w = httptest.NewRecorder()
			tt.serve(controller, w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, "<h2>Compiler</h2>", w.Body.String())
			assert.Equal(t, "hit", w.Header().Get("X-Page-Cache"))
		})
	}
}

func TestPortfolioController_RenderFailureIsNotCached(t *testing.T) {
	cache := setupTestCache(t)

	controller := NewPortfolioController(PortfolioControllerConfig{
		ContentReader: &fakeContentReader{projects: []*models.Project{{Title: "Compiler"}}},
		PageCache:     cache,
		Renderer:      fakeRenderer{err: errors.New("template: projects: unexpected EOF")},
	})

	w := httptest.NewRecorder()
	controller.ProjectsPage(w, httptest.NewRequest(http.MethodGet, "/projects", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	_, ok := cache.Get("/projects")
	assert.False(t, ok)
}
