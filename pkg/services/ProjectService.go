package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rfberaldo/sqlz"
	"github.com/rikkicasupanan/portfolio/pkg/models"
)

const projectColumns = `
   p.id
   , p.created_at
   , p.title
   , p.year
   , p.description
   , p.technologies
   , COALESCE(p.github_url, '') AS github_url
   , COALESCE(p.live_url, '') AS live_url
   , p.display_order
   , p.visible
`

type ProjectInput struct {
	Title        string            `form:"title" validate:"required"`
	Year         string            `form:"year" validate:"required"`
	Description  string            `form:"description" validate:"required"`
	Technologies models.StringList `form:"technologies" validate:"min=1"`
	GithubURL    string            `form:"github_url" validate:"omitempty,url"`
	LiveURL      string            `form:"live_url" validate:"omitempty,url"`
	DisplayOrder int               `form:"display_order"`
}

func (i ProjectInput) normalized() ProjectInput {
	i.Title = strings.TrimSpace(i.Title)
	i.Year = strings.TrimSpace(i.Year)
	i.Description = strings.TrimSpace(i.Description)
	i.GithubURL = strings.TrimSpace(i.GithubURL)
	i.LiveURL = strings.TrimSpace(i.LiveURL)

	if i.Technologies == nil {
		i.Technologies = models.StringList{}
	}

	return i
}

type ProjectServicer interface {
	Add(input ProjectInput) (*models.Project, error)
	Delete(id string) error
	Get(id string) (*models.Project, error)
	GetAll() ([]*models.Project, error)
	ToggleVisibility(id string) (bool, error)
	Update(id string, input ProjectInput) error
}

type ProjectServiceConfig struct {
	DB  *sqlz.DB
	Now func() time.Time
}

type ProjectService struct {
	db  *sqlz.DB
	now func() time.Time
}

func NewProjectService(config ProjectServiceConfig) ProjectService {
	if config.Now == nil {
		config.Now = time.Now
	}

	return ProjectService{
		db:  config.DB,
		now: config.Now,
	}
}

func (s ProjectService) Add(input ProjectInput) (*models.Project, error) {
	var (
		err error
	)

	input = input.normalized()

	if err = ValidateStruct(input); err != nil {
		return nil, err
	}

	result := &models.Project{
		BaseModel: models.BaseModel{
			ID:        uuid.NewString(),
			CreatedAt: s.now().UTC(),
		},
		Title:        input.Title,
		Year:         input.Year,
		Description:  input.Description,
		Technologies: input.Technologies,
		GithubURL:    input.GithubURL,
		LiveURL:      input.LiveURL,
		DisplayOrder: input.DisplayOrder,
		Visible:      true,
	}

	sql := `
INSERT INTO projects (
   id
   , created_at
   , title
   , year
   , description
   , technologies
   , github_url
   , live_url
   , display_order
   , visible
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

	params := []any{
		result.ID,
		result.CreatedAt,
		result.Title,
		result.Year,
		result.Description,
		result.Technologies,
		nullIfEmpty(result.GithubURL),
		nullIfEmpty(result.LiveURL),
		result.DisplayOrder,
		result.Visible,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, params...); err != nil {
		return nil, fmt.Errorf("error adding project '%s': %w", result.Title, err)
	}

	return result, nil
}

func (s ProjectService) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err := s.db.Exec(ctx, `DELETE FROM projects WHERE id=?`, id); err != nil {
		return fmt.Errorf("error deleting project %s: %w", id, err)
	}

	return nil
}

func (s ProjectService) Get(id string) (*models.Project, error) {
	var (
		err error
	)

	result := &models.Project{}

	sql := `
SELECT ` + projectColumns + `
FROM projects AS p
WHERE 1=1
   AND p.id=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, result, sql, id); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, models.ErrProjectNotFound
		}

		return nil, fmt.Errorf("error querying for project %s: %w", id, err)
	}

	return result, nil
}

/*
GetAll returns every project, hidden ones included, for the admin panel.
*/
func (s ProjectService) GetAll() ([]*models.Project, error) {
	return queryProjects(s.db, false)
}

/*
ToggleVisibility flips the flag in a single statement and returns the new
value. Two toggles always restore the original state.
*/
func (s ProjectService) ToggleVisibility(id string) (bool, error) {
	var (
		err     error
		project *models.Project
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, `UPDATE projects SET visible = NOT visible WHERE id=?`, id); err != nil {
		return false, fmt.Errorf("error toggling visibility of project %s: %w", id, err)
	}

	if project, err = s.Get(id); err != nil {
		return false, err
	}

	return project.Visible, nil
}

/*
Update replaces every editable field of the project. Concurrent edits are
last-write-wins.
*/
func (s ProjectService) Update(id string, input ProjectInput) error {
	var (
		err error
	)

	input = input.normalized()

	if err = ValidateStruct(input); err != nil {
		return err
	}

	if _, err = s.Get(id); err != nil {
		return err
	}

	sql := `
UPDATE projects SET
   title=?
   , year=?
   , description=?
   , technologies=?
   , github_url=?
   , live_url=?
   , display_order=?
WHERE id=?
`

	params := []any{
		input.Title,
		input.Year,
		input.Description,
		input.Technologies,
		nullIfEmpty(input.GithubURL),
		nullIfEmpty(input.LiveURL),
		input.DisplayOrder,
		id,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, params...); err != nil {
		return fmt.Errorf("error updating project %s: %w", id, err)
	}

	return nil
}

func queryProjects(db *sqlz.DB, visibleOnly bool) ([]*models.Project, error) {
	var (
		err error
	)

	result := []*models.Project{}

	sql := `
SELECT ` + projectColumns + `
FROM projects AS p
WHERE 1=1
`

	if visibleOnly {
		sql += `   AND p.visible=1
`
	}

	sql += `ORDER BY p.display_order ASC, p.created_at ASC, p.rowid ASC`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = db.Query(ctx, &result, sql); err != nil && !sqlz.IsNotFound(err) {
		return result, fmt.Errorf("error querying for projects: %w", err)
	}

	return result, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}

	return value
}
