package models

import "fmt"

var (
	ErrProjectNotFound = fmt.Errorf("project not found")
)

/*
Project is a portfolio entry. Display order is not unique; ties are broken
by creation order.
*/
type Project struct {
	BaseModel

	Title        string     `db:"title" json:"title"`
	Year         string     `db:"year" json:"year"`
	Description  string     `db:"description" json:"description"`
	Technologies StringList `db:"technologies" json:"technologies"`
	GithubURL    string     `db:"github_url" json:"githubUrl"`
	LiveURL      string     `db:"live_url" json:"liveUrl"`
	DisplayOrder int        `db:"display_order" json:"displayOrder"`
	Visible      bool       `db:"visible" json:"visible"`
}
