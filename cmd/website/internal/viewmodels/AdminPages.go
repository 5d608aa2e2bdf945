package viewmodels

import (
	internalmodels "github.com/rikkicasupanan/portfolio/cmd/website/internal/models"
)

const (
	TabProjects     = "projects"
	TabPublications = "publications"
)

type AdminLogin struct {
	BaseViewModel
	Email string
}

type AdminPanel struct {
	BaseViewModel

	Tab          string
	EditID       string
	Projects     []internalmodels.AdminProject
	Publications []internalmodels.AdminPublication
}

/*
ConfirmDelete is the second step of a delete. Token is posted back to
Action to commit.
*/
type ConfirmDelete struct {
	BaseViewModel

	Kind   string
	ID     string
	Label  string
	Token  string
	Action string
	Back   string
}
