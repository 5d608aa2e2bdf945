package models

import "fmt"

var (
	ErrPublicationNotFound = fmt.Errorf("publication not found")
)

/*
Publication is a named photo series. It exclusively owns its photos.
*/
type Publication struct {
	BaseModel

	Num          string  `db:"num" json:"num"`
	Title        string  `db:"title" json:"title"`
	Year         string  `db:"year" json:"year"`
	Essay        string  `db:"essay" json:"essay"`
	DisplayOrder int     `db:"display_order" json:"displayOrder"`
	Visible      bool    `db:"visible" json:"visible"`
	Photos       []Photo `db:"-" json:"photos"`
}
