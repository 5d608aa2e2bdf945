package models

import "fmt"

var (
	ErrPhotoNotFound = fmt.Errorf("photo not found")
)

type Photo struct {
	BaseModel

	PublicationID string `db:"publication_id" json:"publicationId"`
	ImageURL      string `db:"image_url" json:"imageUrl"`
	Alt           string `db:"alt" json:"alt"`
	DisplayOrder  int    `db:"display_order" json:"displayOrder"`
}
