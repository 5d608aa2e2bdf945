package models

import (
	"fmt"
	"strings"

	"github.com/adampresley/adamgokit/slices"
	"github.com/rikkicasupanan/portfolio/pkg/models"
)

/*
ThumbnailURLFunc maps a stored photo URL to its thumbnail URL. It returns
the original URL when the photo has no stored thumbnail.
*/
type ThumbnailURLFunc func(imageURL string) string

type GallerySection struct {
	Anchor          string
	Num             string
	Title           string
	Year            string
	EssayParagraphs []string
	Photos          []GalleryPhoto
}

type GalleryPhoto struct {
	URL          string
	ThumbnailURL string
	Alt          string
}

/*
NewGallerySections converts visible publications into page sections in
the order they were read. The anchor is what the table of contents links
to.
*/
func NewGallerySections(publications []*models.Publication, thumbnailURL ThumbnailURLFunc) []GallerySection {
	return slices.Map(publications, func(publication *models.Publication, index int) GallerySection {
		return GallerySection{
			Anchor:          fmt.Sprintf("series-%s", publication.ID),
			Num:             publication.Num,
			Title:           publication.Title,
			Year:            publication.Year,
			EssayParagraphs: splitParagraphs(publication.Essay),
			Photos: slices.Map(publication.Photos, func(photo models.Photo, index int) GalleryPhoto {
				return GalleryPhoto{
					URL:          photo.ImageURL,
					ThumbnailURL: thumbnailURL(photo.ImageURL),
					Alt:          altOrTitle(photo.Alt, publication.Title),
				}
			}),
		}
	})
}

func splitParagraphs(essay string) []string {
	result := []string{}

	for _, paragraph := range strings.Split(strings.ReplaceAll(essay, "\r\n", "\n"), "\n\n") {
		if trimmed := strings.TrimSpace(paragraph); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func altOrTitle(alt, title string) string {
	if alt != "" {
		return alt
	}

	return title
}
