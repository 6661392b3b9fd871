package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MovieStatus string

const (
	MovieStatusWishlist   MovieStatus = "wishlist"
	MovieStatusDownloaded MovieStatus = "downloaded"
)

func (s MovieStatus) IsValid() bool {
	return s == MovieStatusWishlist || s == MovieStatusDownloaded
}

type Movie struct {
	ID          string                   `json:"id" gorm:"primaryKey;size:36"`
	Title       string                   `json:"title" gorm:"not null;size:255"`
	TitleKey    string                   `json:"-" gorm:"not null;size:255;uniqueIndex"`
	Status      MovieStatus              `json:"status" gorm:"not null;size:20;default:wishlist;index"`
	Rating      float64                  `json:"rating"`
	Overview    string                   `json:"overview" gorm:"type:text"`
	PosterPath  string                   `json:"poster_path" gorm:"size:255"`
	ReleaseDate string                   `json:"release_date" gorm:"size:10"`
	TMDBID      *int64                   `json:"tmdb_id" gorm:"index"`
	GenreIDs    datatypes.JSONSlice[int] `json:"genre_ids"`
	KidsLiked   bool                     `json:"kidsLiked" gorm:"not null;default:false"`
	CreatedAt   time.Time                `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

func (Movie) TableName() string {
	return "movies"
}

func (m *Movie) BeforeCreate(tx *gorm.DB) error {
	m.ID = newID(m.ID)
	return nil
}
