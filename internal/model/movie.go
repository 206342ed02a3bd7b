package model

import "time"

// Movie is one member of the cohort, keyed by its metadata-catalog id.
type Movie struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	Revenue     int64      `json:"revenue"`
	VoteAverage float64    `json:"vote_average"`
	VoteCount   int        `json:"vote_count"`
	Overview    string     `json:"overview"`
}

// MoviePage is one page of a paginated discovery listing.
type MoviePage struct {
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
	Movies     []Movie `json:"movies"`
}

// CrossReference maps a primary movie id to its normalized foreign id.
type CrossReference struct {
	MovieID   int64  `json:"movie_id"`
	ForeignID string `json:"foreign_id"`
}

// Mismatch records a cross-reference whose titles disagree between catalogs.
// SecondaryTitle holds the normalized form that was compared.
type Mismatch struct {
	MovieID        int64  `json:"movie_id"`
	ForeignID      string `json:"foreign_id"`
	PrimaryTitle   string `json:"primary_title"`
	SecondaryTitle string `json:"secondary_title"`
}

// DatasetRow is one movie joined with every attribute collected for it.
// Pointer fields are nil when the attribute has not been ingested.
type DatasetRow struct {
	MovieID        int64      `json:"movie_id"`
	Title          string     `json:"title"`
	ReleaseDate    *time.Time `json:"release_date,omitempty"`
	Revenue        int64      `json:"revenue"`
	VoteAverage    float64    `json:"vote_average"`
	VoteCount      int        `json:"vote_count"`
	ForeignID      *string    `json:"foreign_id,omitempty"`
	Rating         *int       `json:"rating,omitempty"`
	Dubious        *bool      `json:"dubious,omitempty"`
	DirectorName   *string    `json:"director_name,omitempty"`
	DirectorGender *Gender    `json:"director_gender,omitempty"`
	ComposerName   *string    `json:"composer_name,omitempty"`
	ComposerGender *Gender    `json:"composer_gender,omitempty"`
}
