package tmdb

// DiscoverRequest selects one page of the discover listing.
type DiscoverRequest struct {
	Year   int    // primary_release_year
	SortBy string // e.g. "revenue.desc"
	Page   int    // 1-based
}

// DiscoverResponse is the payload of GET /discover/movie.
type DiscoverResponse struct {
	Page         int           `json:"page"`
	Results      []MovieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// MovieResult is one entry of a discover listing.
type MovieResult struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	Revenue     int64   `json:"revenue"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
}

// MovieDetails is the payload of GET /movie/{id}.
type MovieDetails struct {
	ID          int64   `json:"id"`
	IMDbID      string  `json:"imdb_id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	Revenue     int64   `json:"revenue"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
}

// Credits is the payload of GET /movie/{id}/credits.
type Credits struct {
	ID   int64        `json:"id"`
	Crew []CrewMember `json:"crew"`
}

// CrewMember is one crew credit. Gender is nil when the catalog omits it.
type CrewMember struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
	Gender     *int   `json:"gender"`
}
