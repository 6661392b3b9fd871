package tmdb

type searchResponse struct {
	Page         int          `json:"page"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
	Results      []movieEntry `json:"results"`
}

type movieEntry struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	GenreIDs    []int   `json:"genre_ids"`
}

func (m movieEntry) toResult() MovieResult {
	genres := m.GenreIDs
	if genres == nil {
		genres = []int{}
	}
	return MovieResult{
		TMDBID:      m.ID,
		Title:       m.Title,
		Overview:    m.Overview,
		PosterPath:  m.PosterPath,
		ReleaseDate: m.ReleaseDate,
		Rating:      m.VoteAverage,
		GenreIDs:    genres,
	}
}

type detailsResponse struct {
	movieEntry
	Genres []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

func (d detailsResponse) toResult() MovieResult {
	r := d.movieEntry.toResult()
	if len(r.GenreIDs) == 0 {
		for _, g := range d.Genres {
			r.GenreIDs = append(r.GenreIDs, g.ID)
		}
	}
	return r
}

type videosResponse struct {
	ID      int64   `json:"id"`
	Results []Video `json:"results"`
}
