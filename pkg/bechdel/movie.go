package bechdel

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"
)

// Movie is the getMovieByImdbId payload. The API encodes numbers and flags as
// strings, so decoding accepts either form. Rating is nil when absent or null.
type Movie struct {
	ID          int
	IMDbID      string
	Title       string
	Year        int
	Rating      *int
	Dubious     bool
	Status      int
	Description string
}

type rawMovie struct {
	ID          json.RawMessage `json:"id"`
	IMDbID      string          `json:"imdbid"`
	Title       string          `json:"title"`
	Year        json.RawMessage `json:"year"`
	Rating      json.RawMessage `json:"rating"`
	Dubious     json.RawMessage `json:"dubious"`
	Status      json.RawMessage `json:"status"`
	Description string          `json:"description"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Movie) UnmarshalJSON(data []byte) error {
	var raw rawMovie
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := flexInt(raw.ID)
	if err != nil {
		return eris.Wrap(err, "bechdel: decode id")
	}
	year, err := flexInt(raw.Year)
	if err != nil {
		return eris.Wrap(err, "bechdel: decode year")
	}
	rating, err := flexInt(raw.Rating)
	if err != nil {
		return eris.Wrap(err, "bechdel: decode rating")
	}
	dubious, err := flexBool(raw.Dubious)
	if err != nil {
		return eris.Wrap(err, "bechdel: decode dubious")
	}
	status, err := flexInt(raw.Status)
	if err != nil {
		return eris.Wrap(err, "bechdel: decode status")
	}

	*m = Movie{
		IMDbID:      raw.IMDbID,
		Title:       raw.Title,
		Rating:      rating,
		Dubious:     dubious,
		Description: raw.Description,
	}
	if id != nil {
		m.ID = *id
	}
	if year != nil {
		m.Year = *year
	}
	if status != nil {
		m.Status = *status
	}
	return nil
}

// flexInt decodes a JSON number or numeric string. Null, missing and "" are nil.
func flexInt(raw json.RawMessage) (*int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid integer %s", string(raw))
	}
	return &n, nil
}

// flexBool decodes a JSON bool, 0/1, or "0"/"1". Null and missing are false.
func flexBool(raw json.RawMessage) (bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	n, err := flexInt(raw)
	if err != nil {
		return false, err
	}
	return n != nil && *n != 0, nil
}
