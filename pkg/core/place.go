package core

// Place represents a single restaurant (or other point of interest) as it
// flows through the search pipeline.
//
// Places are immutable once produced: a new search cycle builds new Place
// values rather than mutating the ones already published. The only field that
// is derived rather than fetched is IsFavorite, which is overlaid on every
// merge from the favorite store and never trusted from a cached copy.
//
// ID is the sole identity used for merging and deduplication. Every other
// field may legitimately differ between the cached and network copies of the
// "same" place because the cache may be stale.
type Place struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Rating     *float64 `json:"rating,omitempty"`
	PriceLevel *int     `json:"price_level,omitempty"`
	Location   Location `json:"location"`
	Address    string   `json:"address,omitempty"`
	PhotoRefs  []string `json:"photo_refs,omitempty"`
	IsFavorite bool     `json:"is_favorite"`
}

// Clone returns a deep copy of the place. Callers that hand places to
// multiple consumers should clone first so no consumer can mutate another's
// view.
func (p Place) Clone() Place {
	out := p
	if p.Rating != nil {
		r := *p.Rating
		out.Rating = &r
	}
	if p.PriceLevel != nil {
		l := *p.PriceLevel
		out.PriceLevel = &l
	}
	if p.PhotoRefs != nil {
		out.PhotoRefs = append([]string(nil), p.PhotoRefs...)
	}
	return out
}

// ClonePlaces deep-copies a slice of places.
func ClonePlaces(places []Place) []Place {
	if places == nil {
		return nil
	}
	out := make([]Place, len(places))
	for i, p := range places {
		out[i] = p.Clone()
	}
	return out
}

// Review is a single user review attached to a place detail record.
type Review struct {
	Author string  `json:"author"`
	Rating float64 `json:"rating"`
	Text   string  `json:"text"`
}

// PlaceDetail is the richer record returned by a details lookup. Details are
// fetched on demand for a single place and are never cached or paginated.
type PlaceDetail struct {
	Place
	Phone        string   `json:"phone,omitempty"`
	Website      string   `json:"website,omitempty"`
	OpeningHours []string `json:"opening_hours,omitempty"`
	Reviews      []Review `json:"reviews,omitempty"`
}
