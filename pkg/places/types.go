package places

import "github.com/rubiojr/lunchbox/pkg/core"

// Upstream payload status codes. Only statusOK and statusZeroResults are
// success; statusOverQueryLimit is transient (retried), everything else is a
// hard failure.
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
	statusRequestDenied  = "REQUEST_DENIED"
)

// searchResponse is the wire shape of a nearby or text search payload.
type searchResponse struct {
	Results       []placeResult `json:"results"`
	NextPageToken string        `json:"next_page_token"`
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message"`
}

// detailsResponse is the wire shape of a place details payload.
type detailsResponse struct {
	Result       detailResult `json:"result"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Rating           *float64 `json:"rating,omitempty"`
	PriceLevel       *int     `json:"price_level,omitempty"`
	Geometry         geometry `json:"geometry"`
	Vicinity         string   `json:"vicinity,omitempty"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	Photos           []photo  `json:"photos,omitempty"`
}

type detailResult struct {
	placeResult
	FormattedPhoneNumber string        `json:"formatted_phone_number,omitempty"`
	Website              string        `json:"website,omitempty"`
	OpeningHours         *openingHours `json:"opening_hours,omitempty"`
	Reviews              []review      `json:"reviews,omitempty"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type photo struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

type openingHours struct {
	OpenNow     bool     `json:"open_now"`
	WeekdayText []string `json:"weekday_text,omitempty"`
}

type review struct {
	AuthorName string  `json:"author_name"`
	Rating     float64 `json:"rating"`
	Text       string  `json:"text"`
}

func (r placeResult) toPlace() core.Place {
	p := core.Place{
		ID:         r.PlaceID,
		Name:       r.Name,
		Rating:     r.Rating,
		PriceLevel: r.PriceLevel,
		Location:   core.Location{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		Address:    r.FormattedAddress,
	}
	if p.Address == "" {
		p.Address = r.Vicinity
	}
	for _, ph := range r.Photos {
		p.PhotoRefs = append(p.PhotoRefs, ph.PhotoReference)
	}
	return p
}

func (r detailResult) toDetail() *core.PlaceDetail {
	d := &core.PlaceDetail{
		Place:   r.placeResult.toPlace(),
		Phone:   r.FormattedPhoneNumber,
		Website: r.Website,
	}
	if r.OpeningHours != nil {
		d.OpeningHours = append(d.OpeningHours, r.OpeningHours.WeekdayText...)
	}
	for _, rv := range r.Reviews {
		d.Reviews = append(d.Reviews, core.Review{
			Author: rv.AuthorName,
			Rating: rv.Rating,
			Text:   rv.Text,
		})
	}
	return d
}

func toPlaces(results []placeResult) []core.Place {
	if len(results) == 0 {
		return nil
	}
	places := make([]core.Place, 0, len(results))
	for _, r := range results {
		places = append(places, r.toPlace())
	}
	return places
}
