// Package places is the client for the external place-search oracle
// (Google Places Text Search). Results are normalized into PlaceEntry and
// cached briefly so repeated keyword searches during one recommendation
// pass don't burn quota. Every failure degrades to an empty result set.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"tripchat/models"

	gocache "github.com/patrickmn/go-cache"
)

const textSearchURL = "https://maps.googleapis.com/maps/api/place/textsearch/json"

// Searcher is the search-oracle contract consumed by the recommendation
// pipeline and the workflow; tests substitute fakes.
type Searcher interface {
	Search(ctx context.Context, query, city string) ([]models.PlaceEntry, error)
}

type Client struct {
	apiKey   string
	language string
	region   string
	http     *http.Client
	cache    *gocache.Cache
}

func NewClient() *Client {
	return &Client{
		apiKey:   os.Getenv("GOOGLE_API_KEY"),
		language: "zh-TW",
		region:   "tw",
		http:     &http.Client{Timeout: 10 * time.Second},
		cache:    gocache.New(10*time.Minute, 20*time.Minute),
	}
}

type textSearchResponse struct {
	Status       string             `json:"status"`
	ErrorMessage string             `json:"error_message"`
	Results      []textSearchResult `json:"results"`
}

type textSearchResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Vicinity         string   `json:"vicinity"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	Types            []string `json:"types"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

// Search runs a text search scoped to a city. The city prefix mirrors how
// the recommendation keywords are meant to be resolved ("Taipei museum").
// Best effort: network, quota and parse failures all return an empty slice.
func (c *Client) Search(ctx context.Context, query, city string) ([]models.PlaceEntry, error) {
	q := query
	if city != "" {
		q = city + " " + query
	}

	if cached, ok := c.cache.Get(q); ok {
		return cached.([]models.PlaceEntry), nil
	}

	params := url.Values{}
	params.Set("query", q)
	params.Set("key", c.apiKey)
	params.Set("language", c.language)
	params.Set("region", c.region)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, textSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("place search request failed: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()

	var body textSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("place search decode failed: %v", err)
		return nil, nil
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		c.cache.Set(q, []models.PlaceEntry{}, gocache.DefaultExpiration)
		return nil, nil
	default:
		log.Printf("place search status %s: %s", body.Status, body.ErrorMessage)
		return nil, nil
	}

	out := make([]models.PlaceEntry, 0, len(body.Results))
	for _, r := range body.Results {
		out = append(out, asPlace(r))
	}
	c.cache.Set(q, out, gocache.DefaultExpiration)
	return out, nil
}

// asPlace converts a raw search result into the internal PlaceEntry shape.
func asPlace(r textSearchResult) models.PlaceEntry {
	addr := r.FormattedAddress
	if addr == "" {
		addr = r.Vicinity
	}
	return models.PlaceEntry{
		PlaceID: r.PlaceID,
		Name:    r.Name,
		Address: addr,
		Lat:     r.Geometry.Location.Lat,
		Lng:     r.Geometry.Location.Lng,
		Rating:  r.Rating,
		Reviews: r.UserRatingsTotal,
		Types:   r.Types,
		MapURL:  MapURL(r.Name, r.PlaceID),
		Source:  "gm_search",
	}
}

// MapURL builds a Google Maps deep link for a named place.
func MapURL(name, placeID string) string {
	if name == "" || placeID == "" {
		return ""
	}
	v := url.Values{}
	v.Set("api", "1")
	v.Set("query", name)
	v.Set("query_place_id", placeID)
	return fmt.Sprintf("https://www.google.com/maps/search/?%s", v.Encode())
}
