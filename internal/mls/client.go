// Package mls proxies the Paragon RESO OData feed.
package mls

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/nahid2887/padzzey-sub000/internal/config"
)

const (
	activeFilter   = "StandardStatus eq 'Active'"
	MaxPerPage     = 1000
	maxAllResults  = 10000
	nearbyFetchCap = 200
)

var (
	ErrNotConfigured = config.ErrParagonNotConfigured
	ErrNotFound      = errors.New("mls listing not found")
)

// Cache stores raw feed responses. RedisRepository implements it.
type Cache interface {
	CacheGet(ctx context.Context, key string) ([]byte, bool, error)
	CacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Query struct {
	City         string
	State        string
	ZipCode      string
	MinPrice     *float64
	MaxPrice     *float64
	Bedrooms     *int
	Bathrooms    *int
	PropertyType string
	Page         int
	PerPage      int
	All          bool
}

type Result struct {
	Results    []Listing `json:"results"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page"`
	TotalPages int       `json:"total_pages"`
	Source     string    `json:"source"`
}

type Client struct {
	baseURL string
	http    *http.Client
	cache   Cache
	ttl     time.Duration
	log     zerolog.Logger
}

// New builds a client. Without credentials every call fails with ErrNotConfigured.
func New(cfg config.ParagonConfig, cache Cache, log zerolog.Logger) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		cache:   cache,
		ttl:     cfg.CacheTTL,
		log:     log.With().Str("component", "mls").Logger(),
	}
	cc, err := config.ParagonOAuthConfig(cfg)
	if err != nil {
		c.log.Warn().Msg("paragon credentials not configured, MLS endpoints disabled")
		return c
	}
	// The token source caches the bearer token until it expires.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: cfg.Timeout})
	c.http = cc.Client(ctx)
	c.http.Timeout = cfg.Timeout
	return c
}

func (c *Client) Enabled() bool { return c.http != nil }

type page struct {
	Count *int64     `json:"@odata.count"`
	Value []property `json:"value"`
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (q Query) filter() string {
	parts := []string{activeFilter}
	if q.City != "" {
		parts = append(parts, fmt.Sprintf("contains(City,%s)", quote(q.City)))
	}
	if q.State != "" {
		parts = append(parts, "StateOrProvince eq "+quote(strings.ToUpper(q.State)))
	}
	if q.ZipCode != "" {
		parts = append(parts, "PostalCode eq "+quote(q.ZipCode))
	}
	if q.MinPrice != nil {
		parts = append(parts, "ListPrice ge "+num(*q.MinPrice))
	}
	if q.MaxPrice != nil {
		parts = append(parts, "ListPrice le "+num(*q.MaxPrice))
	}
	if q.Bedrooms != nil {
		parts = append(parts, "BedroomsTotal ge "+strconv.Itoa(*q.Bedrooms))
	}
	if q.Bathrooms != nil {
		parts = append(parts, "BathroomsTotalInteger ge "+strconv.Itoa(*q.Bathrooms))
	}
	if q.PropertyType != "" {
		parts = append(parts, "PropertyType eq "+quote(q.PropertyType))
	}
	return strings.Join(parts, " and ")
}

// matches re-applies the location filters the feed may treat loosely.
func (q Query) matches(l Listing) bool {
	if q.City != "" && !strings.Contains(strings.ToLower(l.City), strings.ToLower(q.City)) {
		return false
	}
	if q.State != "" && !strings.EqualFold(l.State, q.State) {
		return false
	}
	if q.ZipCode != "" && !strings.EqualFold(l.ZipCode, q.ZipCode) {
		return false
	}
	return true
}

// fetch runs one OData query against the Property resource, going through the cache.
func (c *Client) fetch(ctx context.Context, filter, orderBy string, top, skip int) (*page, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	params := url.Values{}
	params.Set("$top", strconv.Itoa(top))
	params.Set("$skip", strconv.Itoa(skip))
	params.Set("$count", "true")
	params.Set("$filter", filter)
	if orderBy != "" {
		params.Set("$orderby", orderBy)
	}
	params.Set("$expand", "Media")
	key := "mls:" + params.Encode()

	if c.cache != nil {
		if raw, ok, err := c.cache.CacheGet(ctx, key); err != nil {
			c.log.Warn().Err(err).Msg("mls cache read")
		} else if ok {
			var p page
			if err := json.Unmarshal(raw, &p); err == nil {
				return &p, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/Property?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build mls request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("mls request failed")
		return nil, fmt.Errorf("mls request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read mls response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Str("body", truncate(string(raw), 300)).Msg("mls request rejected")
		return nil, fmt.Errorf("mls responded with status %d", resp.StatusCode)
	}
	var p page
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode mls response: %w", err)
	}
	if c.cache != nil {
		if err := c.cache.CacheSet(ctx, key, raw, c.ttl); err != nil {
			c.log.Warn().Err(err).Msg("mls cache write")
		}
	}
	c.log.Debug().Str("filter", filter).Int("results", len(p.Value)).Msg("mls query")
	return &p, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func totalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(perPage)))
}

func convert(props []property, keep func(Listing) bool) []Listing {
	out := make([]Listing, 0, len(props))
	for _, p := range props {
		l := p.toListing()
		if keep == nil || keep(l) {
			out = append(out, l)
		}
	}
	return out
}

// Search pages through active listings matching q. All fetches every match.
func (c *Client) Search(ctx context.Context, q Query) (*Result, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 20
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	filter := q.filter()
	const orderBy = "ListPrice asc"

	if !q.All {
		p, err := c.fetch(ctx, filter, orderBy, q.PerPage, (q.Page-1)*q.PerPage)
		if err != nil {
			return nil, err
		}
		results := convert(p.Value, q.matches)
		if len(results) == len(p.Value) {
			total := int64(len(results))
			if p.Count != nil {
				total = *p.Count
			}
			return &Result{
				Results:    results,
				Total:      total,
				Page:       q.Page,
				PerPage:    q.PerPage,
				TotalPages: totalPages(total, q.PerPage),
				Source:     "paragon",
			}, nil
		}
		// The feed count includes rows the location check rejected, so page
		// over the filtered set instead.
		all, err := c.fetchAll(ctx, filter, orderBy, q.matches)
		if err != nil {
			return nil, err
		}
		return pageOf(all, q.Page, q.PerPage), nil
	}

	results, err := c.fetchAll(ctx, filter, orderBy, q.matches)
	if err != nil {
		return nil, err
	}
	return &Result{
		Results:    results,
		Total:      int64(len(results)),
		Page:       1,
		PerPage:    len(results),
		TotalPages: 1,
		Source:     "paragon",
	}, nil
}

// fetchAll walks the feed up to maxAllResults rows, keeping those keep accepts.
func (c *Client) fetchAll(ctx context.Context, filter, orderBy string, keep func(Listing) bool) ([]Listing, error) {
	results := []Listing{}
	for skip := 0; skip < maxAllResults; skip += MaxPerPage {
		p, err := c.fetch(ctx, filter, orderBy, MaxPerPage, skip)
		if err != nil {
			return nil, err
		}
		results = append(results, convert(p.Value, keep)...)
		if len(p.Value) < MaxPerPage {
			break
		}
	}
	return results, nil
}

func pageOf(all []Listing, pageNum, perPage int) *Result {
	total := int64(len(all))
	lo := min((pageNum-1)*perPage, len(all))
	hi := min(lo+perPage, len(all))
	return &Result{
		Results:    all[lo:hi],
		Total:      total,
		Page:       pageNum,
		PerPage:    perPage,
		TotalPages: totalPages(total, perPage),
		Source:     "paragon",
	}
}

// Get looks a listing up by ListingKey or ListingId.
func (c *Client) Get(ctx context.Context, mlsNumber string) (*Listing, error) {
	mlsNumber = strings.TrimSpace(mlsNumber)
	if mlsNumber == "" {
		return nil, ErrNotFound
	}
	filter := fmt.Sprintf("ListingKey eq %s or ListingId eq %s", quote(mlsNumber), quote(mlsNumber))
	p, err := c.fetch(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(p.Value) == 0 {
		return nil, ErrNotFound
	}
	l := p.Value[0].toListing()
	return &l, nil
}

// TextSearch matches q against the address, city, postal code and remarks.
func (c *Client) TextSearch(ctx context.Context, q string, pageNum, perPage int) (*Result, error) {
	q = strings.TrimSpace(q)
	if pageNum < 1 {
		pageNum = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	term := quote(q)
	filter := fmt.Sprintf("%s and (contains(UnparsedAddress,%s) or contains(City,%s) or contains(PostalCode,%s) or contains(PublicRemarks,%s))",
		activeFilter, term, term, term, term)
	p, err := c.fetch(ctx, filter, "ListPrice asc", perPage, (pageNum-1)*perPage)
	if err != nil {
		return nil, err
	}
	results := convert(p.Value, nil)
	total := int64(len(results))
	if p.Count != nil {
		total = *p.Count
	}
	return &Result{
		Results:    results,
		Total:      total,
		Page:       pageNum,
		PerPage:    perPage,
		TotalPages: totalPages(total, perPage),
		Source:     "paragon",
	}, nil
}

// Featured returns the highest priced active listings.
func (c *Client) Featured(ctx context.Context, limit int) ([]Listing, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	p, err := c.fetch(ctx, activeFilter, "ListPrice desc", limit, 0)
	if err != nil {
		return nil, err
	}
	return convert(p.Value, nil), nil
}

// Nearby returns active listings within radius miles of the point, closest first.
// The feed is queried with a bounding box and distances are computed here.
func (c *Client) Nearby(ctx context.Context, lat, lon, radius float64, limit int) ([]Listing, error) {
	if radius <= 0 {
		radius = 10
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	dLat := radius / 69.0
	dLon := radius / (69.0 * math.Max(math.Cos(lat*math.Pi/180), 0.01))
	filter := fmt.Sprintf("%s and Latitude ge %s and Latitude le %s and Longitude ge %s and Longitude le %s",
		activeFilter, num(lat-dLat), num(lat+dLat), num(lon-dLon), num(lon+dLon))

	p, err := c.fetch(ctx, filter, "", nearbyFetchCap, 0)
	if err != nil {
		return nil, err
	}
	var out []Listing
	for _, prop := range p.Value {
		l := prop.toListing()
		if l.Latitude == nil || l.Longitude == nil {
			continue
		}
		d := haversine(lat, lon, *l.Latitude, *l.Longitude)
		if d > radius {
			continue
		}
		d = math.Round(d*100) / 100
		l.DistanceMiles = &d
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].DistanceMiles < *out[j].DistanceMiles })
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []Listing{}
	}
	return out, nil
}
