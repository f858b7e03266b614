package mls

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahid2887/padzzey-sub000/internal/config"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (m *memoryCache) CacheGet(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) CacheSet(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

type fakeParagon struct {
	srv        *httptest.Server
	tokenCalls atomic.Int32
	queryCalls atomic.Int32
	mu         sync.Mutex
	queries    []url.Values
	properties []map[string]any
}

func newFakeParagon(t *testing.T, props []map[string]any) *fakeParagon {
	t.Helper()
	f := &fakeParagon{properties: props}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/odata/Property", func(w http.ResponseWriter, r *http.Request) {
		f.queryCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		f.queries = append(f.queries, r.URL.Query())
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"@odata.count": len(f.properties),
			"value":        f.properties,
		})
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeParagon) query() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return nil
	}
	return f.queries[len(f.queries)-1]
}

func (f *fakeParagon) firstQuery() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return nil
	}
	return f.queries[0]
}

func (f *fakeParagon) client(cache Cache) *Client {
	return New(config.ParagonConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     f.srv.URL + "/token",
		APIURL:       f.srv.URL + "/odata",
		Scope:        "OData",
		CacheTTL:     time.Minute,
		Timeout:      5 * time.Second,
	}, cache, zerolog.Nop())
}

func sampleProperties() []map[string]any {
	return []map[string]any{
		{
			"ListingKey": "PM-1", "ListingId": "4901", "ListPrice": 450000.0,
			"StreetNumber": "12", "StreetName": "Elm", "StreetSuffix": "St",
			"City": "Manchester", "StateOrProvince": "NH", "PostalCode": "03101",
			"BedroomsTotal": 3, "BathroomsTotalInteger": 2, "LivingArea": 1850.4,
			"PropertyType": "Residential", "StandardStatus": "Active",
			"PublicRemarks": "Sunny colonial", "Latitude": 42.9956, "Longitude": -71.4548,
			"YearBuilt": 1998, "ListingContractDate": "2026-09-01",
			"Media": []map[string]any{{"MediaURL": "https://img/2.jpg", "Order": 2}, {"MediaURL": "https://img/1.jpg", "Order": 1}},
		},
		{
			"ListingKey": "PM-2", "ListPrice": 300000.0, "UnparsedAddress": "5 Oak Ave",
			"City": "Nashua", "StateOrProvince": "NH", "PostalCode": "03060",
			"StandardStatus": "Active", "Latitude": 42.7654, "Longitude": -71.4676,
		},
	}
}

func TestClientWithoutCredentials(t *testing.T) {
	c := New(config.ParagonConfig{}, nil, zerolog.Nop())
	assert.False(t, c.Enabled())

	_, err := c.Search(context.Background(), Query{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.Get(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSearchBuildsODataQueryAndMaps(t *testing.T) {
	f := newFakeParagon(t, sampleProperties())
	c := f.client(nil)

	minPrice := 100000.0
	beds := 2
	res, err := c.Search(context.Background(), Query{
		City: "manch", State: "nh", MinPrice: &minPrice, Bedrooms: &beds, Page: 1, PerPage: 10,
	})
	require.NoError(t, err)

	q := f.firstQuery()
	assert.Equal(t, "10", q["$top"][0])
	assert.Equal(t, "0", q["$skip"][0])
	assert.Equal(t, "true", q["$count"][0])
	assert.Equal(t, "ListPrice asc", q["$orderby"][0])
	filter := q["$filter"][0]
	assert.True(t, strings.HasPrefix(filter, "StandardStatus eq 'Active'"))
	assert.Contains(t, filter, "contains(City,'manch')")
	assert.Contains(t, filter, "StateOrProvince eq 'NH'")
	assert.Contains(t, filter, "ListPrice ge 100000")
	assert.Contains(t, filter, "BedroomsTotal ge 2")

	// Nashua is dropped by the client-side city check.
	require.Len(t, res.Results, 1)
	l := res.Results[0]
	assert.Equal(t, "PM-1", l.MLSNumber)
	assert.Equal(t, "12 Elm St", l.Address)
	assert.Equal(t, "12 Elm St, Manchester", l.Title)
	assert.Equal(t, 450000.0, l.Price)
	require.NotNil(t, l.SquareFeet)
	assert.Equal(t, 1850, *l.SquareFeet)
	assert.Equal(t, []string{"https://img/1.jpg", "https://img/2.jpg"}, l.Photos)
	assert.Equal(t, "https://img/1.jpg", l.PhotoURL)
	assert.Equal(t, "paragon", l.Source)
	assert.Equal(t, 1, res.Page)
}

func TestSearchTotalCountsOnlyKeptRows(t *testing.T) {
	f := newFakeParagon(t, sampleProperties())
	c := f.client(nil)

	// The feed reports two rows but only Manchester survives the city check.
	res, err := c.Search(context.Background(), Query{City: "manch", Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, int64(1), res.Total)
	assert.Equal(t, 1, res.TotalPages)
	assert.Equal(t, "0", f.query()["$skip"][0])
	assert.Equal(t, "1000", f.query()["$top"][0])

	res, err = c.Search(context.Background(), Query{City: "manch", Page: 2, PerPage: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.Equal(t, int64(1), res.Total)
	assert.Equal(t, 2, res.Page)

	// Nothing rejected, so the feed count stands. The fake ignores $top.
	res, err = c.Search(context.Background(), Query{State: "NH", Page: 1, PerPage: 1})
	require.NoError(t, err)
	assert.Len(t, res.Results, 2)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, 2, res.TotalPages)
}

func TestSearchCachesResponses(t *testing.T) {
	f := newFakeParagon(t, sampleProperties())
	c := f.client(newMemoryCache())

	_, err := c.Search(context.Background(), Query{})
	require.NoError(t, err)
	_, err = c.Search(context.Background(), Query{})
	require.NoError(t, err)

	assert.Equal(t, int32(1), f.queryCalls.Load())
	assert.Equal(t, int32(1), f.tokenCalls.Load())
}

func TestQuoteEscapesSingleQuotes(t *testing.T) {
	assert.Equal(t, "'O''Neil'", quote("O'Neil"))
}

func TestGet(t *testing.T) {
	f := newFakeParagon(t, sampleProperties()[:1])
	c := f.client(nil)

	l, err := c.Get(context.Background(), "PM-1")
	require.NoError(t, err)
	assert.Equal(t, "PM-1", l.MLSNumber)
	assert.Equal(t, "ListingKey eq 'PM-1' or ListingId eq 'PM-1'", f.query()["$filter"][0])

	empty := newFakeParagon(t, nil)
	_, err = empty.client(nil).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFeaturedOrdersByPriceDesc(t *testing.T) {
	f := newFakeParagon(t, sampleProperties())
	out, err := f.client(nil).Featured(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, "ListPrice desc", f.query()["$orderby"][0])
	assert.Equal(t, "5", f.query()["$top"][0])
}

func TestTextSearch(t *testing.T) {
	f := newFakeParagon(t, sampleProperties())
	res, err := f.client(nil).TextSearch(context.Background(), "elm", 1, 20)
	require.NoError(t, err)
	assert.Len(t, res.Results, 2)
	assert.Contains(t, f.query()["$filter"][0], "contains(UnparsedAddress,'elm')")
}

func TestNearbySortsByDistanceWithinRadius(t *testing.T) {
	f := newFakeParagon(t, sampleProperties())
	// Manchester city hall; Nashua is about 16 miles away.
	out, err := f.client(nil).Nearby(context.Background(), 42.9912, -71.4634, 5, 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "PM-1", out[0].MLSNumber)
	require.NotNil(t, out[0].DistanceMiles)
	assert.Less(t, *out[0].DistanceMiles, 1.0)

	out, err = f.client(nil).Nearby(context.Background(), 42.9912, -71.4634, 25, 10)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "PM-2", out[1].MLSNumber)
	assert.Contains(t, f.query()["$filter"][0], "Latitude ge")
}

func TestHaversine(t *testing.T) {
	assert.InDelta(t, 0, haversine(40, -70, 40, -70), 1e-9)
	// One degree of latitude is about 69 miles.
	assert.InDelta(t, 69.1, haversine(40, -70, 41, -70), 0.2)
}
