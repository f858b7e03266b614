package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/mls"
	"github.com/nahid2887/padzzey-sub000/internal/responses"
)

// MLSSource is the part of the MLS client the handlers use.
type MLSSource interface {
	Search(ctx context.Context, q mls.Query) (*mls.Result, error)
	Get(ctx context.Context, mlsNumber string) (*mls.Listing, error)
	TextSearch(ctx context.Context, q string, page, perPage int) (*mls.Result, error)
	Featured(ctx context.Context, limit int) ([]mls.Listing, error)
	Nearby(ctx context.Context, lat, lon, radius float64, limit int) ([]mls.Listing, error)
}

type MLSHandler struct {
	source MLSSource
}

func NewMLSHandler(source MLSSource) *MLSHandler {
	return &MLSHandler{source: source}
}

func atoiOr(raw string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return n
	}
	return def
}

// Listings handles GET /api/v1/buyer/mls/listings
func (h *MLSHandler) Listings(c *gin.Context) {
	q := mls.Query{
		City:         c.Query("city"),
		State:        c.Query("state"),
		ZipCode:      c.Query("zip_code"),
		PropertyType: c.Query("property_type"),
		Page:         atoiOr(c.Query("page"), 1),
		PerPage:      atoiOr(c.Query("per_page"), defaultPerPage),
		All:          strings.EqualFold(c.Query("all"), "true"),
	}
	var err error
	if q.MinPrice, err = queryFloat(c, "min_price"); err != nil {
		badRequest(c, err, err.Error())
		return
	}
	if q.MaxPrice, err = queryFloat(c, "max_price"); err != nil {
		badRequest(c, err, err.Error())
		return
	}
	if q.Bedrooms, err = queryInt(c, "bedrooms"); err != nil {
		badRequest(c, err, err.Error())
		return
	}
	if q.Bathrooms, err = queryInt(c, "bathrooms"); err != nil {
		badRequest(c, err, err.Error())
		return
	}

	res, err := h.source.Search(c.Request.Context(), q)
	if err != nil {
		fail(c, err, "Failed to fetch MLS listings")
		return
	}
	responses.Success(c, http.StatusOK, res, "MLS listings retrieved successfully")
}

// Listing handles GET /api/v1/buyer/mls/listings/:mls_number
func (h *MLSHandler) Listing(c *gin.Context) {
	l, err := h.source.Get(c.Request.Context(), c.Param("mls_number"))
	if err != nil {
		fail(c, err, "Failed to fetch MLS listing")
		return
	}
	responses.Success(c, http.StatusOK, l, "MLS listing retrieved successfully")
}

// Search handles GET /api/v1/buyer/mls/search
func (h *MLSHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		badRequest(c, nil, "Search query parameter 'q' is required")
		return
	}
	res, err := h.source.TextSearch(c.Request.Context(), q, atoiOr(c.Query("page"), 1), atoiOr(c.Query("per_page"), defaultPerPage))
	if err != nil {
		fail(c, err, "Failed to search MLS listings")
		return
	}
	responses.Success(c, http.StatusOK, res, "MLS search completed successfully")
}

// Featured handles GET /api/v1/buyer/mls/featured
func (h *MLSHandler) Featured(c *gin.Context) {
	list, err := h.source.Featured(c.Request.Context(), atoiOr(c.Query("limit"), 10))
	if err != nil {
		fail(c, err, "Failed to fetch featured listings")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"count": len(list), "results": list}, "Featured listings retrieved successfully")
}

// Nearby handles GET /api/v1/buyer/mls/nearby
func (h *MLSHandler) Nearby(c *gin.Context) {
	if c.Query("latitude") == "" || c.Query("longitude") == "" {
		badRequest(c, nil, "latitude and longitude are required")
		return
	}
	lat, errLat := strconv.ParseFloat(c.Query("latitude"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("longitude"), 64)
	if errLat != nil || errLon != nil {
		badRequest(c, nil, "latitude and longitude must be numbers")
		return
	}
	radius := 10.0
	if raw := c.Query("radius"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			badRequest(c, err, "radius must be a number")
			return
		}
		radius = r
	}

	list, err := h.source.Nearby(c.Request.Context(), lat, lon, radius, atoiOr(c.Query("limit"), 20))
	if err != nil {
		fail(c, err, "Failed to fetch nearby listings")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{
		"count":        len(list),
		"radius_miles": radius,
		"results":      list,
	}, "Nearby listings retrieved successfully")
}
