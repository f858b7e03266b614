package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nahid2887/padzzey-sub000/internal/middlewares"
	"github.com/nahid2887/padzzey-sub000/internal/mls"
	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/responses"
	"github.com/nahid2887/padzzey-sub000/internal/services"
	"github.com/nahid2887/padzzey-sub000/internal/storage"
	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, mls.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInactiveAccount),
		errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrUnavailable), errors.Is(err, mls.ErrNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail writes err with its mapped status. Unclassified errors fall back to message.
func fail(c *gin.Context, err error, message string) {
	code := statusFor(err)
	switch {
	case errors.Is(err, mls.ErrNotConfigured):
		message = "MLS service is not configured"
	case errors.Is(err, mls.ErrNotFound):
		message = "Listing not found"
	default:
		message = services.Message(err, message)
	}
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	responses.Fail(c, code, err, message)
}

func badRequest(c *gin.Context, err error, message string) {
	responses.Fail(c, http.StatusBadRequest, err, message)
}

// currentUser returns what Authenticate stored for the request.
func currentUser(c *gin.Context) (models.Role, uuid.UUID) {
	role, _ := c.Get(middlewares.RoleKey)
	id, _ := c.Get(middlewares.UserIDKey)
	r, _ := role.(models.Role)
	uid, _ := id.(uuid.UUID)
	return r, uid
}

func currentClaims(c *gin.Context) *utils.Claims {
	v, _ := c.Get(middlewares.ClaimsKey)
	claims, _ := v.(*utils.Claims)
	return claims
}

// paramUUID parses a path parameter, replying 400 when it is not a uuid.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(c.Param(name))
	if err != nil {
		badRequest(c, err, fmt.Sprintf("Invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func pageOf(c *gin.Context) utils.Page {
	return utils.ParsePage(c.Query("page"), c.Query("per_page"), defaultPerPage, maxPerPage)
}

func queryFloat(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &f, nil
}

func queryInt(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &n, nil
}

func queryBool(c *gin.Context, name string) *bool {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	b := utils.Truthy(raw)
	return &b
}

func parseDate(raw, field string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	return utils.ParseDate(raw)
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := utils.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// uploads tracks multipart files opened for a request so they can be closed together.
type uploads struct {
	open []multipart.File
}

func (u *uploads) Close() {
	for _, f := range u.open {
		_ = f.Close()
	}
}

func (u *uploads) add(h *multipart.FileHeader) (storage.File, error) {
	f, err := h.Open()
	if err != nil {
		return storage.File{}, fmt.Errorf("open %s: %w", h.Filename, err)
	}
	u.open = append(u.open, f)
	return storage.File{Name: h.Filename, Size: h.Size, Content: f}, nil
}

// file returns the named upload, or nil when the field is absent.
func (u *uploads) file(c *gin.Context, field string) (*storage.File, error) {
	h, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f, err := u.add(h)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// files returns every upload under field, also accepting the "field[]" spelling.
func (u *uploads) files(c *gin.Context, field string) ([]storage.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	headers := append(form.File[field], form.File[field+"[]"]...)
	out := make([]storage.File, 0, len(headers))
	for _, h := range headers {
		f, err := u.add(h)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func paged(results any, total int64, p utils.Page) gin.H {
	return gin.H{
		"results":     results,
		"total":       total,
		"page":        p.Number,
		"per_page":    p.PerPage,
		"total_pages": p.TotalPages(total),
	}
}
