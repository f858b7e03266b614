// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nahid2887/padzzey-sub000/internal/database"
	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

const Password = "s3cret-pass"

// NewDB opens a migrated SQLite database in the test's temp dir.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, zerolog.Nop()))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func NewStore(t *testing.T) *repositories.Store {
	t.Helper()
	return repositories.NewStore(NewDB(t))
}

var (
	hashOnce sync.Once
	hash     string
)

// passwordHash is computed once; argon2 is slow enough to matter across many fixtures.
func passwordHash(t *testing.T) string {
	hashOnce.Do(func() {
		h, err := utils.HashPassword(Password)
		require.NoError(t, err)
		hash = h
	})
	return hash
}

func account(t *testing.T, username string) models.Account {
	return models.Account{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: passwordHash(t),
		FirstName:    "Test",
		LastName:     username,
		IsActive:     true,
	}
}

func create(t *testing.T, store *repositories.Store, p models.Principal) {
	t.Helper()
	require.NoError(t, store.Accounts.Create(context.Background(), p))
}

func Agent(t *testing.T, store *repositories.Store, username string) *models.Agent {
	t.Helper()
	a := &models.Agent{Account: account(t, username), Availability: models.AvailabilityFullTime}
	create(t, store, a)
	return a
}

func Seller(t *testing.T, store *repositories.Store, username string) *models.Seller {
	t.Helper()
	s := &models.Seller{Account: account(t, username)}
	create(t, store, s)
	return s
}

func Buyer(t *testing.T, store *repositories.Store, username string) *models.Buyer {
	t.Helper()
	b := &models.Buyer{Account: account(t, username)}
	create(t, store, b)
	return b
}

func Superadmin(t *testing.T, store *repositories.Store, username string) *models.Superadmin {
	t.Helper()
	s := &models.Superadmin{Account: account(t, username)}
	create(t, store, s)
	return s
}

// Listing inserts a listing owned by agentID with the given status.
func Listing(t *testing.T, store *repositories.Store, agentID uuid.UUID, status models.ListingStatus) *models.PropertyListing {
	t.Helper()
	l := &models.PropertyListing{
		AgentID:       agentID,
		Title:         "Maple Street House",
		StreetAddress: "12 Maple St",
		City:          "Concord",
		State:         "NH",
		ZipCode:       "03301",
		PropertyType:  models.PropertyHouse,
		Price:         350000,
	}
	l.SetStatus(status, time.Now())
	require.NoError(t, store.Listings.Create(context.Background(), l))
	return l
}

// SellingRequest inserts a request from sellerID assigned to agentID.
func SellingRequest(t *testing.T, store *repositories.Store, sellerID, agentID uuid.UUID, status models.SellingRequestStatus) *models.SellingRequest {
	t.Helper()
	start := utils.Today(time.Now())
	r := &models.SellingRequest{
		SellerID:     sellerID,
		AgentID:      &agentID,
		ContactName:  "Sam Seller",
		ContactEmail: "sam@example.com",
		ContactPhone: "555-0100",
		AskingPrice:  400000,
		StartDate:    start,
		EndDate:      start.AddDate(0, 1, 0),
		Status:       status,
	}
	require.NoError(t, store.SellingRequests.Create(context.Background(), r))
	return r
}

// Push is one notification delivered to a RecordingPusher.
type Push struct {
	Role         models.Role
	RecipientID  uuid.UUID
	Notification *models.Notification
}

// RecordingPusher remembers every pushed notification.
type RecordingPusher struct {
	mu     sync.Mutex
	pushes []Push
}

func (r *RecordingPusher) PushNotification(role models.Role, recipientID uuid.UUID, n *models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushes = append(r.pushes, Push{Role: role, RecipientID: recipientID, Notification: n})
}

func (r *RecordingPusher) Pushes() []Push {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Push(nil), r.pushes...)
}

// For returns the notifications pushed to one recipient.
func (r *RecordingPusher) For(role models.Role, id uuid.UUID) []*models.Notification {
	var out []*models.Notification
	for _, p := range r.Pushes() {
		if p.Role == role && p.RecipientID == id {
			out = append(out, p.Notification)
		}
	}
	return out
}

// MemoryBlacklist is an in-process token blacklist.
type MemoryBlacklist struct {
	mu   sync.Mutex
	jtis map[string]time.Duration
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{jtis: map[string]time.Duration{}}
}

func (m *MemoryBlacklist) Blacklist(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jtis[jti] = ttl
	return nil
}

func (m *MemoryBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jtis[jti]; ok || ttl <= 0 {
		return false, nil
	}
	m.jtis[jti] = ttl
	return true, nil
}

func (m *MemoryBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jtis[jti]
	return ok, nil
}

func (m *MemoryBlacklist) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jtis)
}
