package repositories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Store bundles the gorm repositories so a workflow can run them inside one transaction.
type Store struct {
	db *gorm.DB

	Accounts          *AccountRepository
	Preferences       *PreferencesRepository
	SellingRequests   *SellingRequestRepository
	Documents         *PropertyDocumentRepository
	Listings          *ListingRepository
	Showings          *ShowingRepository
	Notifications     *NotificationRepository
	SavedListings     *SavedListingRepository
	BuyerDocuments    *BuyerDocumentRepository
	ResetTokens       *PasswordResetRepository
	LegalDocuments    *LegalDocumentRepository
	PlatformDocuments *PlatformDocumentRepository
	Conversations     *ConversationRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:                db,
		Accounts:          NewAccountRepository(db),
		Preferences:       NewPreferencesRepository(db),
		SellingRequests:   NewSellingRequestRepository(db),
		Documents:         NewPropertyDocumentRepository(db),
		Listings:          NewListingRepository(db),
		Showings:          NewShowingRepository(db),
		Notifications:     NewNotificationRepository(db),
		SavedListings:     NewSavedListingRepository(db),
		BuyerDocuments:    NewBuyerDocumentRepository(db),
		ResetTokens:       NewPasswordResetRepository(db),
		LegalDocuments:    NewLegalDocumentRepository(db),
		PlatformDocuments: NewPlatformDocumentRepository(db),
		Conversations:     NewConversationRepository(db),
	}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn with a Store bound to a single database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// findOne runs q into dest and maps a missing row to nil, nil.
func findOne[T any](q *gorm.DB, dest *T) (*T, error) {
	if err := q.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dest, nil
}

func paginate(offset, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if offset > 0 {
			db = db.Offset(offset)
		}
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	}
}

// IsDuplicate reports whether err is a unique constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern matches s literally anywhere in a column. Use it with likeClause.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// likeClause is "expr LIKE ? ESCAPE '\'" for a containsPattern argument.
func likeClause(expr string) string {
	return expr + ` LIKE ? ESCAPE '\'`
}
