package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

// Tables lists every model in dependency order.
func Tables() []any {
	return []any{
		&models.Agent{},
		&models.Seller{},
		&models.Buyer{},
		&models.Superadmin{},
		&models.PrivacySettings{},
		&models.TermsAcceptance{},
		&models.SellingRequest{},
		&models.PropertyDocument{},
		&models.DocumentFile{},
		&models.PropertyListing{},
		&models.ListingPhoto{},
		&models.ListingDocument{},
		&models.ShowingSchedule{},
		&models.ShowingAgreement{},
		&models.AgentNotification{},
		&models.SellerNotification{},
		&models.BuyerNotification{},
		&models.SavedListing{},
		&models.BuyerDocument{},
		&models.PasswordResetToken{},
		&models.LegalDocument{},
		&models.PlatformDocument{},
		&models.Conversation{},
		&models.Message{},
	}
}

// Constraints the struct tags cannot express. Partial indexes work on both
// Postgres and SQLite.
var constraints = []string{
	createOneActiveLegalDocument,
	createNotificationDedupIndex,
}

const createOneActiveLegalDocument = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_legal_documents_one_active
  ON legal_documents (audience, document_type)
  WHERE is_active
`

const createNotificationDedupIndex = `
CREATE INDEX IF NOT EXISTS idx_agent_notifications_request_type
  ON agent_notifications (recipient_id, selling_request_id, notification_type)
`

// Migrate creates or updates every table and then applies the extra constraints.
func Migrate(db *gorm.DB, log zerolog.Logger) error {
	tables := Tables()
	for i, table := range tables {
		if err := db.AutoMigrate(table); err != nil {
			return fmt.Errorf("migration %d/%d (%T) failed: %w", i+1, len(tables), table, err)
		}
	}

	for i, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("constraint %d failed: %w", i+1, err)
		}
	}

	log.Info().Int("tables", len(tables)).Msg("all migrations completed successfully")
	return nil
}
