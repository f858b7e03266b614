package models

import (
	"time"

	"github.com/google/uuid"
)

// PrivacySettings records a user's data collection and sharing consents.
type PrivacySettings struct {
	Base
	OwnerRole Role      `gorm:"type:varchar(20);not null;uniqueIndex:idx_privacy_owner" json:"owner_role"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_privacy_owner" json:"owner_id"`

	CollectBasicInfo    bool `json:"collect_basic_info"`
	CollectActivityLogs bool `json:"collect_activity_logs"`
	CollectChatMessages bool `json:"collect_chat_messages"`
	CollectDocuments    bool `json:"collect_documents"`
	CollectOptionalInfo bool `json:"collect_optional_info"`

	UseForServices   bool `json:"use_for_services"`
	UseForAlerts     bool `json:"use_for_alerts"`
	UseForCompliance bool `json:"use_for_compliance"`

	ShareWithPartners bool `json:"share_with_partners"`

	AllowMultiFactorAuth   bool `json:"allow_multi_factor_auth"`
	EncryptedCommunication bool `json:"encrypted_communication"`

	DataRetentionMonths int  `json:"data_retention_months"`
	AllowDataDeletion   bool `json:"allow_data_deletion"`

	PrivacyPolicyAccepted bool   `json:"privacy_policy_accepted"`
	PrivacyPolicyVersion  string `gorm:"type:varchar(10)" json:"privacy_policy_version"`
}

// DefaultPrivacySettings mirrors the consent defaults new accounts start with.
func DefaultPrivacySettings(role Role, ownerID uuid.UUID) *PrivacySettings {
	return &PrivacySettings{
		OwnerRole:              role,
		OwnerID:                ownerID,
		CollectBasicInfo:       true,
		CollectActivityLogs:    true,
		CollectChatMessages:    true,
		CollectDocuments:       true,
		UseForServices:         true,
		UseForAlerts:           true,
		UseForCompliance:       true,
		ShareWithPartners:      true,
		AllowMultiFactorAuth:   true,
		EncryptedCommunication: true,
		DataRetentionMonths:    24,
		AllowDataDeletion:      true,
		PrivacyPolicyVersion:   "1.0",
	}
}

// TermsAcceptance records which terms clauses a user agreed to.
type TermsAcceptance struct {
	Base
	OwnerRole Role      `gorm:"type:varchar(20);not null;uniqueIndex:idx_terms_owner" json:"owner_role"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_terms_owner" json:"owner_id"`

	AccountResponsibility      bool `json:"account_responsibility"`
	ServiceDescriptionAccepted bool `json:"service_description_accepted"`
	AcceptDigitalAgreements    bool `json:"accept_digital_agreements"`
	PaymentChargesUnderstood   bool `json:"payment_charges_understood"`
	NoFraud                    bool `json:"no_fraud"`
	NoHarmfulContent           bool `json:"no_harmful_content"`

	TermsVersion    string     `gorm:"type:varchar(10)" json:"terms_version"`
	TermsAcceptedAt *time.Time `json:"terms_accepted_at"`
}

func DefaultTermsAcceptance(role Role, ownerID uuid.UUID) *TermsAcceptance {
	return &TermsAcceptance{
		OwnerRole:             role,
		OwnerID:               ownerID,
		AccountResponsibility: true,
		NoFraud:               true,
		NoHarmfulContent:      true,
		TermsVersion:          "1.0",
	}
}

// AllAccepted reports whether every clause has been agreed to.
func (t *TermsAcceptance) AllAccepted() bool {
	return t.AccountResponsibility &&
		t.ServiceDescriptionAccepted &&
		t.AcceptDigitalAgreements &&
		t.PaymentChargesUnderstood &&
		t.NoFraud &&
		t.NoHarmfulContent
}
