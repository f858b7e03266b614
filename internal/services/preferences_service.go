package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
)

type PrivacyInput struct {
	CollectBasicInfo       *bool   `json:"collect_basic_info"`
	CollectActivityLogs    *bool   `json:"collect_activity_logs"`
	CollectChatMessages    *bool   `json:"collect_chat_messages"`
	CollectDocuments       *bool   `json:"collect_documents"`
	CollectOptionalInfo    *bool   `json:"collect_optional_info"`
	UseForServices         *bool   `json:"use_for_services"`
	UseForAlerts           *bool   `json:"use_for_alerts"`
	UseForCompliance       *bool   `json:"use_for_compliance"`
	ShareWithPartners      *bool   `json:"share_with_partners"`
	AllowMultiFactorAuth   *bool   `json:"allow_multi_factor_auth"`
	EncryptedCommunication *bool   `json:"encrypted_communication"`
	DataRetentionMonths    *int    `json:"data_retention_months" binding:"omitempty,min=1,max=120"`
	AllowDataDeletion      *bool   `json:"allow_data_deletion"`
	PrivacyPolicyAccepted  *bool   `json:"privacy_policy_accepted"`
	PrivacyPolicyVersion   *string `json:"privacy_policy_version" binding:"omitempty,max=10"`
}

type TermsInput struct {
	AccountResponsibility      *bool   `json:"account_responsibility"`
	ServiceDescriptionAccepted *bool   `json:"service_description_accepted"`
	AcceptDigitalAgreements    *bool   `json:"accept_digital_agreements"`
	PaymentChargesUnderstood   *bool   `json:"payment_charges_understood"`
	NoFraud                    *bool   `json:"no_fraud"`
	NoHarmfulContent           *bool   `json:"no_harmful_content"`
	TermsVersion               *string `json:"terms_version" binding:"omitempty,max=10"`
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// PreferencesService manages the privacy and terms rows each account owns.
type PreferencesService struct {
	store *repositories.Store
	now   func() time.Time
}

func NewPreferencesService(store *repositories.Store) *PreferencesService {
	return &PreferencesService{store: store, now: time.Now}
}

func (s *PreferencesService) Privacy(ctx context.Context, role models.Role, userID uuid.UUID) (*models.PrivacySettings, error) {
	p, err := s.store.Preferences.Privacy(ctx, role, userID)
	if err != nil {
		return nil, fmt.Errorf("load privacy settings: %w", err)
	}
	return p, nil
}

func (s *PreferencesService) UpdatePrivacy(ctx context.Context, role models.Role, userID uuid.UUID, in PrivacyInput) (*models.PrivacySettings, error) {
	p, err := s.Privacy(ctx, role, userID)
	if err != nil {
		return nil, err
	}
	setBool(&p.CollectBasicInfo, in.CollectBasicInfo)
	setBool(&p.CollectActivityLogs, in.CollectActivityLogs)
	setBool(&p.CollectChatMessages, in.CollectChatMessages)
	setBool(&p.CollectDocuments, in.CollectDocuments)
	setBool(&p.CollectOptionalInfo, in.CollectOptionalInfo)
	setBool(&p.UseForServices, in.UseForServices)
	setBool(&p.UseForAlerts, in.UseForAlerts)
	setBool(&p.UseForCompliance, in.UseForCompliance)
	setBool(&p.ShareWithPartners, in.ShareWithPartners)
	setBool(&p.AllowMultiFactorAuth, in.AllowMultiFactorAuth)
	setBool(&p.EncryptedCommunication, in.EncryptedCommunication)
	setBool(&p.AllowDataDeletion, in.AllowDataDeletion)
	setBool(&p.PrivacyPolicyAccepted, in.PrivacyPolicyAccepted)
	if in.DataRetentionMonths != nil {
		p.DataRetentionMonths = *in.DataRetentionMonths
	}
	setString(&p.PrivacyPolicyVersion, in.PrivacyPolicyVersion)

	if err := s.store.Preferences.SavePrivacy(ctx, p); err != nil {
		return nil, fmt.Errorf("save privacy settings: %w", err)
	}
	return p, nil
}

func (s *PreferencesService) Terms(ctx context.Context, role models.Role, userID uuid.UUID) (*models.TermsAcceptance, error) {
	t, err := s.store.Preferences.Terms(ctx, role, userID)
	if err != nil {
		return nil, fmt.Errorf("load terms: %w", err)
	}
	return t, nil
}

// UpdateTerms stamps the acceptance time whenever every clause ends up agreed to.
func (s *PreferencesService) UpdateTerms(ctx context.Context, role models.Role, userID uuid.UUID, in TermsInput) (*models.TermsAcceptance, error) {
	t, err := s.Terms(ctx, role, userID)
	if err != nil {
		return nil, err
	}
	setBool(&t.AccountResponsibility, in.AccountResponsibility)
	setBool(&t.ServiceDescriptionAccepted, in.ServiceDescriptionAccepted)
	setBool(&t.AcceptDigitalAgreements, in.AcceptDigitalAgreements)
	setBool(&t.PaymentChargesUnderstood, in.PaymentChargesUnderstood)
	setBool(&t.NoFraud, in.NoFraud)
	setBool(&t.NoHarmfulContent, in.NoHarmfulContent)
	setString(&t.TermsVersion, in.TermsVersion)

	if t.AllAccepted() {
		now := s.now()
		t.TermsAcceptedAt = &now
	}
	if err := s.store.Preferences.SaveTerms(ctx, t); err != nil {
		return nil, fmt.Errorf("save terms: %w", err)
	}
	return t, nil
}
