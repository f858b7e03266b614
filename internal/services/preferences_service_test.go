package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/testutil"
)

func TestPrivacyDefaultsAndPatch(t *testing.T) {
	store := testutil.NewStore(t)
	svc := NewPreferencesService(store)
	ctx := context.Background()
	buyer := testutil.Buyer(t, store, "bob")

	p, err := svc.Privacy(ctx, models.RoleBuyer, buyer.ID)
	require.NoError(t, err)
	assert.True(t, p.CollectBasicInfo)
	assert.Equal(t, 24, p.DataRetentionMonths)
	assert.Equal(t, "1.0", p.PrivacyPolicyVersion)

	share := true
	months := 12
	p, err = svc.UpdatePrivacy(ctx, models.RoleBuyer, buyer.ID, PrivacyInput{
		ShareWithPartners:   &share,
		DataRetentionMonths: &months,
	})
	require.NoError(t, err)

	again, err := svc.Privacy(ctx, models.RoleBuyer, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
	assert.True(t, again.ShareWithPartners)
	assert.Equal(t, 12, again.DataRetentionMonths)
	assert.True(t, again.CollectBasicInfo)

	// Each role keeps its own row even for the same id.
	agentRow, err := svc.Privacy(ctx, models.RoleAgent, buyer.ID)
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, agentRow.ID)
	assert.Equal(t, 24, agentRow.DataRetentionMonths)
}

func TestTermsAcceptance(t *testing.T) {
	store := testutil.NewStore(t)
	svc := NewPreferencesService(store)
	ctx := context.Background()
	seller := testutil.Seller(t, store, "sam")
	stamp := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return stamp }

	yes := true
	terms, err := svc.UpdateTerms(ctx, models.RoleSeller, seller.ID, TermsInput{NoFraud: &yes})
	require.NoError(t, err)
	assert.Nil(t, terms.TermsAcceptedAt)

	terms, err = svc.UpdateTerms(ctx, models.RoleSeller, seller.ID, TermsInput{
		AccountResponsibility:      &yes,
		ServiceDescriptionAccepted: &yes,
		AcceptDigitalAgreements:    &yes,
		PaymentChargesUnderstood:   &yes,
		NoHarmfulContent:           &yes,
	})
	require.NoError(t, err)
	require.NotNil(t, terms.TermsAcceptedAt)
	assert.True(t, stamp.Equal(*terms.TermsAcceptedAt))

	loaded, err := svc.Terms(ctx, models.RoleSeller, seller.ID)
	require.NoError(t, err)
	assert.True(t, loaded.AllAccepted())
}
