package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/storage"
	"github.com/nahid2887/padzzey-sub000/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateAgentProfile(t *testing.T) {
	store := testutil.NewStore(t)
	svc := NewUserService(store, storage.NewLocalStorage(t.TempDir(), "/media/"))
	ctx := context.Background()
	agent := testutil.Agent(t, store, "alice")
	testutil.Agent(t, store, "carol")

	p, err := svc.UpdateProfile(ctx, models.RoleAgent, agent.ID, ProfileInput{
		FirstName:         ptr("Alice"),
		YearsOfExperience: ptr(7),
		Languages:         []string{"English", "French"},
		Availability:      ptr("part-time"),
	}, nil)
	require.NoError(t, err)
	a := p.(*models.Agent)
	assert.Equal(t, "Alice", a.FirstName)
	assert.Equal(t, models.Availability("part-time"), a.Availability)

	loaded, err := svc.GetProfile(ctx, models.RoleAgent, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"English", "French"}, []string(loaded.(*models.Agent).Languages))

	_, err = svc.UpdateProfile(ctx, models.RoleAgent, agent.ID, ProfileInput{Availability: ptr("weekends")}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateProfile(ctx, models.RoleAgent, agent.ID, ProfileInput{YearsOfExperience: ptr(-1)}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateProfile(ctx, models.RoleAgent, agent.ID, ProfileInput{Username: ptr("carol")}, nil)
	assert.ErrorIs(t, err, ErrConflict)

	// Keeping one's own username is fine.
	_, err = svc.UpdateProfile(ctx, models.RoleAgent, agent.ID, ProfileInput{Username: ptr("alice")}, nil)
	assert.NoError(t, err)
}

func TestProfilePictureReplaced(t *testing.T) {
	store := testutil.NewStore(t)
	root := t.TempDir()
	svc := NewUserService(store, storage.NewLocalStorage(root, "/media/"))
	ctx := context.Background()
	buyer := testutil.Buyer(t, store, "bob")

	pic := upload("me.png", "png")
	p, err := svc.UpdateProfile(ctx, models.RoleBuyer, buyer.ID, ProfileInput{}, &pic)
	require.NoError(t, err)
	first := p.Credentials().ProfilePicture
	assert.True(t, strings.HasPrefix(first, "profile_pictures/buyer/"))
	assert.True(t, strings.HasPrefix(svc.PictureURL(p), "/media/profile_pictures/buyer/"))

	pic = upload("me2.png", "png2")
	p, err = svc.UpdateProfile(ctx, models.RoleBuyer, buyer.ID, ProfileInput{}, &pic)
	require.NoError(t, err)
	assert.NotEqual(t, first, p.Credentials().ProfilePicture)
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(first)))
	assert.True(t, os.IsNotExist(err))
}

func TestProfileUpdatesKeepNamesIntact(t *testing.T) {
	store := testutil.NewStore(t)
	svc := NewUserService(store, storage.NewLocalStorage(t.TempDir(), "/media/"))
	ctx := context.Background()
	seller := testutil.Seller(t, store, "sam")

	_, err := svc.UpdateProfile(ctx, models.RoleSeller, seller.ID, ProfileInput{
		FirstName: ptr("O'Brien"),
		LastName:  ptr("<Smith & Sons>"),
	}, nil)
	require.NoError(t, err)
	for _, phone := range []string{"555-0100", "555-0101"} {
		_, err = svc.UpdateProfile(ctx, models.RoleSeller, seller.ID, ProfileInput{PhoneNumber: ptr(phone)}, nil)
		require.NoError(t, err)
	}

	p, err := svc.GetProfile(ctx, models.RoleSeller, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, "O'Brien", p.Credentials().FirstName)
	assert.Equal(t, "<Smith & Sons>", p.Credentials().LastName)
	assert.Equal(t, "555-0101", p.Credentials().PhoneNumber)
}
