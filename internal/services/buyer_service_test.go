package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/storage"
	"github.com/nahid2887/padzzey-sub000/internal/testutil"
	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

func TestSavedListings(t *testing.T) {
	store := testutil.NewStore(t)
	svc := NewBuyerService(store, storage.NewLocalStorage(t.TempDir(), "/media/"), zerolog.Nop())
	ctx := context.Background()

	agent := testutil.Agent(t, store, "alice")
	buyer := testutil.Buyer(t, store, "bob")
	other := testutil.Buyer(t, store, "bianca")
	listing := testutil.Listing(t, store, agent.ID, models.ListingPublished)

	saved, err := svc.SaveListing(ctx, buyer.ID, listing.ID, "  near school ")
	require.NoError(t, err)
	assert.Equal(t, "near school", saved.Notes)
	require.NotNil(t, saved.Listing)

	_, err = svc.SaveListing(ctx, buyer.ID, listing.ID, "")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Listing already saved", Message(err, ""))

	_, err = svc.SaveListing(ctx, buyer.ID, uuid.New(), "")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := svc.SavedListings(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Maple Street House", list[0].Listing.Title)

	list, err = svc.SavedListings(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, svc.RemoveSavedListing(ctx, other.ID, saved.ID), ErrNotFound)
	require.NoError(t, svc.RemoveSavedListing(ctx, buyer.ID, saved.ID))
	assert.ErrorIs(t, svc.RemoveSavedListing(ctx, buyer.ID, saved.ID), ErrNotFound)
}

func TestBuyerDocuments(t *testing.T) {
	store := testutil.NewStore(t)
	root := t.TempDir()
	svc := NewBuyerService(store, storage.NewLocalStorage(root, "/media/"), zerolog.Nop())
	ctx := context.Background()

	buyer := testutil.Buyer(t, store, "bob")
	other := testutil.Buyer(t, store, "bianca")

	doc, err := svc.UploadDocument(ctx, buyer.ID, BuyerDocumentUpload{File: upload("preapproval.pdf", "ok")})
	require.NoError(t, err)
	assert.Equal(t, "preapproval.pdf", doc.Title)
	assert.NotEmpty(t, doc.URL)

	_, err = svc.UploadDocument(ctx, other.ID, BuyerDocumentUpload{Title: "ID", File: upload("id.png", "id")})
	require.NoError(t, err)

	docs, err := svc.Documents(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	_, err = svc.Document(ctx, other.ID, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteDocument(ctx, other.ID, doc.ID), ErrNotFound)

	page, err := svc.AllDocuments(ctx, utils.Page{Number: 1, PerPage: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Results, 1)

	got, err := svc.AdminDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, got.BuyerID)

	require.NoError(t, svc.DeleteDocument(ctx, buyer.ID, doc.ID))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(doc.File)))
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, svc.AdminDeleteDocument(ctx, doc.ID), ErrNotFound)
}

func TestAdminUploadsBuyerDocument(t *testing.T) {
	store := testutil.NewStore(t)
	svc := NewBuyerService(store, storage.NewLocalStorage(t.TempDir(), "/media/"), zerolog.Nop())
	ctx := context.Background()
	buyer := testutil.Buyer(t, store, "bob")

	doc, err := svc.AdminUploadDocument(ctx, buyer.ID, BuyerDocumentUpload{
		Title: " Offer letter ", Description: "signed copy", File: upload("Offer.PDF", "pdf"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Offer letter", doc.Title)
	assert.Equal(t, buyer.ID, doc.BuyerID)
	require.NotNil(t, doc.Buyer)
	assert.Equal(t, "bob", doc.Buyer.Username)

	docs, err := svc.Documents(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	tests := []struct {
		name    string
		buyerID uuid.UUID
		in      BuyerDocumentUpload
		kind    error
		msg     string
	}{
		{"no title", buyer.ID, BuyerDocumentUpload{File: upload("a.pdf", "x")}, ErrValidation, "title is required"},
		{"not pdf", buyer.ID, BuyerDocumentUpload{Title: "ID", File: upload("id.png", "x")}, ErrValidation, "Only PDF files are allowed"},
		{"too large", buyer.ID, BuyerDocumentUpload{Title: "Big", File: storage.File{Name: "big.pdf", Size: MaxAdminDocumentSize + 1, Content: strings.NewReader("x")}}, ErrValidation, "File size exceeds 10MB limit"},
		{"unknown buyer", uuid.New(), BuyerDocumentUpload{Title: "Lost", File: upload("a.pdf", "x")}, ErrNotFound, "Buyer not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AdminUploadDocument(ctx, tt.buyerID, tt.in)
			require.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.msg, Message(err, ""))
		})
	}
}
