package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
	"github.com/nahid2887/padzzey-sub000/internal/storage"
	"github.com/nahid2887/padzzey-sub000/internal/testutil"
	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

type listingFixture struct {
	svc   *ListingService
	store *repositories.Store
	root  string
	agent *models.Agent
}

func newListingFixture(t *testing.T) listingFixture {
	store := testutil.NewStore(t)
	root := t.TempDir()
	return listingFixture{
		svc:   NewListingService(store, storage.NewLocalStorage(root, "/media/"), zerolog.Nop()),
		store: store,
		root:  root,
		agent: testutil.Agent(t, store, "alice"),
	}
}

func (f listingFixture) agreement(t *testing.T, status models.ReviewStatus) *models.PropertyDocument {
	t.Helper()
	seller := testutil.Seller(t, f.store, "seller-"+uuid.NewString()[:6])
	req := testutil.SellingRequest(t, f.store, seller.ID, f.agent.ID, models.SellingRequestAccepted)
	doc := &models.PropertyDocument{
		SellingRequestID: req.ID,
		SellerID:         seller.ID,
		UploadedByID:     &f.agent.ID,
		DocumentType:     models.DocumentCMA,
		Title:            "CMA Report",
		CMAStatus:        models.ReviewAccepted,
		AgreementStatus:  status,
	}
	require.NoError(t, f.store.Documents.Create(context.Background(), doc))
	return doc
}

func listingInput(status models.ListingStatus) ListingInput {
	beds := 3
	return ListingInput{
		Title:         "Lakeside Cottage",
		StreetAddress: "4 Shore Rd",
		City:          "Laconia",
		State:         "NH",
		ZipCode:       "03246",
		PropertyType:  models.PropertyHouse,
		Bedrooms:      &beds,
		Price:         510000,
		Status:        status,
	}
}

func TestCreateListingFromAgreement(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()

	pending := f.agreement(t, models.ReviewPending)
	_, err := f.svc.CreateFromAgreement(ctx, f.agent.ID, pending.ID, listingInput(""))
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, Message(err, ""), "Current status: pending")

	doc := f.agreement(t, models.ReviewAccepted)
	stranger := testutil.Agent(t, f.store, "carol")
	_, err = f.svc.CreateFromAgreement(ctx, stranger.ID, doc.ID, listingInput(""))
	assert.ErrorIs(t, err, ErrForbidden)

	bad := listingInput("")
	bad.PropertyType = "castle"
	_, err = f.svc.CreateFromAgreement(ctx, f.agent.ID, doc.ID, bad)
	assert.ErrorIs(t, err, ErrValidation)

	v, err := f.svc.CreateFromAgreement(ctx, f.agent.ID, doc.ID, listingInput(""))
	require.NoError(t, err)
	assert.Equal(t, models.ListingDraft, v.Status)
	assert.Nil(t, v.PublishedAt)
	assert.Equal(t, "LOCAL-"+v.ID.String(), v.MLSNumber)

	_, err = f.svc.CreateFromAgreement(ctx, f.agent.ID, doc.ID, listingInput(""))
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "A listing already exists for this property document", Message(err, ""))

	_, err = f.svc.CreateFromAgreement(ctx, f.agent.ID, uuid.New(), listingInput(""))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListingPublishing(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()

	v, err := f.svc.AdminCreate(ctx, f.agent.ID, listingInput(models.ListingDraft))
	require.NoError(t, err)

	_, err = f.svc.GetPublished(ctx, v.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	published := models.ListingPublished
	v, err = f.svc.Update(ctx, f.agent.ID, v.ID, ListingPatch{Status: &published})
	require.NoError(t, err)
	require.NotNil(t, v.PublishedAt)
	stamp := *v.PublishedAt

	// Re-publishing keeps the first publication time.
	sold := models.ListingSold
	_, err = f.svc.Update(ctx, f.agent.ID, v.ID, ListingPatch{Status: &sold})
	require.NoError(t, err)
	v, err = f.svc.SetStatus(ctx, v.ID, models.ListingPublished)
	require.NoError(t, err)
	assert.True(t, stamp.Equal(*v.PublishedAt))

	got, err := f.svc.GetPublished(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lakeside Cottage", got.Title)

	stranger := testutil.Agent(t, f.store, "carol")
	price := 1.0
	_, err = f.svc.Update(ctx, stranger.ID, v.ID, ListingPatch{Price: &price})
	assert.ErrorIs(t, err, ErrForbidden)

	bogus := models.ListingStatus("gone")
	_, err = f.svc.Update(ctx, f.agent.ID, v.ID, ListingPatch{Status: &bogus})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.AdminCreate(ctx, uuid.New(), listingInput(""))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListingSearch(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()
	other := testutil.Agent(t, f.store, "carol")

	testutil.Listing(t, f.store, f.agent.ID, models.ListingPublished)
	testutil.Listing(t, f.store, f.agent.ID, models.ListingDraft)
	testutil.Listing(t, f.store, other.ID, models.ListingPublished)
	_, err := f.svc.AdminCreate(ctx, other.ID, listingInput(models.ListingPublished))
	require.NoError(t, err)

	page, err := f.svc.ListPublished(ctx, ListingQuery{Page: utils.Page{Number: 1, PerPage: 2}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Results, 2)

	floor := 400000.0
	page, err = f.svc.ListPublished(ctx, ListingQuery{MinPrice: &floor})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Laconia", page.Results[0].City)

	page, err = f.svc.ListPublished(ctx, ListingQuery{City: "conc"})
	require.NoError(t, err)
	assert.Len(t, page.Results, 2)

	page, err = f.svc.ListForAgent(ctx, f.agent.ID, ListingQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = f.svc.ListForAgent(ctx, f.agent.ID, ListingQuery{Status: models.ListingDraft})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	_, err = f.svc.ListAll(ctx, ListingQuery{Status: "bogus"})
	assert.ErrorIs(t, err, ErrValidation)

	page, err = f.svc.ListAll(ctx, ListingQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
}

func TestListingMedia(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()
	l := testutil.Listing(t, f.store, f.agent.ID, models.ListingPublished)

	first, err := f.svc.AddPhoto(ctx, f.agent.ID, l.ID, PhotoUpload{File: upload("front.jpg", "front"), IsPrimary: true})
	require.NoError(t, err)
	second, err := f.svc.AddPhoto(ctx, f.agent.ID, l.ID, PhotoUpload{File: upload("yard.jpg", "yard"), IsPrimary: true, Order: 1})
	require.NoError(t, err)
	_, err = f.svc.AddPhoto(ctx, f.agent.ID, l.ID, PhotoUpload{File: upload("kitchen.jpg", "kitchen"), Order: 2})
	require.NoError(t, err)

	v, err := f.svc.GetForAgent(ctx, f.agent.ID, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, v.PhotosCount)
	assert.Equal(t, second.URL, v.PrimaryPhoto)
	primaries := 0
	for _, p := range v.Photos {
		if p.IsPrimary {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries)

	doc, err := f.svc.AddDocument(ctx, f.agent.ID, l.ID, ListingDocumentUpload{File: upload("deed.pdf", "deed")})
	require.NoError(t, err)
	assert.Equal(t, models.ListingDocOther, doc.DocumentType)
	assert.Equal(t, "deed.pdf", doc.Title)

	_, err = f.svc.AddDocument(ctx, f.agent.ID, l.ID, ListingDocumentUpload{File: upload("x.pdf", "x"), DocumentType: "poem"})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, f.svc.DeletePhoto(ctx, f.agent.ID, l.ID, first.ID))
	_, err = os.Stat(filepath.Join(f.root, filepath.FromSlash(first.Photo)))
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, f.svc.DeletePhoto(ctx, f.agent.ID, l.ID, first.ID), ErrNotFound)

	require.NoError(t, f.svc.DeleteDocument(ctx, f.agent.ID, l.ID, doc.ID))

	stranger := testutil.Agent(t, f.store, "carol")
	_, err = f.svc.AddPhoto(ctx, stranger.ID, l.ID, PhotoUpload{File: upload("a.jpg", "a")})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, f.agent.ID, l.ID))
	_, err = os.Stat(filepath.Join(f.root, filepath.FromSlash(second.Photo)))
	assert.True(t, os.IsNotExist(err))
	_, err = f.svc.Get(ctx, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
