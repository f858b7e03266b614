package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/storage"
	"github.com/nahid2887/padzzey-sub000/internal/testutil"
)

func upload(name, body string) storage.File {
	return storage.File{Name: name, Size: int64(len(body)), Content: strings.NewReader(body)}
}

type documentFixture struct {
	svc     *DocumentService
	pusher  *testutil.RecordingPusher
	root    string
	agent   *models.Agent
	seller  *models.Seller
	request *models.SellingRequest
}

func newDocumentFixture(t *testing.T, status models.SellingRequestStatus) documentFixture {
	store := testutil.NewStore(t)
	pusher := &testutil.RecordingPusher{}
	root := t.TempDir()
	agent := testutil.Agent(t, store, "alice")
	seller := testutil.Seller(t, store, "sam")
	return documentFixture{
		svc:     NewDocumentService(store, storage.NewLocalStorage(root, "/media/"), NewNotifier(pusher, zerolog.Nop()), zerolog.Nop()),
		pusher:  pusher,
		root:    root,
		agent:   agent,
		seller:  seller,
		request: testutil.SellingRequest(t, store, seller.ID, agent.ID, status),
	}
}

func (f documentFixture) uploadCMA(t *testing.T) *models.PropertyDocument {
	t.Helper()
	doc, err := f.svc.UploadCMA(context.Background(), f.agent.ID, f.request.ID, DocumentUpload{
		Files: []storage.File{upload("report.pdf", "cma"), upload("comps.xlsx", "comps")},
	})
	require.NoError(t, err)
	return doc
}

func TestCMAReview(t *testing.T) {
	f := newDocumentFixture(t, models.SellingRequestAccepted)
	ctx := context.Background()

	doc := f.uploadCMA(t)
	assert.Equal(t, models.DocumentCMA, doc.DocumentType)
	assert.Equal(t, "CMA Report", doc.Title)
	assert.Equal(t, models.ReviewPending, doc.CMAStatus)
	require.Len(t, doc.Files, 2)
	assert.True(t, strings.HasPrefix(doc.Files[0].URL, "/media/cma_documents/"))
	_, err := os.Stat(filepath.Join(f.root, filepath.FromSlash(doc.Files[0].File)))
	require.NoError(t, err)

	notes := f.pusher.For(models.RoleSeller, f.seller.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotifyCMAReady, notes[0].NotificationType)
	assert.Contains(t, notes[0].Message, "2 file(s): report.pdf, comps.xlsx")

	doc, err = f.svc.DecideCMA(ctx, f.seller.ID, doc.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewAccepted, doc.CMAStatus)
	assert.Equal(t, models.ReviewAccepted, doc.CMADocumentStatus)

	agentNotes := f.pusher.For(models.RoleAgent, f.agent.ID)
	require.Len(t, agentNotes, 1)
	assert.Equal(t, "CMA Report Accepted", agentNotes[0].Title)

	_, err = f.svc.DecideCMA(ctx, f.seller.ID, doc.ID, false)
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "CMA has already been accepted", Message(err, ""))
}

func TestCMAUploadRules(t *testing.T) {
	f := newDocumentFixture(t, models.SellingRequestPending)
	ctx := context.Background()

	_, err := f.svc.UploadCMA(ctx, f.agent.ID, f.request.ID, DocumentUpload{
		Files: []storage.File{upload("report.pdf", "cma")},
	})
	assert.ErrorIs(t, err, ErrValidation)

	stranger := testutil.Agent(t, f.svc.store, "carol")
	_, err = f.svc.UploadCMA(ctx, stranger.ID, f.request.ID, DocumentUpload{
		Files: []storage.File{upload("report.pdf", "cma")},
	})
	assert.ErrorIs(t, err, ErrForbidden)

	entries, err := os.ReadDir(f.root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCMADecisionBelongsToSeller(t *testing.T) {
	f := newDocumentFixture(t, models.SellingRequestAccepted)
	doc := f.uploadCMA(t)
	other := testutil.Seller(t, f.svc.store, "tina")

	_, err := f.svc.DecideCMA(context.Background(), other.ID, doc.ID, true)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GetForSeller(context.Background(), other.ID, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSellingAgreementReview(t *testing.T) {
	f := newDocumentFixture(t, models.SellingRequestAccepted)
	ctx := context.Background()
	doc := f.uploadCMA(t)

	_, err := f.svc.DecideAgreement(ctx, f.seller.ID, doc.ID, true, "")
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.GetAgreement(ctx, doc.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Selling agreement not found", Message(err, ""))

	doc, err = f.svc.UploadAgreement(ctx, f.agent.ID, doc.ID, upload("agreement.pdf", "v1"))
	require.NoError(t, err)
	assert.Equal(t, models.ReviewPending, doc.AgreementStatus)
	require.NotNil(t, doc.AgreementUploadedAt)
	assert.True(t, strings.HasPrefix(doc.SellingAgreementURL, "/media/selling_agreements/"))
	first := doc.SellingAgreementFile

	sellerNotes := f.pusher.For(models.RoleSeller, f.seller.ID)
	assert.Equal(t, models.NotifyAgreement, sellerNotes[len(sellerNotes)-1].NotificationType)

	doc, err = f.svc.DecideAgreement(ctx, f.seller.ID, doc.ID, false, "  Commission too high ")
	require.NoError(t, err)
	assert.Equal(t, models.ReviewRejected, doc.AgreementStatus)
	assert.Equal(t, "Commission too high", doc.AgreementRejectionReason)

	agentNotes := f.pusher.For(models.RoleAgent, f.agent.ID)
	require.NotEmpty(t, agentNotes)
	last := agentNotes[len(agentNotes)-1]
	assert.Equal(t, models.NotifyDocumentUpdated, last.NotificationType)
	assert.Contains(t, last.Message, "Reason: Commission too high")

	// A revised upload reopens the review and replaces the old file.
	doc, err = f.svc.UploadAgreement(ctx, f.agent.ID, doc.ID, upload("agreement-v2.pdf", "v2"))
	require.NoError(t, err)
	assert.Equal(t, models.ReviewPending, doc.AgreementStatus)
	assert.Empty(t, doc.AgreementRejectionReason)
	_, err = os.Stat(filepath.Join(f.root, filepath.FromSlash(first)))
	assert.True(t, os.IsNotExist(err))

	doc, err = f.svc.DecideAgreement(ctx, f.seller.ID, doc.ID, true, "")
	require.NoError(t, err)
	assert.Equal(t, models.ReviewAccepted, doc.AgreementStatus)

	docs, total, err := f.svc.ListAgreements(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, docs, 1)
	assert.NotEmpty(t, docs[0].SellingAgreementURL)

	got, err := f.svc.GetAgreement(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.SellingAgreementURL, got.SellingAgreementURL)
	require.NotNil(t, got.SellingRequest)
	assert.Equal(t, f.request.ID, got.SellingRequest.ID)
	require.Len(t, got.Files, 2)
	assert.NotEmpty(t, got.Files[0].URL)
}

func TestSellerDocumentUpload(t *testing.T) {
	f := newDocumentFixture(t, models.SellingRequestAccepted)
	ctx := context.Background()

	_, err := f.svc.UploadSellerDocument(ctx, f.seller.ID, f.request.ID, DocumentUpload{
		Files: []storage.File{upload("deed.pdf", "deed")},
	})
	assert.ErrorIs(t, err, ErrValidation)

	doc, err := f.svc.UploadSellerDocument(ctx, f.seller.ID, f.request.ID, DocumentUpload{
		Title: "Inspection",
		Files: []storage.File{
			upload("a.pdf", "a"), upload("b.pdf", "b"), upload("c.pdf", "c"), upload("d.pdf", "d"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentOther, doc.DocumentType)
	assert.Len(t, doc.Files, 4)

	notes := f.pusher.For(models.RoleAgent, f.agent.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotifyDocumentUploaded, notes[0].NotificationType)
	assert.Contains(t, notes[0].Message, "a.pdf, b.pdf, c.pdf, and 1 more")

	list, err := f.svc.ListForAgent(ctx, f.agent.ID, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	other := testutil.Seller(t, f.svc.store, "tina")
	_, err = f.svc.UploadSellerDocument(ctx, other.ID, f.request.ID, DocumentUpload{
		Title: "x",
		Files: []storage.File{upload("x.pdf", "x")},
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestFileList(t *testing.T) {
	files := []models.DocumentFile{{OriginalFilename: "a"}, {OriginalFilename: "b"}}
	assert.Equal(t, "a, b", fileList(files))
	assert.Empty(t, fileList(nil))
}
