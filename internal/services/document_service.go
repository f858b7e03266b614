package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
	"github.com/nahid2887/padzzey-sub000/internal/storage"
)

type DocumentUpload struct {
	DocumentType models.DocumentType
	Title        string
	Description  string
	Files        []storage.File
}

// DocumentService runs the CMA and selling agreement workflows between a seller
// and the agent assigned to their request.
type DocumentService struct {
	store    *repositories.Store
	storage  storage.Storage
	notifier *Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewDocumentService(store *repositories.Store, st storage.Storage, notifier *Notifier, log zerolog.Logger) *DocumentService {
	return &DocumentService{store: store, storage: st, notifier: notifier, log: log, now: time.Now}
}

// fileList names the first three files and summarises the rest.
func fileList(files []models.DocumentFile) string {
	var names []string
	for i, f := range files {
		if i == 3 {
			names = append(names, fmt.Sprintf("and %d more", len(files)-3))
			break
		}
		names = append(names, f.OriginalFilename)
	}
	return strings.Join(names, ", ")
}

func sellerLocation(seller *models.Seller, fallback string) string {
	if seller != nil && strings.TrimSpace(seller.Location) != "" {
		return seller.Location
	}
	return fallback
}

func sellerName(seller *models.Seller) string {
	if seller == nil {
		return "The seller"
	}
	return seller.FullName()
}

// storeFiles saves every upload and returns the file rows. On failure the files
// already written are removed.
func (s *DocumentService) storeFiles(dir string, files []storage.File) ([]models.DocumentFile, error) {
	var out []models.DocumentFile
	for _, f := range files {
		name, err := s.storage.Save(dir, f)
		if err != nil {
			s.removeFiles(out)
			return nil, fmt.Errorf("store %s: %w", f.Name, err)
		}
		out = append(out, models.DocumentFile{File: name, OriginalFilename: f.Name, FileSize: f.Size})
	}
	return out, nil
}

func (s *DocumentService) removeFiles(files []models.DocumentFile) {
	for _, f := range files {
		if err := s.storage.Delete(f.File); err != nil {
			s.log.Warn().Err(err).Str("file", f.File).Msg("remove orphaned upload")
		}
	}
}

// UploadCMA attaches a CMA report to an accepted request and tells the seller.
func (s *DocumentService) UploadCMA(ctx context.Context, agentID, requestID uuid.UUID, in DocumentUpload) (*models.PropertyDocument, error) {
	req, err := s.store.SellingRequests.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("find selling request: %w", err)
	}
	if req == nil {
		return nil, notFound("Selling request not found")
	}
	if !req.IsAssignedTo(agentID) {
		return nil, forbidden("You are not assigned to this selling request")
	}
	if req.Status != models.SellingRequestAccepted {
		return nil, invalid("CMA can only be uploaded for accepted selling requests. Current status: %s", req.Status)
	}
	if len(in.Files) == 0 {
		return nil, invalid("At least one file is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		in.Title = "CMA Report"
	}

	files, err := s.storeFiles("cma_documents", in.Files)
	if err != nil {
		return nil, err
	}
	doc := &models.PropertyDocument{
		SellingRequestID:  req.ID,
		SellerID:          req.SellerID,
		UploadedByID:      &agentID,
		DocumentType:      models.DocumentCMA,
		Title:             in.Title,
		Description:       in.Description,
		CMAStatus:         models.ReviewPending,
		CMADocumentStatus: models.ReviewPending,
		Files:             files,
	}

	location := sellerLocation(req.Seller, "your property")
	var out Outbox
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Documents.Create(ctx, doc); err != nil {
			return fmt.Errorf("create cma document: %w", err)
		}
		return out.Add(ctx, tx, models.RoleSeller, &models.Notification{
			RecipientID:      req.SellerID,
			NotificationType: models.NotifyCMAReady,
			Title:            "CMA Report Ready - " + location,
			Message: fmt.Sprintf(
				"Hi %s, your CMA (Comparative Market Analysis) report for %s has been prepared by the agent. "+
					"The report contains %d file(s): %s. Please review it and contact the agent if you have any questions.",
				sellerName(req.Seller), location, len(files), fileList(files)),
			ActionURL:          fmt.Sprintf("/api/v1/seller/property-documents/%s", doc.ID),
			ActionText:         "View CMA Report",
			SellingRequestID:   &req.ID,
			PropertyDocumentID: &doc.ID,
		})
	})
	if err != nil {
		s.removeFiles(files)
		return nil, err
	}
	s.notifier.Flush(&out)
	return s.load(ctx, doc.ID)
}

// UploadSellerDocument lets the owner attach documents to an accepted request.
func (s *DocumentService) UploadSellerDocument(ctx context.Context, sellerID, requestID uuid.UUID, in DocumentUpload) (*models.PropertyDocument, error) {
	req, err := s.store.SellingRequests.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("find selling request: %w", err)
	}
	if req == nil {
		return nil, notFound("Selling request not found")
	}
	if req.SellerID != sellerID {
		return nil, forbidden("You can only upload documents to your own selling requests")
	}
	if req.Status != models.SellingRequestAccepted {
		return nil, invalid("Documents can only be uploaded for accepted selling requests. Current status: %s", req.Status)
	}
	if len(in.Files) == 0 {
		return nil, invalid("At least one file is required")
	}
	if in.DocumentType == "" {
		in.DocumentType = models.DocumentOther
	}
	if !in.DocumentType.Valid() {
		return nil, invalid("Invalid document type: %s", in.DocumentType)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalid("Title is required")
	}

	files, err := s.storeFiles("property_documents", in.Files)
	if err != nil {
		return nil, err
	}
	doc := &models.PropertyDocument{
		SellingRequestID: req.ID,
		SellerID:         sellerID,
		DocumentType:     in.DocumentType,
		Title:            in.Title,
		Description:      in.Description,
		Files:            files,
	}
	if in.DocumentType == models.DocumentCMA {
		doc.CMAStatus = models.ReviewPending
		doc.CMADocumentStatus = models.ReviewPending
	}

	name := sellerName(req.Seller)
	var out Outbox
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Documents.Create(ctx, doc); err != nil {
			return fmt.Errorf("create property document: %w", err)
		}
		if req.AgentID == nil {
			return nil
		}
		return out.Add(ctx, tx, models.RoleAgent, &models.Notification{
			RecipientID:      *req.AgentID,
			NotificationType: models.NotifyDocumentUploaded,
			Title:            "Documents Uploaded - " + name,
			Message: fmt.Sprintf("Seller %s uploaded %d new document(s) '%s' for their property selling request.",
				name, len(files), fileList(files)),
			ActionURL:          fmt.Sprintf("/api/v1/agent/property-documents/%s", doc.ID),
			ActionText:         "View Documents",
			SellingRequestID:   &req.ID,
			PropertyDocumentID: &doc.ID,
		})
	})
	if err != nil {
		s.removeFiles(files)
		return nil, err
	}
	s.notifier.Flush(&out)
	return s.load(ctx, doc.ID)
}

func (s *DocumentService) load(ctx context.Context, id uuid.UUID) (*models.PropertyDocument, error) {
	doc, err := s.store.Documents.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find property document: %w", err)
	}
	if doc == nil {
		return nil, notFound("Document not found")
	}
	s.Resolve(doc)
	return doc, nil
}

// Resolve fills the public URLs of the document's files.
func (s *DocumentService) Resolve(doc *models.PropertyDocument) {
	for i := range doc.Files {
		doc.Files[i].URL = s.storage.URL(doc.Files[i].File)
	}
	doc.SellingAgreementURL = s.storage.URL(doc.SellingAgreementFile)
}

func (s *DocumentService) resolveAll(docs []models.PropertyDocument) []models.PropertyDocument {
	for i := range docs {
		s.Resolve(&docs[i])
	}
	return docs
}

func (s *DocumentService) ListForSeller(ctx context.Context, sellerID uuid.UUID, docType models.DocumentType) ([]models.PropertyDocument, error) {
	docs, err := s.store.Documents.ListBySeller(ctx, sellerID, docType)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(docs), nil
}

func (s *DocumentService) GetForSeller(ctx context.Context, sellerID, id uuid.UUID) (*models.PropertyDocument, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.SellerID != sellerID {
		return nil, notFound("Document not found")
	}
	return doc, nil
}

func (s *DocumentService) ListForAgent(ctx context.Context, agentID uuid.UUID, docType models.DocumentType) ([]models.PropertyDocument, error) {
	docs, err := s.store.Documents.ListByAgent(ctx, agentID, docType)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(docs), nil
}

func (s *DocumentService) GetForAgent(ctx context.Context, agentID, id uuid.UUID) (*models.PropertyDocument, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.SellingRequest == nil || !doc.SellingRequest.IsAssignedTo(agentID) {
		return nil, notFound("Document not found")
	}
	return doc, nil
}

// DecideCMA records the seller's verdict on a pending CMA and tells the agent.
func (s *DocumentService) DecideCMA(ctx context.Context, sellerID, id uuid.UUID, accept bool) (*models.PropertyDocument, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.DocumentType != models.DocumentCMA {
		return nil, notFound("CMA document not found")
	}
	if doc.SellerID != sellerID {
		return nil, forbidden("You can only review your own CMA reports")
	}
	if doc.CMAStatus.Decided() {
		return nil, invalid("CMA has already been %s", doc.CMAStatus)
	}

	verdict := models.ReviewRejected
	if accept {
		verdict = models.ReviewAccepted
	}
	doc.CMAStatus = verdict
	doc.CMADocumentStatus = verdict

	var n *models.Notification
	if req := doc.SellingRequest; req != nil && req.AgentID != nil {
		n = &models.Notification{
			RecipientID:        *req.AgentID,
			ActionURL:          fmt.Sprintf("/api/v1/agent/property-documents/%s", doc.ID),
			ActionText:         "View CMA",
			SellingRequestID:   &req.ID,
			PropertyDocumentID: &doc.ID,
		}
		if accept {
			n.NotificationType = models.NotifyCMAReady
			n.Title = "CMA Report Accepted"
			n.Message = fmt.Sprintf("Your CMA report %q for %s has been accepted.", doc.Title, sellerName(req.Seller))
		} else {
			n.NotificationType = models.NotifyCMARequested
			n.Title = "CMA Report Rejected"
			n.Message = fmt.Sprintf("Your CMA report %q for %s has been rejected. Please review and resubmit.", doc.Title, sellerName(req.Seller))
		}
	}

	if err := s.commit(ctx, doc, models.RoleAgent, n); err != nil {
		return nil, err
	}
	return doc, nil
}

// commit saves doc and, when n is set, the notification in one transaction.
func (s *DocumentService) commit(ctx context.Context, doc *models.PropertyDocument, role models.Role, n *models.Notification) error {
	var out Outbox
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Documents.Save(ctx, doc); err != nil {
			return fmt.Errorf("save property document: %w", err)
		}
		if n == nil {
			return nil
		}
		return out.Add(ctx, tx, role, n)
	})
	if err != nil {
		return err
	}
	s.notifier.Flush(&out)
	return nil
}

// UploadAgreement stores the selling agreement on a document and asks the seller to review it.
func (s *DocumentService) UploadAgreement(ctx context.Context, agentID, id uuid.UUID, file storage.File) (*models.PropertyDocument, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	req := doc.SellingRequest
	if req == nil || !req.IsAssignedTo(agentID) {
		return nil, forbidden("You are not assigned to this selling request")
	}
	if req.Status != models.SellingRequestAccepted {
		return nil, invalid("Selling agreement can only be uploaded for accepted selling requests. Current status: %s", req.Status)
	}

	name, err := s.storage.Save("selling_agreements", file)
	if err != nil {
		return nil, fmt.Errorf("store selling agreement: %w", err)
	}
	previous := doc.SellingAgreementFile
	now := s.now()
	doc.SellingAgreementFile = name
	doc.AgreementStatus = models.ReviewPending
	doc.AgreementRejectionReason = ""
	doc.AgreementUploadedAt = &now

	location := sellerLocation(req.Seller, "your property")
	n := &models.Notification{
		RecipientID:      doc.SellerID,
		NotificationType: models.NotifyAgreement,
		Title:            "Selling Agreement Ready - " + location,
		Message: fmt.Sprintf("Hi %s, your selling agreement document for %s has been prepared by the agent and is ready for your review. "+
			"Please review the agreement and confirm your acceptance.", sellerName(req.Seller), location),
		ActionURL:          fmt.Sprintf("/api/v1/seller/property-documents/%s", doc.ID),
		ActionText:         "Review Agreement",
		SellingRequestID:   &req.ID,
		PropertyDocumentID: &doc.ID,
	}
	if err := s.commit(ctx, doc, models.RoleSeller, n); err != nil {
		_ = s.storage.Delete(name)
		return nil, err
	}
	if previous != "" && previous != name {
		_ = s.storage.Delete(previous)
	}
	s.Resolve(doc)
	return doc, nil
}

// DecideAgreement records the seller's verdict on a pending selling agreement.
func (s *DocumentService) DecideAgreement(ctx context.Context, sellerID, id uuid.UUID, accept bool, reason string) (*models.PropertyDocument, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.SellerID != sellerID {
		return nil, forbidden("You can only review your own selling agreements")
	}
	if doc.SellingAgreementFile == "" {
		return nil, invalid("No selling agreement has been uploaded for this document")
	}
	if doc.AgreementStatus.Decided() {
		return nil, invalid("Selling agreement has already been %s", doc.AgreementStatus)
	}

	req := doc.SellingRequest
	if req == nil {
		return nil, notFound("Selling request not found")
	}
	name := sellerName(req.Seller)
	location := sellerLocation(req.Seller, "the property")
	n := &models.Notification{
		NotificationType:   models.NotifyDocumentUpdated,
		ActionURL:          fmt.Sprintf("/api/v1/agent/selling-requests/%s", req.ID),
		ActionText:         "View Selling Request",
		SellingRequestID:   &req.ID,
		PropertyDocumentID: &doc.ID,
	}
	if accept {
		doc.AgreementStatus = models.ReviewAccepted
		doc.AgreementRejectionReason = ""
		n.Title = "Selling Agreement Accepted"
		n.Message = fmt.Sprintf("Seller %s has accepted the selling agreement for %s. "+
			"The agreement is now legally binding and you can proceed with the next steps.", name, location)
	} else {
		doc.AgreementStatus = models.ReviewRejected
		doc.AgreementRejectionReason = strings.TrimSpace(reason)
		n.Title = "Selling Agreement Rejected"
		msg := fmt.Sprintf("Seller %s has rejected the selling agreement for %s.", name, location)
		if doc.AgreementRejectionReason != "" {
			msg += " Reason: " + doc.AgreementRejectionReason
		}
		n.Message = msg + " Please review and prepare a revised agreement if needed."
	}
	if req.AgentID == nil {
		n = nil
	} else {
		n.RecipientID = *req.AgentID
	}

	if err := s.commit(ctx, doc, models.RoleAgent, n); err != nil {
		return nil, err
	}
	return doc, nil
}

// ListCMA pages through every CMA report for the superadmin.
func (s *DocumentService) ListCMA(ctx context.Context, offset, limit int) ([]models.PropertyDocument, int64, error) {
	docs, total, err := s.store.Documents.List(ctx, repositories.DocumentFilter{
		DocumentType: models.DocumentCMA,
		Offset:       offset,
		Limit:        limit,
	})
	if err != nil {
		return nil, 0, err
	}
	return s.resolveAll(docs), total, nil
}

func (s *DocumentService) GetCMA(ctx context.Context, id uuid.UUID) (*models.PropertyDocument, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.DocumentType != models.DocumentCMA {
		return nil, notFound("CMA report not found")
	}
	return doc, nil
}

// ListAgreements pages through documents that carry a selling agreement.
func (s *DocumentService) ListAgreements(ctx context.Context, offset, limit int) ([]models.PropertyDocument, int64, error) {
	docs, total, err := s.store.Documents.List(ctx, repositories.DocumentFilter{
		WithAgreement: true,
		Offset:        offset,
		Limit:         limit,
	})
	if err != nil {
		return nil, 0, err
	}
	return s.resolveAll(docs), total, nil
}

// GetAgreement returns a document the agent attached a selling agreement to.
func (s *DocumentService) GetAgreement(ctx context.Context, id uuid.UUID) (*models.PropertyDocument, error) {
	doc, err := s.store.Documents.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find property document: %w", err)
	}
	if doc == nil || doc.SellingAgreementFile == "" {
		return nil, notFound("Selling agreement not found")
	}
	s.Resolve(doc)
	return doc, nil
}
