package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
	"github.com/nahid2887/padzzey-sub000/internal/storage"
	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

type BuyerDocumentUpload struct {
	Title       string
	Description string
	File        storage.File
}

// MaxAdminDocumentSize caps documents the superadmin files for a buyer.
const MaxAdminDocumentSize = 10 << 20

type BuyerDocumentPage struct {
	Results    []models.BuyerDocument `json:"results"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	PerPage    int                    `json:"per_page"`
	TotalPages int                    `json:"total_pages"`
}

// BuyerService holds the buyer's bookmarks and personal documents.
type BuyerService struct {
	store   *repositories.Store
	storage storage.Storage
	log     zerolog.Logger
}

func NewBuyerService(store *repositories.Store, st storage.Storage, log zerolog.Logger) *BuyerService {
	return &BuyerService{store: store, storage: st, log: log}
}

func (s *BuyerService) SavedListings(ctx context.Context, buyerID uuid.UUID) ([]models.SavedListing, error) {
	saved, err := s.store.SavedListings.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list saved listings: %w", err)
	}
	for i := range saved {
		if l := saved[i].Listing; l != nil {
			for j := range l.Photos {
				l.Photos[j].URL = s.storage.URL(l.Photos[j].Photo)
			}
		}
	}
	return saved, nil
}

func (s *BuyerService) SaveListing(ctx context.Context, buyerID, listingID uuid.UUID, notes string) (*models.SavedListing, error) {
	listing, err := s.store.Listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("find listing: %w", err)
	}
	if listing == nil {
		return nil, notFound("Listing not found")
	}
	exists, err := s.store.SavedListings.Exists(ctx, buyerID, listingID)
	if err != nil {
		return nil, fmt.Errorf("check saved listing: %w", err)
	}
	if exists {
		return nil, invalid("Listing already saved")
	}
	saved := &models.SavedListing{BuyerID: buyerID, ListingID: listingID, Notes: strings.TrimSpace(notes)}
	if err := s.store.SavedListings.Create(ctx, saved); err != nil {
		return nil, fmt.Errorf("save listing: %w", err)
	}
	saved.Listing = listing
	return saved, nil
}

func (s *BuyerService) RemoveSavedListing(ctx context.Context, buyerID, id uuid.UUID) error {
	ok, err := s.store.SavedListings.Delete(ctx, id, buyerID)
	if err != nil {
		return fmt.Errorf("delete saved listing: %w", err)
	}
	if !ok {
		return notFound("Saved listing not found")
	}
	return nil
}

func (s *BuyerService) resolve(d *models.BuyerDocument) *models.BuyerDocument {
	d.URL = s.storage.URL(d.File)
	return d
}

func (s *BuyerService) Documents(ctx context.Context, buyerID uuid.UUID) ([]models.BuyerDocument, error) {
	docs, err := s.store.BuyerDocuments.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list buyer documents: %w", err)
	}
	for i := range docs {
		s.resolve(&docs[i])
	}
	return docs, nil
}

func (s *BuyerService) UploadDocument(ctx context.Context, buyerID uuid.UUID, in BuyerDocumentUpload) (*models.BuyerDocument, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = in.File.Name
	}
	if title == "" {
		return nil, invalid("Title is required")
	}
	name, err := s.storage.Save("buyer_documents", in.File)
	if err != nil {
		return nil, fmt.Errorf("store buyer document: %w", err)
	}
	doc := &models.BuyerDocument{
		BuyerID:     buyerID,
		Title:       title,
		Description: in.Description,
		File:        name,
		FileSize:    in.File.Size,
	}
	if err := s.store.BuyerDocuments.Create(ctx, doc); err != nil {
		_ = s.storage.Delete(name)
		return nil, fmt.Errorf("create buyer document: %w", err)
	}
	return s.resolve(doc), nil
}

func (s *BuyerService) find(ctx context.Context, id uuid.UUID) (*models.BuyerDocument, error) {
	doc, err := s.store.BuyerDocuments.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find buyer document: %w", err)
	}
	if doc == nil {
		return nil, notFound("Document not found")
	}
	return s.resolve(doc), nil
}

func (s *BuyerService) Document(ctx context.Context, buyerID, id uuid.UUID) (*models.BuyerDocument, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.BuyerID != buyerID {
		return nil, notFound("Document not found")
	}
	return doc, nil
}

func (s *BuyerService) remove(ctx context.Context, doc *models.BuyerDocument) error {
	if err := s.store.BuyerDocuments.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete buyer document: %w", err)
	}
	if err := s.storage.Delete(doc.File); err != nil {
		s.log.Warn().Err(err).Str("file", doc.File).Msg("remove buyer document")
	}
	return nil
}

func (s *BuyerService) DeleteDocument(ctx context.Context, buyerID, id uuid.UUID) error {
	doc, err := s.Document(ctx, buyerID, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, doc)
}

// AllDocuments pages through every buyer's documents for the superadmin.
func (s *BuyerService) AllDocuments(ctx context.Context, page utils.Page) (*BuyerDocumentPage, error) {
	docs, total, err := s.store.BuyerDocuments.List(ctx, page.Offset(), page.PerPage)
	if err != nil {
		return nil, fmt.Errorf("list buyer documents: %w", err)
	}
	for i := range docs {
		s.resolve(&docs[i])
	}
	return &BuyerDocumentPage{
		Results:    docs,
		Total:      total,
		Page:       page.Number,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages(total),
	}, nil
}

// AdminUploadDocument files a PDF into a buyer's documents on their behalf.
func (s *BuyerService) AdminUploadDocument(ctx context.Context, buyerID uuid.UUID, in BuyerDocumentUpload) (*models.BuyerDocument, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalid("title is required")
	}
	if in.File.Size > MaxAdminDocumentSize {
		return nil, invalid("File size exceeds 10MB limit")
	}
	if in.File.Ext() != "pdf" {
		return nil, invalid("Only PDF files are allowed")
	}
	buyer, err := s.store.Accounts.FindByID(ctx, models.RoleBuyer, buyerID)
	if err != nil {
		return nil, fmt.Errorf("find buyer: %w", err)
	}
	if buyer == nil {
		return nil, notFound("Buyer not found")
	}
	doc, err := s.UploadDocument(ctx, buyerID, in)
	if err != nil {
		return nil, err
	}
	if b, ok := buyer.(*models.Buyer); ok {
		doc.Buyer = b
	}
	return doc, nil
}

func (s *BuyerService) AdminDocument(ctx context.Context, id uuid.UUID) (*models.BuyerDocument, error) {
	return s.find(ctx, id)
}

func (s *BuyerService) AdminDeleteDocument(ctx context.Context, id uuid.UUID) error {
	doc, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, doc)
}
