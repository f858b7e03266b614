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
	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

type ListingInput struct {
	Title         string               `json:"title" binding:"required,max=255"`
	StreetAddress string               `json:"street_address" binding:"required,max=255"`
	City          string               `json:"city" binding:"required,max=100"`
	State         string               `json:"state" binding:"required,max=50"`
	ZipCode       string               `json:"zip_code" binding:"required,max=20"`
	PropertyType  models.PropertyType  `json:"property_type" binding:"required"`
	Bedrooms      *int                 `json:"bedrooms" binding:"omitempty,min=0"`
	Bathrooms     *float64             `json:"bathrooms" binding:"omitempty,min=0"`
	SquareFeet    *int                 `json:"square_feet" binding:"omitempty,min=0"`
	Description   string               `json:"description"`
	Price         float64              `json:"price" binding:"required,gt=0"`
	Status        models.ListingStatus `json:"status"`
}

type ListingPatch struct {
	Title         *string               `json:"title" binding:"omitempty,max=255"`
	StreetAddress *string               `json:"street_address" binding:"omitempty,max=255"`
	City          *string               `json:"city" binding:"omitempty,max=100"`
	State         *string               `json:"state" binding:"omitempty,max=50"`
	ZipCode       *string               `json:"zip_code" binding:"omitempty,max=20"`
	PropertyType  *models.PropertyType  `json:"property_type"`
	Bedrooms      *int                  `json:"bedrooms" binding:"omitempty,min=0"`
	Bathrooms     *float64              `json:"bathrooms" binding:"omitempty,min=0"`
	SquareFeet    *int                  `json:"square_feet" binding:"omitempty,min=0"`
	Description   *string               `json:"description"`
	Price         *float64              `json:"price" binding:"omitempty,gt=0"`
	Status        *models.ListingStatus `json:"status"`
}

// ListingQuery is the search accepted by the listing endpoints.
type ListingQuery struct {
	Status   models.ListingStatus
	MinPrice *float64
	MaxPrice *float64
	Bedrooms *int
	City     string
	State    string
	ZipCode  string
	Page     utils.Page
}

// ListingView adds the computed fields list endpoints expose.
type ListingView struct {
	*models.PropertyListing
	MLSNumber      string `json:"mls_number"`
	PrimaryPhoto   string `json:"primary_photo,omitempty"`
	PhotosCount    int    `json:"photos_count"`
	DocumentsCount int    `json:"documents_count"`
}

type ListingPage struct {
	Results    []ListingView `json:"results"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	TotalPages int           `json:"total_pages"`
}

type PhotoUpload struct {
	File      storage.File
	Caption   string
	IsPrimary bool
	Order     int
}

type ListingDocumentUpload struct {
	File         storage.File
	DocumentType models.ListingDocumentType
	Title        string
}

type ListingService struct {
	store   *repositories.Store
	storage storage.Storage
	log     zerolog.Logger
	now     func() time.Time
}

func NewListingService(store *repositories.Store, st storage.Storage, log zerolog.Logger) *ListingService {
	return &ListingService{store: store, storage: st, log: log, now: time.Now}
}

func (in ListingInput) validate() error {
	if !in.PropertyType.Valid() {
		return invalid("Invalid property type: %s", in.PropertyType)
	}
	if in.Status != "" && !in.Status.Valid() {
		return invalid("Invalid listing status: %s", in.Status)
	}
	return nil
}

func (s *ListingService) newListing(agentID uuid.UUID, docID *uuid.UUID, in ListingInput) *models.PropertyListing {
	l := &models.PropertyListing{
		AgentID:            agentID,
		PropertyDocumentID: docID,
		Title:              strings.TrimSpace(in.Title),
		StreetAddress:      strings.TrimSpace(in.StreetAddress),
		City:               strings.TrimSpace(in.City),
		State:              strings.TrimSpace(in.State),
		ZipCode:            strings.TrimSpace(in.ZipCode),
		PropertyType:       in.PropertyType,
		Bedrooms:           in.Bedrooms,
		Bathrooms:          in.Bathrooms,
		SquareFeet:         in.SquareFeet,
		Description:        in.Description,
		Price:              in.Price,
	}
	status := in.Status
	if status == "" {
		status = models.ListingDraft
	}
	l.SetStatus(status, s.now())
	return l
}

// CreateFromAgreement lists the property behind an accepted selling agreement.
func (s *ListingService) CreateFromAgreement(ctx context.Context, agentID, documentID uuid.UUID, in ListingInput) (*ListingView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	doc, err := s.store.Documents.FindByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("find property document: %w", err)
	}
	if doc == nil {
		return nil, notFound("Property document not found")
	}
	if doc.SellingRequest == nil || !doc.SellingRequest.IsAssignedTo(agentID) {
		return nil, forbidden("You are not the agent for this selling agreement")
	}
	if doc.AgreementStatus != models.ReviewAccepted {
		return nil, invalid("Listing can only be created from an accepted selling agreement. Current status: %s", agreementLabel(doc.AgreementStatus))
	}
	existing, err := s.store.Listings.FindByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("find listing: %w", err)
	}
	if existing != nil {
		return nil, invalid("A listing already exists for this property document")
	}

	l := s.newListing(agentID, &documentID, in)
	if err := s.store.Listings.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	return s.view(ctx, l.ID)
}

func agreementLabel(st models.ReviewStatus) string {
	if st == models.ReviewNone {
		return "none"
	}
	return string(st)
}

// AdminCreate lists a property for an agent without a selling agreement.
func (s *ListingService) AdminCreate(ctx context.Context, agentID uuid.UUID, in ListingInput) (*ListingView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.store.Accounts.FindByID(ctx, models.RoleAgent, agentID)
	if err != nil {
		return nil, fmt.Errorf("find agent: %w", err)
	}
	if p == nil {
		return nil, notFound("Agent not found")
	}
	l := s.newListing(agentID, nil, in)
	if err := s.store.Listings.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	return s.view(ctx, l.ID)
}

func (s *ListingService) toView(l *models.PropertyListing) ListingView {
	v := ListingView{
		PropertyListing: l,
		MLSNumber:       l.MLSNumber(),
		PhotosCount:     len(l.Photos),
		DocumentsCount:  len(l.Documents),
	}
	for i := range l.Photos {
		l.Photos[i].URL = s.storage.URL(l.Photos[i].Photo)
	}
	for i := range l.Documents {
		l.Documents[i].URL = s.storage.URL(l.Documents[i].Document)
	}
	// photos are loaded primary first
	if len(l.Photos) > 0 {
		v.PrimaryPhoto = l.Photos[0].URL
	}
	return v
}

func (s *ListingService) view(ctx context.Context, id uuid.UUID) (*ListingView, error) {
	l, err := s.store.Listings.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find listing: %w", err)
	}
	if l == nil {
		return nil, notFound("Listing not found")
	}
	v := s.toView(l)
	return &v, nil
}

func (s *ListingService) search(ctx context.Context, agentID *uuid.UUID, statuses []models.ListingStatus, q ListingQuery) (*ListingPage, error) {
	if q.Page.PerPage == 0 {
		q.Page = utils.Page{Number: 1, PerPage: 20}
	}
	rows, total, err := s.store.Listings.List(ctx, repositories.ListingFilter{
		AgentID:  agentID,
		Statuses: statuses,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Bedrooms: q.Bedrooms,
		City:     q.City,
		State:    q.State,
		ZipCode:  q.ZipCode,
		Offset:   q.Page.Offset(),
		Limit:    q.Page.PerPage,
	})
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	page := &ListingPage{
		Results:    make([]ListingView, 0, len(rows)),
		Total:      total,
		Page:       q.Page.Number,
		PerPage:    q.Page.PerPage,
		TotalPages: q.Page.TotalPages(total),
	}
	for i := range rows {
		page.Results = append(page.Results, s.toView(&rows[i]))
	}
	return page, nil
}

func statusFilter(st models.ListingStatus) ([]models.ListingStatus, error) {
	if st == "" {
		return nil, nil
	}
	if !st.Valid() {
		return nil, invalid("Invalid status filter: %s", st)
	}
	return []models.ListingStatus{st}, nil
}

func (s *ListingService) ListForAgent(ctx context.Context, agentID uuid.UUID, q ListingQuery) (*ListingPage, error) {
	statuses, err := statusFilter(q.Status)
	if err != nil {
		return nil, err
	}
	return s.search(ctx, &agentID, statuses, q)
}

// ListPublished is the buyer-facing catalogue of local listings.
func (s *ListingService) ListPublished(ctx context.Context, q ListingQuery) (*ListingPage, error) {
	return s.search(ctx, nil, []models.ListingStatus{models.ListingPublished}, q)
}

// ListAll is the superadmin view across every agent and status.
func (s *ListingService) ListAll(ctx context.Context, q ListingQuery) (*ListingPage, error) {
	statuses, err := statusFilter(q.Status)
	if err != nil {
		return nil, err
	}
	return s.search(ctx, nil, statuses, q)
}

func (s *ListingService) GetPublished(ctx context.Context, id uuid.UUID) (*ListingView, error) {
	v, err := s.view(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status != models.ListingPublished {
		return nil, notFound("Listing not found")
	}
	return v, nil
}

func (s *ListingService) Get(ctx context.Context, id uuid.UUID) (*ListingView, error) {
	return s.view(ctx, id)
}

// owned loads a listing and checks the agent owns it.
func (s *ListingService) owned(ctx context.Context, agentID, id uuid.UUID) (*ListingView, error) {
	v, err := s.view(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.AgentID != agentID {
		return nil, forbidden("You do not have permission to access this listing")
	}
	return v, nil
}

func (s *ListingService) GetForAgent(ctx context.Context, agentID, id uuid.UUID) (*ListingView, error) {
	return s.owned(ctx, agentID, id)
}

func (s *ListingService) Update(ctx context.Context, agentID, id uuid.UUID, in ListingPatch) (*ListingView, error) {
	v, err := s.owned(ctx, agentID, id)
	if err != nil {
		return nil, err
	}
	l := v.PropertyListing
	setString(&l.Title, in.Title)
	setString(&l.StreetAddress, in.StreetAddress)
	setString(&l.City, in.City)
	setString(&l.State, in.State)
	setString(&l.ZipCode, in.ZipCode)
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.PropertyType != nil {
		if !in.PropertyType.Valid() {
			return nil, invalid("Invalid property type: %s", *in.PropertyType)
		}
		l.PropertyType = *in.PropertyType
	}
	if in.Bedrooms != nil {
		l.Bedrooms = in.Bedrooms
	}
	if in.Bathrooms != nil {
		l.Bathrooms = in.Bathrooms
	}
	if in.SquareFeet != nil {
		l.SquareFeet = in.SquareFeet
	}
	if in.Price != nil {
		l.Price = *in.Price
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, invalid("Invalid listing status: %s", *in.Status)
		}
		l.SetStatus(*in.Status, s.now())
	}
	if err := s.store.Listings.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("save listing: %w", err)
	}
	return s.view(ctx, id)
}

// SetStatus moves any listing to status, for the superadmin.
func (s *ListingService) SetStatus(ctx context.Context, id uuid.UUID, status models.ListingStatus) (*ListingView, error) {
	if !status.Valid() {
		return nil, invalid("Invalid listing status: %s", status)
	}
	v, err := s.view(ctx, id)
	if err != nil {
		return nil, err
	}
	v.SetStatus(status, s.now())
	if err := s.store.Listings.Save(ctx, v.PropertyListing); err != nil {
		return nil, fmt.Errorf("save listing: %w", err)
	}
	return v, nil
}

func (s *ListingService) remove(ctx context.Context, l *models.PropertyListing) error {
	if err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		return tx.Listings.Delete(ctx, l.ID)
	}); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	for _, p := range l.Photos {
		if err := s.storage.Delete(p.Photo); err != nil {
			s.log.Warn().Err(err).Str("file", p.Photo).Msg("remove listing photo")
		}
	}
	for _, d := range l.Documents {
		if err := s.storage.Delete(d.Document); err != nil {
			s.log.Warn().Err(err).Str("file", d.Document).Msg("remove listing document")
		}
	}
	return nil
}

func (s *ListingService) Delete(ctx context.Context, agentID, id uuid.UUID) error {
	v, err := s.owned(ctx, agentID, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, v.PropertyListing)
}

func (s *ListingService) AdminDelete(ctx context.Context, id uuid.UUID) error {
	v, err := s.view(ctx, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, v.PropertyListing)
}

// AddPhoto stores a photo. A primary photo clears the flag on the others.
func (s *ListingService) AddPhoto(ctx context.Context, agentID, id uuid.UUID, in PhotoUpload) (*models.ListingPhoto, error) {
	if _, err := s.owned(ctx, agentID, id); err != nil {
		return nil, err
	}
	name, err := s.storage.Save("listing_photos", in.File)
	if err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}
	photo := &models.ListingPhoto{
		ListingID: id,
		Photo:     name,
		Caption:   in.Caption,
		IsPrimary: in.IsPrimary,
		SortOrder: in.Order,
		FileSize:  in.File.Size,
	}
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Listings.AddPhoto(ctx, photo); err != nil {
			return err
		}
		if photo.IsPrimary {
			return tx.Listings.ClearPrimary(ctx, id, photo.ID)
		}
		return nil
	})
	if err != nil {
		_ = s.storage.Delete(name)
		return nil, fmt.Errorf("add photo: %w", err)
	}
	photo.URL = s.storage.URL(name)
	return photo, nil
}

func (s *ListingService) DeletePhoto(ctx context.Context, agentID, id, photoID uuid.UUID) error {
	if _, err := s.owned(ctx, agentID, id); err != nil {
		return err
	}
	photo, err := s.store.Listings.FindPhoto(ctx, id, photoID)
	if err != nil {
		return fmt.Errorf("find photo: %w", err)
	}
	if photo == nil {
		return notFound("Photo not found")
	}
	if err := s.store.Listings.DeletePhoto(ctx, photo.ID); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	if err := s.storage.Delete(photo.Photo); err != nil {
		s.log.Warn().Err(err).Str("file", photo.Photo).Msg("remove listing photo")
	}
	return nil
}

func (s *ListingService) AddDocument(ctx context.Context, agentID, id uuid.UUID, in ListingDocumentUpload) (*models.ListingDocument, error) {
	if _, err := s.owned(ctx, agentID, id); err != nil {
		return nil, err
	}
	if in.DocumentType == "" {
		in.DocumentType = models.ListingDocOther
	}
	if !in.DocumentType.Valid() {
		return nil, invalid("Invalid document type: %s", in.DocumentType)
	}
	name, err := s.storage.Save("listing_documents", in.File)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = in.File.Name
	}
	doc := &models.ListingDocument{
		ListingID:    id,
		Document:     name,
		DocumentType: in.DocumentType,
		Title:        title,
		FileSize:     in.File.Size,
	}
	if err := s.store.Listings.AddDocument(ctx, doc); err != nil {
		_ = s.storage.Delete(name)
		return nil, fmt.Errorf("add document: %w", err)
	}
	doc.URL = s.storage.URL(name)
	return doc, nil
}

func (s *ListingService) DeleteDocument(ctx context.Context, agentID, id, documentID uuid.UUID) error {
	if _, err := s.owned(ctx, agentID, id); err != nil {
		return err
	}
	doc, err := s.store.Listings.FindDocument(ctx, id, documentID)
	if err != nil {
		return fmt.Errorf("find document: %w", err)
	}
	if doc == nil {
		return notFound("Document not found")
	}
	if err := s.store.Listings.DeleteDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := s.storage.Delete(doc.Document); err != nil {
		s.log.Warn().Err(err).Str("file", doc.Document).Msg("remove listing document")
	}
	return nil
}
