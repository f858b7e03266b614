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

type LegalDocumentInput struct {
	Audience      models.Role              `json:"audience" binding:"required"`
	DocumentType  models.LegalDocumentType `json:"document_type" binding:"required"`
	Title         string                   `json:"title" binding:"required,max=255"`
	Content       string                   `json:"content" binding:"required"`
	Version       string                   `json:"version"`
	IsActive      *bool                    `json:"is_active"`
	EffectiveDate string                   `json:"effective_date"`
}

type LegalDocumentPatch struct {
	Title         *string `json:"title"`
	Content       *string `json:"content"`
	Version       *string `json:"version"`
	IsActive      *bool   `json:"is_active"`
	EffectiveDate *string `json:"effective_date"`
}

func missingLegal(t models.LegalDocumentType) error {
	if t == models.LegalPrivacyPolicy {
		return notFound("No active privacy policy found")
	}
	return notFound("No active terms found")
}

// LegalService publishes privacy policies and terms per audience role.
type LegalService struct {
	store *repositories.Store
	now   func() time.Time
}

func NewLegalService(store *repositories.Store) *LegalService {
	return &LegalService{store: store, now: time.Now}
}

// ForRole lists the active documents a member of role should see.
func (s *LegalService) ForRole(ctx context.Context, role models.Role) ([]models.LegalDocument, error) {
	return s.store.LegalDocuments.ListActive(ctx, role)
}

func (s *LegalService) Active(ctx context.Context, audience models.Role, docType models.LegalDocumentType) (*models.LegalDocument, error) {
	if !docType.Valid() {
		return nil, invalid("Document type must be privacy_policy or terms_conditions")
	}
	doc, err := s.store.LegalDocuments.FindActive(ctx, audience, docType)
	if err != nil {
		return nil, fmt.Errorf("find legal document: %w", err)
	}
	if doc == nil {
		return nil, missingLegal(docType)
	}
	return doc, nil
}

func (s *LegalService) List(ctx context.Context, f repositories.LegalDocumentFilter) ([]models.LegalDocument, error) {
	return s.store.LegalDocuments.List(ctx, f)
}

func (s *LegalService) Get(ctx context.Context, id uuid.UUID) (*models.LegalDocument, error) {
	doc, err := s.store.LegalDocuments.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find legal document: %w", err)
	}
	if doc == nil {
		return nil, notFound("Document not found")
	}
	return doc, nil
}

func (s *LegalService) effectiveDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return utils.Today(s.now()), nil
	}
	d, err := utils.ParseDate(raw)
	if err != nil {
		return time.Time{}, invalid("Effective date must be YYYY-MM-DD")
	}
	return d, nil
}

// save persists doc in one transaction. An active doc first deactivates its
// siblings so the one-active index holds.
func (s *LegalService) save(ctx context.Context, doc *models.LegalDocument, create bool) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if doc.IsActive {
			if err := tx.LegalDocuments.DeactivateOthers(ctx, doc.Audience, doc.DocumentType, doc.ID); err != nil {
				return fmt.Errorf("deactivate legal documents: %w", err)
			}
		}
		var err error
		if create {
			err = tx.LegalDocuments.Create(ctx, doc)
		} else {
			err = tx.LegalDocuments.Save(ctx, doc)
		}
		if err != nil {
			return fmt.Errorf("save legal document: %w", err)
		}
		return nil
	})
}

func (s *LegalService) Create(ctx context.Context, in LegalDocumentInput) (*models.LegalDocument, error) {
	if !in.Audience.IsMember() {
		return nil, invalid("Audience must be agent, seller or buyer")
	}
	if !in.DocumentType.Valid() {
		return nil, invalid("Document type must be privacy_policy or terms_conditions")
	}
	date, err := s.effectiveDate(in.EffectiveDate)
	if err != nil {
		return nil, err
	}
	doc := &models.LegalDocument{
		Audience:      in.Audience,
		DocumentType:  in.DocumentType,
		Title:         strings.TrimSpace(in.Title),
		Content:       in.Content,
		Version:       strings.TrimSpace(in.Version),
		IsActive:      in.IsActive == nil || *in.IsActive,
		EffectiveDate: date,
	}
	if doc.Version == "" {
		doc.Version = "1.0"
	}
	if err := s.save(ctx, doc, true); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *LegalService) Update(ctx context.Context, id uuid.UUID, in LegalDocumentPatch) (*models.LegalDocument, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	setString(&doc.Title, in.Title)
	setString(&doc.Content, in.Content)
	setString(&doc.Version, in.Version)
	setBool(&doc.IsActive, in.IsActive)
	if in.EffectiveDate != nil {
		if doc.EffectiveDate, err = s.effectiveDate(*in.EffectiveDate); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(doc.Title) == "" || strings.TrimSpace(doc.Content) == "" {
		return nil, invalid("Content cannot be empty")
	}
	if err := s.save(ctx, doc, false); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *LegalService) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.store.LegalDocuments.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete legal document: %w", err)
	}
	if !ok {
		return notFound("Document not found")
	}
	return nil
}

type PlatformDocumentInput struct {
	DocumentType models.PlatformDocumentType
	Title        string
	Description  string
	Version      string
	IsActive     *bool
	File         storage.File
}

type PlatformDocumentPatch struct {
	Title       *string
	Description *string
	Version     *string
	IsActive    *bool
	File        *storage.File
}

// PlatformDocumentService manages the template files the superadmin publishes.
type PlatformDocumentService struct {
	store   *repositories.Store
	storage storage.Storage
	log     zerolog.Logger
}

func NewPlatformDocumentService(store *repositories.Store, st storage.Storage, log zerolog.Logger) *PlatformDocumentService {
	return &PlatformDocumentService{store: store, storage: st, log: log}
}

func (s *PlatformDocumentService) resolve(docs []models.PlatformDocument) []models.PlatformDocument {
	for i := range docs {
		docs[i].URL = s.storage.URL(docs[i].Document)
	}
	return docs
}

// Active lists what buyers and sellers may download.
func (s *PlatformDocumentService) Active(ctx context.Context, docType models.PlatformDocumentType) ([]models.PlatformDocument, error) {
	docs, err := s.store.PlatformDocuments.List(ctx, docType, true)
	if err != nil {
		return nil, fmt.Errorf("list platform documents: %w", err)
	}
	return s.resolve(docs), nil
}

func (s *PlatformDocumentService) List(ctx context.Context, docType models.PlatformDocumentType) ([]models.PlatformDocument, error) {
	docs, err := s.store.PlatformDocuments.List(ctx, docType, false)
	if err != nil {
		return nil, fmt.Errorf("list platform documents: %w", err)
	}
	return s.resolve(docs), nil
}

func (s *PlatformDocumentService) get(ctx context.Context, id uuid.UUID) (*models.PlatformDocument, error) {
	doc, err := s.store.PlatformDocuments.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find platform document: %w", err)
	}
	if doc == nil {
		return nil, notFound("Document not found")
	}
	return doc, nil
}

func (s *PlatformDocumentService) Create(ctx context.Context, adminID uuid.UUID, in PlatformDocumentInput) (*models.PlatformDocument, error) {
	if !in.DocumentType.Valid() {
		return nil, invalid("Invalid document type: %s", in.DocumentType)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalid("Title is required")
	}
	name, err := s.storage.Save("platform_documents", in.File)
	if err != nil {
		return nil, fmt.Errorf("store platform document: %w", err)
	}
	doc := &models.PlatformDocument{
		DocumentType: in.DocumentType,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Document:     name,
		FileSize:     in.File.Size,
		IsActive:     in.IsActive == nil || *in.IsActive,
		Version:      strings.TrimSpace(in.Version),
		UploadedByID: &adminID,
	}
	if doc.Version == "" {
		doc.Version = "1.0"
	}
	if err := s.store.PlatformDocuments.Create(ctx, doc); err != nil {
		_ = s.storage.Delete(name)
		return nil, fmt.Errorf("create platform document: %w", err)
	}
	doc.URL = s.storage.URL(name)
	return doc, nil
}

// Update replaces the stored file when a new one is given.
func (s *PlatformDocumentService) Update(ctx context.Context, id uuid.UUID, in PlatformDocumentPatch) (*models.PlatformDocument, error) {
	doc, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	setString(&doc.Title, in.Title)
	setString(&doc.Description, in.Description)
	setString(&doc.Version, in.Version)
	setBool(&doc.IsActive, in.IsActive)

	old := ""
	if in.File != nil {
		name, err := s.storage.Save("platform_documents", *in.File)
		if err != nil {
			return nil, fmt.Errorf("store platform document: %w", err)
		}
		old, doc.Document, doc.FileSize = doc.Document, name, in.File.Size
	}
	if err := s.store.PlatformDocuments.Save(ctx, doc); err != nil {
		if old != "" {
			_ = s.storage.Delete(doc.Document)
		}
		return nil, fmt.Errorf("save platform document: %w", err)
	}
	if old != "" {
		if err := s.storage.Delete(old); err != nil {
			s.log.Warn().Err(err).Str("file", old).Msg("remove replaced platform document")
		}
	}
	doc.URL = s.storage.URL(doc.Document)
	return doc, nil
}

func (s *PlatformDocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.PlatformDocuments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete platform document: %w", err)
	}
	if err := s.storage.Delete(doc.Document); err != nil {
		s.log.Warn().Err(err).Str("file", doc.Document).Msg("remove platform document")
	}
	return nil
}
