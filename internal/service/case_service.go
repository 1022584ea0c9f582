package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"notaria/internal/domain"
	"notaria/internal/extraction"
	"notaria/internal/generation"
	"notaria/internal/port"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	defaultCategory  = "otro"

	stateWriteTimeout = 10 * time.Second
)

// Extractor runs the extraction stage.
type Extractor interface {
	Extract(ctx context.Context, req extraction.Request) *extraction.Result
}

// DocumentGenerator runs the generation stage and document edits.
type DocumentGenerator interface {
	Generate(ctx context.Context, req generation.GenerateRequest) *generation.GenerateResult
	Edit(ctx context.Context, req generation.EditRequest) *generation.EditResult
}

// CaseServiceConfig holds the settings the case service needs.
type CaseServiceConfig struct {
	MaxFileSizeMB     int64
	ExtractionTimeout time.Duration
	GenerationTimeout time.Duration
	AnalyzeImages     bool
	DefaultModel      domain.AIModel
	// SignedURLTTL, when positive, makes ListFiles return signed download
	// links instead of the stored object location.
	SignedURLTTL time.Duration
}

// CreateCaseInput is the DTO for opening a case.
type CreateCaseInput struct {
	UserID       uuid.UUID
	CaseTypeID   string
	AIModel      string
	ContactEmail string
}

// AttachFileInput is the DTO for uploading a supporting document.
type AttachFileInput struct {
	CaseID   uuid.UUID
	UserID   uuid.UUID
	Category string
	FileName string
	Size     int64
	Body     io.Reader
}

// SupplyFieldsInput is the DTO for manually supplied field values. Keys are
// field ids or "section.field".
type SupplyFieldsInput struct {
	CaseID uuid.UUID
	UserID uuid.UUID
	Fields map[string]string
}

// EditDocumentInput is the DTO for a natural-language document edit.
type EditDocumentInput struct {
	DocumentID  uuid.UUID
	UserID      uuid.UUID
	Instruction string
	Model       string
}

// CaseService drives a case through its pipeline.
type CaseService interface {
	Create(ctx context.Context, input CreateCaseInput) (*domain.Case, error)
	Get(ctx context.Context, caseID, userID uuid.UUID) (*domain.Case, error)
	List(ctx context.Context, filter port.CaseFilter) ([]domain.Case, int, error)
	AttachFile(ctx context.Context, input AttachFileInput) (*domain.CaseFile, error)
	ListFiles(ctx context.Context, caseID, userID uuid.UUID) ([]domain.CaseFile, error)
	Process(ctx context.Context, caseID, userID uuid.UUID) (*domain.Case, error)
	RunExtraction(ctx context.Context, c *domain.Case) error
	SupplyFields(ctx context.Context, input SupplyFieldsInput) (*domain.Case, error)
	Generate(ctx context.Context, caseID, userID uuid.UUID) (*domain.Document, error)
	Approve(ctx context.Context, caseID, userID uuid.UUID) (*domain.Case, error)
	ListDocuments(ctx context.Context, caseID, userID uuid.UUID) ([]domain.Document, error)
	GetDocument(ctx context.Context, docID, userID uuid.UUID) (*domain.Document, error)
	EditDocument(ctx context.Context, input EditDocumentInput) (*domain.Document, error)
	ApproveDocument(ctx context.Context, docID, userID uuid.UUID) (*domain.Document, error)
	MarkPrinted(ctx context.Context, docID, userID uuid.UUID) (*domain.Document, error)
	ListDocumentVersions(ctx context.Context, docID, userID uuid.UUID) ([]domain.DocumentVersion, error)
	FailStage(ctx context.Context, c *domain.Case, message string) error
	Wait()
}

type caseService struct {
	caseRepo  port.CaseRepository
	fileRepo  port.CaseFileRepository
	docRepo   port.DocumentRepository
	caseTypes port.CaseTypeRegistry
	storage   port.FileStore
	extractor Extractor
	generator DocumentGenerator
	notifier  port.Notifier
	cfg       CaseServiceConfig
	wg        sync.WaitGroup
}

// NewCaseService creates a new CaseService implementation. notifier may be nil.
func NewCaseService(
	caseRepo port.CaseRepository,
	fileRepo port.CaseFileRepository,
	docRepo port.DocumentRepository,
	caseTypes port.CaseTypeRegistry,
	storage port.FileStore,
	extractor Extractor,
	generator DocumentGenerator,
	notifier port.Notifier,
	cfg CaseServiceConfig,
) CaseService {
	if cfg.ExtractionTimeout <= 0 {
		cfg.ExtractionTimeout = 5 * time.Minute
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = 5 * time.Minute
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = domain.AIModelClaude
	}
	return &caseService{
		caseRepo:  caseRepo,
		fileRepo:  fileRepo,
		docRepo:   docRepo,
		caseTypes: caseTypes,
		storage:   storage,
		extractor: extractor,
		generator: generator,
		notifier:  notifier,
		cfg:       cfg,
	}
}

func (s *caseService) Create(ctx context.Context, input CreateCaseInput) (*domain.Case, error) {
	if _, err := s.caseTypes.Get(input.CaseTypeID); err != nil {
		return nil, err
	}
	model, ok := domain.ParseAIModel(input.AIModel)
	if !ok {
		model = s.cfg.DefaultModel
	}
	c := &domain.Case{
		ID:            uuid.New(),
		UserID:        input.UserID,
		ContactEmail:  strings.TrimSpace(input.ContactEmail),
		CaseTypeID:    input.CaseTypeID,
		AIModel:       model,
		Status:        domain.CaseStatusCreated,
		ExtractedData: domain.ExtractedData{},
		MissingFields: domain.StringList{},
		Suggestions:   domain.StringList{},
	}
	if err := s.caseRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating case: %w", err)
	}
	log.Printf("caseService.Create: case %s (%s, model %s) opened by user %s", c.ID, c.CaseTypeID, c.AIModel, c.UserID)
	return c, nil
}

func (s *caseService) Get(ctx context.Context, caseID, userID uuid.UUID) (*domain.Case, error) {
	return s.loadOwned(ctx, caseID, userID)
}

func (s *caseService) List(ctx context.Context, filter port.CaseFilter) ([]domain.Case, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.caseRepo.List(ctx, filter)
}

func (s *caseService) AttachFile(ctx context.Context, input AttachFileInput) (*domain.CaseFile, error) {
	c, err := s.loadOwned(ctx, input.CaseID, input.UserID)
	if err != nil {
		return nil, err
	}
	switch c.Status {
	case domain.CaseStatusCreated, domain.CaseStatusUploading, domain.CaseStatusNeedsInfo, domain.CaseStatusError:
	default:
		return nil, fmt.Errorf("%w: cannot attach files while case is %s", domain.ErrInvalidTransition, c.Status)
	}

	if input.Body == nil {
		return nil, &domain.ValidationError{Field: "file", Message: "is required"}
	}
	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if maxBytes > 0 && input.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Content type is detected from magic bytes, not trusted from the client.
	head := make([]byte, 512)
	n, err := io.ReadFull(input.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	fileType, ok := domain.AllowedContentTypes[contentType]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = defaultCategory
	}
	fileID := uuid.New()
	key := fmt.Sprintf("cases/%s/%s.%s", c.ID, fileID, fileType)

	log.Printf("caseService.AttachFile: uploading %s (%s, %d bytes) to case %s", input.FileName, contentType, input.Size, c.ID)
	out, err := s.storage.Put(ctx, key, io.MultiReader(bytes.NewReader(head), input.Body), contentType, input.Size)
	if err != nil {
		log.Printf("caseService.AttachFile: upload failed for case %s: %v", c.ID, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	f := &domain.CaseFile{
		ID:          fileID,
		CaseID:      c.ID,
		Category:    category,
		FileName:    input.FileName,
		ContentType: contentType,
		Size:        input.Size,
		StorageKey:  key,
		URL:         out.Location,
	}
	if err := s.fileRepo.Create(ctx, f); err != nil {
		if delErr := s.storage.Remove(ctx, key); delErr != nil {
			log.Printf("caseService.AttachFile: orphaned object %s: %v", key, delErr)
		}
		return nil, fmt.Errorf("recording file: %w", err)
	}

	if c.Status == domain.CaseStatusCreated {
		if err := s.caseRepo.TransitionStatus(ctx, c.ID, domain.CaseStatusCreated, domain.CaseStatusUploading, ""); err != nil &&
			!errors.Is(err, domain.ErrConcurrentTransition) {
			return nil, fmt.Errorf("updating case status: %w", err)
		}
	}
	return f, nil
}

func (s *caseService) ListFiles(ctx context.Context, caseID, userID uuid.UUID) ([]domain.CaseFile, error) {
	if _, err := s.loadOwned(ctx, caseID, userID); err != nil {
		return nil, err
	}
	files, err := s.fileRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if s.cfg.SignedURLTTL <= 0 {
		return files, nil
	}
	for i := range files {
		url, err := s.storage.SignedURL(ctx, files[i].StorageKey, s.cfg.SignedURLTTL)
		if err != nil {
			log.Printf("caseService.ListFiles: signing %s: %v", files[i].StorageKey, err)
			continue
		}
		files[i].URL = url
	}
	return files, nil
}

// Process moves the case to EXTRACTING and runs extraction in the
// background. The returned case reflects the EXTRACTING state.
func (s *caseService) Process(ctx context.Context, caseID, userID uuid.UUID) (*domain.Case, error) {
	c, err := s.loadOwned(ctx, caseID, userID)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.CaseStatusUploading && c.Status != domain.CaseStatusError {
		return nil, &domain.TransitionError{From: string(c.Status), To: string(domain.CaseStatusExtracting)}
	}
	count, err := s.fileRepo.CountByCase(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("counting files: %w", err)
	}
	if count == 0 {
		return nil, domain.ErrNoFiles
	}

	if err := s.caseRepo.TransitionStatus(ctx, c.ID, c.Status, domain.CaseStatusExtracting, ""); err != nil {
		return nil, err
	}
	c.Status = domain.CaseStatusExtracting
	c.ErrorMessage = ""

	// Copy before launching the goroutine so the caller's value is independent of background work.
	result := *c
	background := *c
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		extractCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ExtractionTimeout)
		defer cancel()
		if err := s.RunExtraction(extractCtx, &background); err != nil {
			log.Printf("caseService.Process: extraction for case %s ended with error: %v", background.ID, err)
		}
	}()
	return &result, nil
}

// RunExtraction is the synchronous extraction stage for a case already in
// EXTRACTING. It always leaves the case in NEEDS_INFO, REVIEWING or ERROR
// unless another operation moved it first.
func (s *caseService) RunExtraction(ctx context.Context, c *domain.Case) error {
	ct, err := s.caseTypes.Get(c.CaseTypeID)
	if err != nil {
		return s.fail(ctx, c, domain.CaseStatusExtracting, err.Error(), domain.ErrExtractionFailed)
	}
	files, err := s.fileRepo.ListByCase(ctx, c.ID)
	if err != nil {
		return s.fail(ctx, c, domain.CaseStatusExtracting, "listing files: "+err.Error(), domain.ErrExtractionFailed)
	}
	if s.cfg.AnalyzeImages {
		s.loadContent(ctx, files)
	}

	log.Printf("caseService.RunExtraction: extracting case %s (%s) from %d files", c.ID, ct.ID, len(files))
	res := s.extractor.Extract(ctx, extraction.Request{CaseType: ct, Files: files, Model: string(c.AIModel)})
	if !res.Success {
		return s.fail(ctx, c, domain.CaseStatusExtracting, res.Error, domain.ErrExtractionFailed)
	}

	data := res.Data
	if data == nil {
		data = domain.ExtractedData{}
	}
	// Values the user typed in earlier survive a re-extraction.
	for section, fields := range c.ExtractedData {
		for key, d := range fields {
			if d.Source == domain.SourceManual {
				data.Set(section, key, d)
			}
		}
	}
	missing := data.MissingFields(ct.RequiredFieldIDs())

	updated := *c
	updated.ExtractedData = data
	updated.MissingFields = domain.StringList(missing)
	updated.Suggestions = domain.StringList(res.Suggestions)
	updated.ErrorMessage = ""
	updated.Status = domain.CaseStatusReviewing
	if len(missing) > 0 {
		updated.Status = domain.CaseStatusNeedsInfo
	}

	if err := s.caseRepo.UpdateState(ctx, &updated, domain.CaseStatusExtracting); err != nil {
		if errors.Is(err, domain.ErrConcurrentTransition) {
			return err
		}
		return s.fail(ctx, c, domain.CaseStatusExtracting, "saving extracted data: "+err.Error(), domain.ErrExtractionFailed)
	}
	*c = updated
	log.Printf("caseService.RunExtraction: case %s -> %s (%d missing, model %s, %dms)",
		c.ID, c.Status, len(missing), res.ModelUsed, res.ElapsedMs)
	s.notify(ctx, c)
	return nil
}

func (s *caseService) loadContent(ctx context.Context, files []domain.CaseFile) {
	for i := range files {
		content, err := s.storage.Get(ctx, files[i].StorageKey)
		if err != nil {
			log.Printf("caseService.loadContent: download of %s failed: %v", files[i].StorageKey, err)
			continue
		}
		files[i].Content = content
	}
}

func (s *caseService) SupplyFields(ctx context.Context, input SupplyFieldsInput) (*domain.Case, error) {
	if len(input.Fields) == 0 {
		return nil, &domain.ValidationError{Field: "fields", Message: "at least one field is required"}
	}
	c, err := s.loadOwned(ctx, input.CaseID, input.UserID)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.CaseStatusNeedsInfo && c.Status != domain.CaseStatusReviewing {
		return nil, fmt.Errorf("%w: cannot supply fields while case is %s", domain.ErrInvalidTransition, c.Status)
	}
	ct, err := s.caseTypes.Get(c.CaseTypeID)
	if err != nil {
		return nil, err
	}

	data := c.ExtractedData.Clone()
	for key, value := range input.Fields {
		section, field := ct.SectionFor(key), key
		if sec, f, ok := strings.Cut(key, "."); ok {
			section, field = sec, f
		}
		if field == "" {
			return nil, &domain.ValidationError{Field: key, Message: "invalid field key"}
		}
		var v *string
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			v = domain.StringPtr(trimmed)
		}
		data.Set(section, field, domain.NewFieldDatum(v, 1.0, domain.SourceManual, false))
	}
	missing := data.MissingFields(ct.RequiredFieldIDs())

	updated := *c
	updated.ExtractedData = data
	updated.MissingFields = domain.StringList(missing)
	if c.Status == domain.CaseStatusNeedsInfo && len(missing) == 0 {
		updated.Status = domain.CaseStatusReviewing
	}
	if err := s.caseRepo.UpdateState(ctx, &updated, c.Status); err != nil {
		return nil, err
	}
	if updated.Status != c.Status {
		log.Printf("caseService.SupplyFields: case %s complete, moving to %s", c.ID, updated.Status)
		s.notify(ctx, &updated)
	}
	return &updated, nil
}

// Generate renders the case's document synchronously. On success the case
// returns to REVIEWING with a new BORRADOR document at version 1.
func (s *caseService) Generate(ctx context.Context, caseID, userID uuid.UUID) (*domain.Document, error) {
	c, err := s.loadOwned(ctx, caseID, userID)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.CaseStatusReviewing && c.Status != domain.CaseStatusError {
		return nil, &domain.TransitionError{From: string(c.Status), To: string(domain.CaseStatusGenerating)}
	}
	if c.ExtractedData.IsEmpty() {
		return nil, domain.ErrNoExtractedData
	}
	ct, err := s.caseTypes.Get(c.CaseTypeID)
	if err != nil {
		return nil, err
	}

	if err := s.caseRepo.TransitionStatus(ctx, c.ID, c.Status, domain.CaseStatusGenerating, ""); err != nil {
		return nil, err
	}
	c.Status = domain.CaseStatusGenerating

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerationTimeout)
	defer cancel()
	res := s.generator.Generate(genCtx, generation.GenerateRequest{
		CaseType: ct,
		Data:     c.ExtractedData,
		Model:    string(c.AIModel),
	})
	// The caller may be gone by now; the stage must still settle.
	settleCtx, settle := detached(ctx)
	defer settle()
	if !res.Success {
		return nil, s.fail(settleCtx, c, domain.CaseStatusGenerating, res.Error, domain.ErrGenerationFailed)
	}

	doc := &domain.Document{
		ID:      uuid.New(),
		CaseID:  c.ID,
		Type:    ct.ID,
		Content: res.Content,
		Status:  domain.DocumentStatusDraft,
		Version: 1,
	}
	if res.TemplateID != "" {
		doc.TemplateID = &res.TemplateID
	}
	if err := s.docRepo.CompleteGeneration(settleCtx, doc); err != nil {
		if errors.Is(err, domain.ErrConcurrentTransition) {
			return nil, err
		}
		return nil, s.fail(settleCtx, c, domain.CaseStatusGenerating, "saving document: "+err.Error(), domain.ErrGenerationFailed)
	}
	c.Status = domain.CaseStatusReviewing
	log.Printf("caseService.Generate: document %s created for case %s (template=%t, %d missing, %dms)",
		doc.ID, c.ID, res.UsedTemplate, len(res.MissingFields), res.ElapsedMs)
	s.notify(settleCtx, c)
	return doc, nil
}

func (s *caseService) Approve(ctx context.Context, caseID, userID uuid.UUID) (*domain.Case, error) {
	c, err := s.loadOwned(ctx, caseID, userID)
	if err != nil {
		return nil, err
	}
	if !c.Status.CanTransitionTo(domain.CaseStatusCompleted) {
		return nil, &domain.TransitionError{From: string(c.Status), To: string(domain.CaseStatusCompleted)}
	}
	if err := s.caseRepo.TransitionStatus(ctx, c.ID, c.Status, domain.CaseStatusCompleted, ""); err != nil {
		return nil, err
	}
	c.Status = domain.CaseStatusCompleted
	s.notify(ctx, c)
	return c, nil
}

func (s *caseService) ListDocuments(ctx context.Context, caseID, userID uuid.UUID) ([]domain.Document, error) {
	if _, err := s.loadOwned(ctx, caseID, userID); err != nil {
		return nil, err
	}
	return s.docRepo.ListByCase(ctx, caseID)
}

func (s *caseService) GetDocument(ctx context.Context, docID, userID uuid.UUID) (*domain.Document, error) {
	doc, _, err := s.loadOwnedDocument(ctx, docID, userID)
	return doc, err
}

// EditDocument applies an instruction through the generator. A failed edit
// leaves the document and the case untouched.
func (s *caseService) EditDocument(ctx context.Context, input EditDocumentInput) (*domain.Document, error) {
	instruction := strings.TrimSpace(input.Instruction)
	if instruction == "" {
		return nil, &domain.ValidationError{Field: "instruction", Message: "must not be empty"}
	}
	doc, c, err := s.loadOwnedDocument(ctx, input.DocumentID, input.UserID)
	if err != nil {
		return nil, err
	}
	if !doc.Status.Editable() {
		return nil, domain.ErrDocumentLocked
	}

	model := input.Model
	if model == "" {
		model = string(c.AIModel)
	}
	genCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerationTimeout)
	defer cancel()
	res := s.generator.Edit(genCtx, generation.EditRequest{Content: doc.Content, Instruction: instruction, Model: model})
	if !res.Success {
		log.Printf("caseService.EditDocument: edit of document %s failed: %s", doc.ID, res.Error)
		return nil, fmt.Errorf("%w: %s", domain.ErrEditFailed, res.Error)
	}

	updated := *doc
	updated.Content = res.Content
	updated.Version = doc.Version + 1
	updated.Status = domain.DocumentStatusInReview
	if err := s.docRepo.UpdateContent(ctx, &updated, doc.Version, instruction); err != nil {
		return nil, err
	}
	log.Printf("caseService.EditDocument: document %s now at version %d", updated.ID, updated.Version)
	return &updated, nil
}

func (s *caseService) ApproveDocument(ctx context.Context, docID, userID uuid.UUID) (*domain.Document, error) {
	return s.moveDocument(ctx, docID, userID, domain.DocumentStatusApproved)
}

func (s *caseService) MarkPrinted(ctx context.Context, docID, userID uuid.UUID) (*domain.Document, error) {
	return s.moveDocument(ctx, docID, userID, domain.DocumentStatusPrinted)
}

func (s *caseService) moveDocument(ctx context.Context, docID, userID uuid.UUID, to domain.DocumentStatus) (*domain.Document, error) {
	doc, _, err := s.loadOwnedDocument(ctx, docID, userID)
	if err != nil {
		return nil, err
	}
	if !doc.Status.CanTransitionTo(to) {
		return nil, &domain.TransitionError{From: string(doc.Status), To: string(to)}
	}
	if err := s.docRepo.TransitionStatus(ctx, doc.ID, doc.Status, to); err != nil {
		return nil, err
	}
	doc.Status = to
	return doc, nil
}

func (s *caseService) ListDocumentVersions(ctx context.Context, docID, userID uuid.UUID) ([]domain.DocumentVersion, error) {
	doc, _, err := s.loadOwnedDocument(ctx, docID, userID)
	if err != nil {
		return nil, err
	}
	return s.docRepo.ListVersions(ctx, doc.ID)
}

// FailStage moves a case stuck in a processing stage to ERROR.
func (s *caseService) FailStage(ctx context.Context, c *domain.Case, message string) error {
	if !c.Status.CanTransitionTo(domain.CaseStatusError) {
		return &domain.TransitionError{From: string(c.Status), To: string(domain.CaseStatusError)}
	}
	if err := s.caseRepo.TransitionStatus(ctx, c.ID, c.Status, domain.CaseStatusError, message); err != nil {
		return err
	}
	c.Status = domain.CaseStatusError
	c.ErrorMessage = message
	s.notify(ctx, c)
	return nil
}

// Wait blocks until background extractions have finished.
func (s *caseService) Wait() {
	s.wg.Wait()
}

// detached keeps ctx's values but not its cancellation, bounded by
// stateWriteTimeout. Stage results are written with it.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), stateWriteTimeout)
}

// fail records a stage failure and returns it wrapped in kind.
func (s *caseService) fail(ctx context.Context, c *domain.Case, from domain.CaseStatus, message string, kind error) error {
	if message == "" {
		message = kind.Error()
	}
	log.Printf("caseService: case %s failed in %s: %s", c.ID, from, message)
	c.Status = from
	if err := s.FailStage(ctx, c, message); err != nil {
		log.Printf("caseService: recording failure for case %s: %v", c.ID, err)
	}
	return fmt.Errorf("%w: %s", kind, message)
}

func (s *caseService) notify(ctx context.Context, c *domain.Case) {
	if s.notifier == nil {
		return
	}
	switch c.Status {
	case domain.CaseStatusNeedsInfo, domain.CaseStatusReviewing, domain.CaseStatusError, domain.CaseStatusCompleted:
	default:
		return
	}
	if err := s.notifier.NotifyCaseStatus(ctx, c); err != nil {
		log.Printf("caseService.notify: case %s (%s): %v", c.ID, c.Status, err)
	}
}

func (s *caseService) loadOwned(ctx context.Context, caseID, userID uuid.UUID) (*domain.Case, error) {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return c, nil
}

func (s *caseService) loadOwnedDocument(ctx context.Context, docID, userID uuid.UUID) (*domain.Document, *domain.Case, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.loadOwned(ctx, doc.CaseID, userID)
	if err != nil {
		return nil, nil, err
	}
	return doc, c, nil
}
