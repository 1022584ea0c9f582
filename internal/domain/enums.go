package domain

import "strings"

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AIModel identifies one of the interchangeable completion providers.
type AIModel string

const (
	AIModelClaude AIModel = "claude"
	AIModelGemini AIModel = "gemini"
	AIModelOpenAI AIModel = "openai"
)

// AIModels lists the closed set of supported providers in preference order.
var AIModels = []AIModel{AIModelClaude, AIModelGemini, AIModelOpenAI}

// ParseAIModel normalises a caller-supplied model name. ok is false for
// anything outside the enumeration.
func ParseAIModel(s string) (AIModel, bool) {
	m := AIModel(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AIModels {
		if m == known {
			return m, true
		}
	}
	return "", false
}

// CaseStatus is the state of a case in the processing pipeline.
type CaseStatus string

const (
	CaseStatusCreated    CaseStatus = "CREATED"
	CaseStatusUploading  CaseStatus = "UPLOADING"
	CaseStatusExtracting CaseStatus = "EXTRACTING"
	CaseStatusNeedsInfo  CaseStatus = "NEEDS_INFO"
	CaseStatusReviewing  CaseStatus = "REVIEWING"
	CaseStatusGenerating CaseStatus = "GENERATING"
	CaseStatusCompleted  CaseStatus = "COMPLETED"
	CaseStatusError      CaseStatus = "ERROR"
)

var caseTransitions = map[CaseStatus][]CaseStatus{
	CaseStatusCreated:    {CaseStatusUploading},
	CaseStatusUploading:  {CaseStatusExtracting},
	CaseStatusExtracting: {CaseStatusNeedsInfo, CaseStatusReviewing},
	CaseStatusNeedsInfo:  {CaseStatusReviewing},
	CaseStatusReviewing:  {CaseStatusGenerating, CaseStatusCompleted},
	CaseStatusGenerating: {CaseStatusReviewing},
	CaseStatusError:      {CaseStatusExtracting, CaseStatusGenerating},
}

// IsTerminal reports whether no further transition can leave the status.
func (s CaseStatus) IsTerminal() bool {
	return s == CaseStatusCompleted
}

// Valid reports whether s is one of the known statuses.
func (s CaseStatus) Valid() bool {
	if s == CaseStatusCompleted {
		return true
	}
	_, ok := caseTransitions[s]
	return ok
}

// CanTransitionTo reports whether the state machine allows s -> next.
// ERROR is reachable from every non-terminal state.
func (s CaseStatus) CanTransitionTo(next CaseStatus) bool {
	if next == CaseStatusError {
		return s.Valid() && !s.IsTerminal() && s != CaseStatusError
	}
	for _, allowed := range caseTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DocumentStatus is the lifecycle of a rendered legal instrument.
type DocumentStatus string

const (
	DocumentStatusDraft    DocumentStatus = "BORRADOR"
	DocumentStatusInReview DocumentStatus = "EN_REVISION"
	DocumentStatusApproved DocumentStatus = "APROBADO"
	DocumentStatusPrinted  DocumentStatus = "IMPRESO"
)

var documentTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusDraft:    {DocumentStatusInReview, DocumentStatusApproved},
	DocumentStatusInReview: {DocumentStatusDraft, DocumentStatusApproved},
	DocumentStatusApproved: {DocumentStatusPrinted},
}

// CanTransitionTo reports whether the document may move from s to next.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	for _, allowed := range documentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Editable reports whether the content may still be rewritten.
func (s DocumentStatus) Editable() bool {
	return s == DocumentStatusDraft || s == DocumentStatusInReview
}

// Field data types understood by the generation stage.
const (
	DataTypeString   = "string"
	DataTypeDate     = "date"
	DataTypeCurrency = "currency"
	DataTypeInteger  = "integer"
	DataTypeCURP     = "curp"
	DataTypeRFC      = "rfc"
)

// Provenance sources for field data not produced by an extractor.
const (
	SourceManual = "manual"
)
