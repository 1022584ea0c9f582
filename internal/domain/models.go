package domain

import (
	"time"

	"github.com/google/uuid"
)

// FieldDefinition describes one datum a case type collects.
type FieldDefinition struct {
	ID       string `yaml:"id" json:"id"`
	Label    string `yaml:"label" json:"label"`
	DataType string `yaml:"type" json:"data_type"`
	Required bool   `yaml:"required" json:"required"`
	Section  string `yaml:"section" json:"section,omitempty"`
}

// CaseType is the static configuration of a legal instrument category.
type CaseType struct {
	ID                 string            `yaml:"id" json:"id"`
	Name               string            `yaml:"name" json:"name"`
	Description        string            `yaml:"description" json:"description,omitempty"`
	Fields             []FieldDefinition `yaml:"fields" json:"fields"`
	SuggestedDocuments []string          `yaml:"suggested_documents" json:"suggested_documents"`
}

// RequiredFieldIDs returns the ids of required fields in definition order.
func (ct *CaseType) RequiredFieldIDs() []string {
	ids := []string{}
	for _, f := range ct.Fields {
		if f.Required {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// Field returns the definition with the given id.
func (ct *CaseType) Field(id string) (FieldDefinition, bool) {
	for _, f := range ct.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// SectionFor returns the section a field id is stored under.
func (ct *CaseType) SectionFor(id string) string {
	if f, ok := ct.Field(id); ok && f.Section != "" {
		return f.Section
	}
	return DefaultSection
}

// Case is one client matter moving through the pipeline.
type Case struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	UserID        uuid.UUID     `db:"user_id" json:"user_id"`
	ContactEmail  string        `db:"contact_email" json:"contact_email,omitempty"`
	CaseTypeID    string        `db:"case_type_id" json:"case_type_id"`
	AIModel       AIModel       `db:"ai_model" json:"ai_model"`
	Status        CaseStatus    `db:"status" json:"status"`
	ExtractedData ExtractedData `db:"extracted_data" json:"extracted_data"`
	MissingFields StringList    `db:"missing_fields" json:"missing_fields"`
	Suggestions   StringList    `db:"suggestions" json:"suggestions"`
	ErrorMessage  string        `db:"error_message" json:"error_message,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// CaseFile is an uploaded supporting document attached to a case.
type CaseFile struct {
	ID          uuid.UUID `db:"id" json:"id"`
	CaseID      uuid.UUID `db:"case_id" json:"case_id"`
	Category    string    `db:"category" json:"category"`
	FileName    string    `db:"file_name" json:"file_name"`
	ContentType string    `db:"content_type" json:"content_type"`
	Size        int64     `db:"size" json:"size"`
	StorageKey  string    `db:"storage_key" json:"-"`
	URL         string    `db:"url" json:"url"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	// Content is populated only when the file bytes were fetched for image analysis.
	Content []byte `db:"-" json:"-"`
}

// Document is a rendered legal instrument owned by a case.
type Document struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	CaseID     uuid.UUID      `db:"case_id" json:"case_id"`
	Type       string         `db:"type" json:"type"`
	TemplateID *string        `db:"template_id" json:"template_id,omitempty"`
	Content    string         `db:"content" json:"content"`
	Status     DocumentStatus `db:"status" json:"status"`
	Version    int            `db:"version" json:"version"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// DocumentVersion is an immutable snapshot written on every content change.
type DocumentVersion struct {
	DocumentID  uuid.UUID `db:"document_id" json:"document_id"`
	Version     int       `db:"version" json:"version"`
	Content     string    `db:"content" json:"content"`
	Instruction string    `db:"instruction" json:"instruction,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
