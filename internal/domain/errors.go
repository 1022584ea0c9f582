package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrConcurrentTransition = errors.New("case was modified by another operation")
	ErrNoFiles              = errors.New("case has no attached files")
	ErrNoExtractedData      = errors.New("case has no extracted data")
	ErrDocumentLocked       = errors.New("document can no longer be edited")
	ErrVersionConflict      = errors.New("document version changed during edit")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed         = errors.New("file upload to storage failed")
	ErrNoProvider           = errors.New("no AI provider configured")
	ErrExtractionFailed     = errors.New("data extraction failed")
	ErrGenerationFailed     = errors.New("document generation failed")
	ErrEditFailed           = errors.New("document edit failed")

	ErrCaseNotFound     = &NotFoundError{Resource: "case"}
	ErrDocumentNotFound = &NotFoundError{Resource: "document"}
	ErrCaseTypeNotFound = &NotFoundError{Resource: "case type"}
	ErrTemplateNotFound = &NotFoundError{Resource: "template"}
)

// NotFoundError reports a referenced case, document, case type or template
// that does not exist. It matches ErrNotFound and any NotFoundError for the
// same resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	var nf *NotFoundError
	if errors.As(target, &nf) {
		return nf.Resource == e.Resource && (nf.ID == "" || nf.ID == e.ID)
	}
	return false
}

// NewNotFound builds a NotFoundError for a specific id.
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError reports missing or malformed caller input. Never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ProviderError wraps a failed AI provider call or unusable content.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("AI provider %s failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ParseError reports a provider reply that is not in the expected structured form.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable provider response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// TransitionError reports a state-machine move that is not allowed.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
