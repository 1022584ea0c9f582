package port

import "notaria/internal/domain"

// CaseTypeRegistry exposes the static case-type catalog.
type CaseTypeRegistry interface {
	Get(id string) (*domain.CaseType, error)
	List() []*domain.CaseType
}

// TemplateRegistry returns the template text for a case type.
type TemplateRegistry interface {
	Lookup(caseTypeID string) (string, bool)
}
