package schedule

import "github.com/volatiletech/null/v8"

// DocumentType is a tipodocumento catalog row.
type DocumentType struct {
	ID          int         `json:"tipodocumentoid"`
	Name        string      `json:"nombre"`
	Description null.String `json:"descripcion"`
}

// Entry is a cronogramadocumento row: a delivery window for one document
// type within a period.
type Entry struct {
	ID             int         `json:"cronogramaid"`
	PeriodID       int         `json:"periodoid"`
	DocumentTypeID int         `json:"tipodocumentoid"`
	StartDate      null.String `json:"fechainicio"`
	EndDate        null.String `json:"fechafin"`
	Description    null.String `json:"descripcion"`
}

// EnrichedEntry is an entry decorated with catalog display names.
type EnrichedEntry struct {
	Entry
	PeriodName       string `json:"periodo_nombre"`
	DocumentTypeName string `json:"tipo_documento_nombre"`
}

// PeriodOption is the trimmed periodo projection served to the schedule screen.
type PeriodOption struct {
	ID   int    `json:"periodoid"`
	Name string `json:"nombre"`
}

// NewDocumentType contains the information needed to create a document type.
type NewDocumentType struct {
	Name        string      `json:"nombre" validate:"required"`
	Description null.String `json:"descripcion"`
}

// UpdateDocumentType defines what may be modified on a document type; nil
// fields are left untouched.
type UpdateDocumentType struct {
	Name        *string `json:"nombre"`
	Description *string `json:"descripcion"`
}

// NewEntry contains the information needed to create a schedule entry.
type NewEntry struct {
	PeriodID       int         `json:"periodoid" validate:"required"`
	DocumentTypeID int         `json:"tipodocumentoid" validate:"required"`
	StartDate      null.String `json:"fechainicio"`
	EndDate        null.String `json:"fechafin"`
	Description    null.String `json:"descripcion"`
}

// UpdateEntry defines what may be modified on a schedule entry; nil fields
// are left untouched.
type UpdateEntry struct {
	PeriodID       *int    `json:"periodoid"`
	DocumentTypeID *int    `json:"tipodocumentoid"`
	StartDate      *string `json:"fechainicio"`
	EndDate        *string `json:"fechafin"`
	Description    *string `json:"descripcion"`
}
