package document

import "github.com/volatiletech/null/v8"

// StateSubmitted is the initial state of every uploaded document.
const StateSubmitted = "ENVIADO"

// Document is a documentosubido row: one file delivered by a professor
// against a schedule entry.
type Document struct {
	ID               int         `json:"documentoid"`
	ScheduleID       int         `json:"cronogramaid"`
	ProfessorID      int         `json:"profesorid"`
	SubjectID        int         `json:"asignaturaid"`
	DocumentTypeID   int         `json:"tipodocumentoid"`
	SemesterPeriodID int         `json:"semestreperiodoid"`
	SectionID        int         `json:"seccionid"`
	FileName         string      `json:"nombrearchivo"`
	URL              string      `json:"url"`
	State            string      `json:"estado"`
	UploadedAt       null.String `json:"fechasubida"`
}

// Upload carries a file and its placement metadata. Content is the raw
// bytes of the PDF.
type Upload struct {
	ScheduleID       int    `json:"cronogramaid" validate:"required"`
	SubjectID        int    `json:"asignaturaid" validate:"required"`
	DocumentTypeID   int    `json:"tipodocumentoid" validate:"required"`
	SemesterPeriodID int    `json:"semestreperiodoid" validate:"required"`
	SectionID        int    `json:"seccionid" validate:"required"`
	FileName         string `json:"-" validate:"required"`
	ContentType      string `json:"-"`
	Content          []byte `json:"-"`
}

// ProfessorDocument is the per-professor listing row, flattened for the
// delivery screen.
type ProfessorDocument struct {
	ID       int    `json:"id"`
	Date     string `json:"fecha"`
	Period   string `json:"periodo"`
	Level    string `json:"nivel"`
	Subject  string `json:"asignatura"`
	Format   string `json:"formato"`
	FileName string `json:"archivo"`
	URL      string `json:"url"`
	State    string `json:"estado"`
}
