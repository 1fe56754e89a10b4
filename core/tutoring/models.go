package tutoring

import (
	"github.com/volatiletech/null/v8"
)

// Well-known lifecycle state ids from the estadotutoria catalog. Any other
// state is opaque to the lifecycle rules.
const (
	StatusPending    = 1
	StatusIncomplete = 5
)

const StatusPendingName = "Pendiente"

type Status struct {
	ID   int    `json:"estadotutoriaid"`
	Name string `json:"nombre"`
}

// Tutoring is a tutoria row: one remedial-tutoring assignment tied to a
// failing grade record.
type Tutoring struct {
	ID            int         `json:"tutoriaid"`
	GradeID       null.Int    `json:"notaid"`
	StudentID     null.Int    `json:"alumnoid"`
	SubjectID     null.Int    `json:"asignaturaid"`
	ProfessorID   null.Int    `json:"profesorid"`
	SectionID     null.Int    `json:"seccionid"`
	StatusID      null.Int    `json:"estadotutoriaid"`
	ScheduledDate null.String `json:"fechatutoria"`
	Objective     null.String `json:"objetivotutoria"`
	RequiredCount null.Int    `json:"tutorias_requeridas"`
}

// Detail is a tutoria_detalle row: a single scheduled session of a tutoring
// assignment. ScheduledDate is the civil date "YYYY-MM-DD".
type Detail struct {
	ID            int         `json:"tutoriadetalleid"`
	TutoringID    int         `json:"tutoriaid"`
	ScheduledDate string      `json:"fechatutoria"`
	Topic         null.String `json:"tema"`
	Observations  null.String `json:"observaciones"`
	StatusID      int         `json:"estadotutoriaid"`
	StatusName    string      `json:"estado_nombre,omitempty"`
}

// NewDetail contains the information needed to schedule a session. The
// lifecycle always starts a session as Pending, so no state field is accepted.
type NewDetail struct {
	TutoringID    int         `json:"tutoriaid" validate:"required"`
	ScheduledDate string      `json:"fechatutoria" validate:"required"`
	Topic         null.String `json:"tema"`
	Observations  null.String `json:"observaciones"`
}

// UpdateDetail defines what may be modified on a session; nil fields are
// left untouched.
type UpdateDetail struct {
	ScheduledDate *string `json:"fechatutoria"`
	Topic         *string `json:"tema"`
	Observations  *string `json:"observaciones"`
	StatusID      *int    `json:"estadotutoriaid"`
}

// NewTutoring contains the information needed to assign a tutoring to a
// failing grade. The objective and observations are set later through the
// report registration flow.
type NewTutoring struct {
	GradeID       int         `json:"notaid" validate:"required"`
	StudentID     int         `json:"alumnoid" validate:"required"`
	SubjectID     int         `json:"asignaturaid" validate:"required"`
	ProfessorID   int         `json:"profesorid" validate:"required"`
	SectionID     null.Int    `json:"seccionid"`
	ScheduledDate null.String `json:"fecha"`
	StatusID      null.Int    `json:"estadotutoriaid"`
}

// UpdateTutoring defines what may be modified on an assignment; nil fields
// are left untouched.
type UpdateTutoring struct {
	StatusID      *int    `json:"estadotutoriaid"`
	ScheduledDate *string `json:"fechatutoria"`
	Objective     *string `json:"objetivotutoria"`
	RequiredCount *int    `json:"tutorias_requeridas"`
}

// RegisterReport updates the tutoring objective and required session count
// from the coordinator's report screen.
type RegisterReport struct {
	TutoringID    int    `json:"tutoriaid" validate:"required"`
	Objective     string `json:"objetivotutoria" validate:"required"`
	RequiredCount int    `json:"tutorias_requeridas" validate:"required"`
}

// Notification is a notificacion row written when a tutoring is removed.
type Notification struct {
	UserID  int    `json:"usuarioid"`
	Message string `json:"mensaje"`
	Kind    string `json:"tipo"`
	Date    string `json:"fechanotificacion"`
}

// Candidate is a failing grade not yet covered by a tutoring assignment,
// decorated with catalog display names.
type Candidate struct {
	GradeID       int          `json:"notaid"`
	StudentID     null.Int     `json:"alumnoid"`
	StudentName   string       `json:"alumno_nombre"`
	SubjectID     null.Int     `json:"asignaturaid"`
	SubjectName   string       `json:"asignatura_nombre"`
	P1            null.Float64 `json:"notap1"`
	ProfessorID   null.Int     `json:"profesorid"`
	ProfessorName string       `json:"profesor_nombre"`
	SectionID     null.Int     `json:"seccionid"`
	SectionName   string       `json:"seccion_nombre"`
}

// HistoryEntry is a tutoring assignment decorated with catalog display names.
type HistoryEntry struct {
	Tutoring
	StudentName   string `json:"alumno_nombre"`
	SubjectName   string `json:"asignatura_nombre"`
	ProfessorName string `json:"profesor_nombre"`
	SectionName   string `json:"seccion_nombre"`
	StatusName    string `json:"estado_nombre"`
}

// TeacherSubject is a subject a professor teaches within the selected level,
// with the section it is scheduled in.
type TeacherSubject struct {
	SubjectID   int         `json:"asignaturaid"`
	Code        string      `json:"codigo"`
	Name        string      `json:"nombre"`
	Credits     null.Int    `json:"creditos"`
	SectionID   int         `json:"seccionid"`
	SectionName string      `json:"seccion_nombre"`
}

// AtRiskStudent is a failing grade of one professor joined with its tutoring
// assignment, when one exists.
type AtRiskStudent struct {
	GradeID       int          `json:"notaid"`
	StudentID     null.Int     `json:"alumnoid"`
	StudentName   string       `json:"alumno_nombre"`
	SubjectID     null.Int     `json:"asignaturaid"`
	SubjectName   string       `json:"asignatura_nombre"`
	SubjectCode   string       `json:"asignatura_codigo"`
	SectionID     null.Int     `json:"seccionid"`
	SectionName   string       `json:"seccion_nombre"`
	P1            null.Float64 `json:"notap1"`
	Date          null.String  `json:"fecha"`
	TutoringID    null.Int     `json:"tutoriaid"`
	Objective     string       `json:"objetivotutoria"`
	RequiredCount int          `json:"tutorias_requeridas"`
}

// Format is a formatotutoria catalog row.
type Format struct {
	ID   int    `json:"formatotutoriaid"`
	Name string `json:"nombre"`
}
