package academics

import (
	"strconv"
	"strings"

	"github.com/volatiletech/null/v8"
)

type Professor struct {
	ID        int         `json:"profesorid"`
	FirstName string      `json:"nombre"`
	LastName  string      `json:"apellidos"`
	Email     null.String `json:"correoinstitucional"`
}

func (p Professor) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

type Student struct {
	ID        int    `json:"alumnoid"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellidos"`
}

func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

type Subject struct {
	ID      int      `json:"asignaturaid"`
	Code    string   `json:"codigo"`
	Name    string   `json:"nombre"`
	Credits null.Int `json:"creditos"`
}

// LevelCode extracts the numeric level block from a subject code such as
// "SIS-MAT-104" (-> 104). Returns 0 when the code has no such block.
func (s Subject) LevelCode() int {
	parts := strings.Split(strings.TrimSpace(s.Code), "-")
	if len(parts) < 3 {
		return 0
	}
	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return n
}

type Section struct {
	ID   int    `json:"seccionid"`
	Name string `json:"nombre"`
}

type Period struct {
	ID   int    `json:"periodoid"`
	Name string `json:"nombre"`
}

type Semester struct {
	ID    int         `json:"semestreid"`
	Level string      `json:"nivel"`
	Code  null.String `json:"codigo"`
	Name  null.String `json:"nombre"`
}

// LevelNumber is the academic level used to window subject codes
// (level 1 -> 100..199). Falls back to the row id when the code is not numeric.
func (s Semester) LevelNumber() int {
	if n, err := strconv.Atoi(strings.TrimSpace(s.Code.String)); err == nil {
		return n
	}
	return s.ID
}

type SemesterPeriod struct {
	ID         int    `json:"semestreperiodoid"`
	PeriodID   int    `json:"periodoid"`
	SemesterID int    `json:"semestreid"`
	State      string `json:"estado"`
}

// PeriodLevel is the consolidated period/level row served to clients.
type PeriodLevel struct {
	SemesterPeriodID int    `json:"semestreperiodoid"`
	PeriodID         int    `json:"periodoid"`
	PeriodName       string `json:"periodo_nombre"`
	SemesterID       int    `json:"semestreid"`
	Level            string `json:"nivel"`
}

// Level is a semester row decorated with its period linkage, kept for
// clients that still load levels per period.
type Level struct {
	Semester
	SemesterPeriodID int `json:"semestreperiodoid"`
	PeriodID         int `json:"periodoid"`
}

type ProfessorAssignment struct {
	ProfessorID int `json:"profesorid"`
	SubjectID   int `json:"asignaturaid"`
	SectionID   int `json:"seccionid"`
}

type Grade struct {
	ID               int          `json:"notaid"`
	SemesterPeriodID null.Int     `json:"semestreperiodoid"`
	SectionID        null.Int     `json:"seccionid"`
	SubjectID        null.Int     `json:"asignaturaid"`
	ProfessorID      null.Int     `json:"profesorid"`
	StudentID        null.Int     `json:"alumnoid"`
	P1               null.Float64 `json:"notap1"`
	P2               null.Float64 `json:"notap2"`
	Date             null.String  `json:"fecha"`
}

// EnrichedGrade is a grade row decorated with catalog display names.
type EnrichedGrade struct {
	ID               int          `json:"notaid"`
	PeriodID         null.Int     `json:"periodoid"`
	PeriodName       string       `json:"periodo_nombre"`
	SemesterID       null.Int     `json:"semestreid"`
	Level            string       `json:"nivel"`
	SectionID        null.Int     `json:"seccionid"`
	SectionName      string       `json:"seccion_nombre"`
	SubjectID        null.Int     `json:"asignaturaid"`
	SubjectName      string       `json:"asignatura_nombre"`
	ProfessorID      null.Int     `json:"profesorid"`
	ProfessorName    string       `json:"profesor_nombre"`
	StudentID        null.Int     `json:"alumnoid"`
	StudentName      string       `json:"alumno_nombre"`
	P1               null.Float64 `json:"notap1"`
	P2               null.Float64 `json:"notap2"`
	Date             null.String  `json:"fecha"`
	SemesterPeriodID null.Int     `json:"semestreperiodoid,omitempty"`
}

// NewGrade contains the information needed to record a partial grade.
type NewGrade struct {
	SemesterPeriodID int          `json:"semestreperiodoid" validate:"required"`
	SectionID        int          `json:"seccionid" validate:"required"`
	SubjectID        int          `json:"asignaturaid" validate:"required"`
	ProfessorID      int          `json:"profesorid" validate:"required"`
	StudentID        int          `json:"alumnoid" validate:"required"`
	P1               null.Float64 `json:"notap1"`
	P2               null.Float64 `json:"notap2"`
	Date             null.String  `json:"fecha"`
}

// UpdateGrade defines what may be modified on an existing grade row; nil
// fields are left untouched.
type UpdateGrade struct {
	P1   *float64 `json:"notap1"`
	P2   *float64 `json:"notap2"`
	Date *string  `json:"fecha"`
}
