package supabase

import (
	"context"

	"github.com/edukia/academia/core/academics"
)

// stateActive is the estado value marking a semestreperiodo row as current.
const stateActive = "Activo"

// AcademicsRepository implements academics.Repository against the catalog
// and notaparcial tables. Domain models carry the wire column names in their
// json tags, so rows decode straight into them.
type AcademicsRepository struct {
	client *Client
}

var _ academics.Repository = (*AcademicsRepository)(nil)

func NewAcademicsRepository(client *Client) *AcademicsRepository {
	return &AcademicsRepository{client: client}
}

func (repo *AcademicsRepository) ListActiveSemesterPeriods(ctx context.Context) ([]academics.SemesterPeriod, error) {
	var rows []academics.SemesterPeriod
	err := repo.client.Select(ctx, "semestreperiodo", Filters{"estado": Eq(stateActive)}, "*", &rows)
	return rows, err
}

func (repo *AcademicsRepository) ListActiveSemesterPeriodsByPeriod(ctx context.Context, periodID int) ([]academics.SemesterPeriod, error) {
	var rows []academics.SemesterPeriod
	err := repo.client.Select(ctx, "semestreperiodo", Filters{
		"periodoid": Eq(periodID),
		"estado":    Eq(stateActive),
	}, "*", &rows)
	return rows, err
}

func (repo *AcademicsRepository) GetSemesterPeriod(ctx context.Context, id int) (academics.SemesterPeriod, error) {
	var rows []academics.SemesterPeriod
	if err := repo.client.Select(ctx, "semestreperiodo", Filters{"semestreperiodoid": Eq(id)}, "*", &rows); err != nil {
		return academics.SemesterPeriod{}, err
	}
	if len(rows) == 0 {
		return academics.SemesterPeriod{}, academics.ErrSemesterPeriodAbsent
	}
	return rows[0], nil
}

func (repo *AcademicsRepository) ListPeriods(ctx context.Context) ([]academics.Period, error) {
	var rows []academics.Period
	err := repo.client.Select(ctx, "periodo", nil, "*", &rows)
	return rows, err
}

func (repo *AcademicsRepository) ListSemesters(ctx context.Context) ([]academics.Semester, error) {
	var rows []academics.Semester
	err := repo.client.Select(ctx, "semestre", nil, "*", &rows)
	return rows, err
}

func (repo *AcademicsRepository) GetSemester(ctx context.Context, id int) (academics.Semester, error) {
	var rows []academics.Semester
	if err := repo.client.Select(ctx, "semestre", Filters{"semestreid": Eq(id)}, "*", &rows); err != nil {
		return academics.Semester{}, err
	}
	if len(rows) == 0 {
		return academics.Semester{}, academics.ErrNotFound
	}
	return rows[0], nil
}

func (repo *AcademicsRepository) ListSubjects(ctx context.Context) ([]academics.Subject, error) {
	var rows []academics.Subject
	err := repo.client.Select(ctx, "asignatura", nil, "*", &rows)
	return rows, err
}

func (repo *AcademicsRepository) ListProfessors(ctx context.Context) ([]academics.Professor, error) {
	var rows []academics.Professor
	err := repo.client.Select(ctx, "profesor", nil, "*", &rows)
	return rows, err
}

func (repo *AcademicsRepository) GetProfessor(ctx context.Context, id int) (academics.Professor, error) {
	var rows []academics.Professor
	if err := repo.client.Select(ctx, "profesor", Filters{"profesorid": Eq(id)}, "*", &rows); err != nil {
		return academics.Professor{}, err
	}
	if len(rows) == 0 {
		return academics.Professor{}, academics.ErrNotFound
	}
	return rows[0], nil
}

func (repo *AcademicsRepository) ListStudents(ctx context.Context) ([]academics.Student, error) {
	var rows []academics.Student
	err := repo.client.Select(ctx, "alumno", nil, "*", &rows)
	return rows, err
}

func (repo *AcademicsRepository) ListSections(ctx context.Context) ([]academics.Section, error) {
	var rows []academics.Section
	err := repo.client.Select(ctx, "seccion", nil, "*", &rows)
	return rows, err
}

func (repo *AcademicsRepository) ListAssignmentsBySection(ctx context.Context, sectionID int) ([]academics.ProfessorAssignment, error) {
	var rows []academics.ProfessorAssignment
	err := repo.client.Select(ctx, "profesorasignatura", Filters{"seccionid": Eq(sectionID)}, "*", &rows)
	return rows, err
}

func (repo *AcademicsRepository) ListAssignments(ctx context.Context, subjectID, sectionID int) ([]academics.ProfessorAssignment, error) {
	var rows []academics.ProfessorAssignment
	err := repo.client.Select(ctx, "profesorasignatura", Filters{
		"asignaturaid": Eq(subjectID),
		"seccionid":    Eq(sectionID),
	}, "*", &rows)
	return rows, err
}

func (repo *AcademicsRepository) ListGrades(ctx context.Context) ([]academics.Grade, error) {
	var rows []academics.Grade
	err := repo.client.Select(ctx, "notaparcial", nil, "*", &rows)
	return rows, err
}

func (repo *AcademicsRepository) CreateGrade(ctx context.Context, ng academics.NewGrade) (academics.Grade, error) {
	var rows []academics.Grade
	if err := repo.client.Insert(ctx, "notaparcial", ng, &rows); err != nil {
		return academics.Grade{}, err
	}
	if len(rows) == 0 {
		return academics.Grade{}, academics.ErrNotFound
	}
	return rows[0], nil
}

func (repo *AcademicsRepository) UpdateGrade(ctx context.Context, id int, ug academics.UpdateGrade) (academics.Grade, error) {
	body := map[string]interface{}{}
	if ug.P1 != nil {
		body["notap1"] = *ug.P1
	}
	if ug.P2 != nil {
		body["notap2"] = *ug.P2
	}
	if ug.Date != nil {
		body["fecha"] = *ug.Date
	}

	var rows []academics.Grade
	if err := repo.client.Update(ctx, "notaparcial", "notaid", id, body, &rows); err != nil {
		return academics.Grade{}, err
	}
	if len(rows) == 0 {
		return academics.Grade{}, academics.ErrNotFound
	}
	return rows[0], nil
}

func (repo *AcademicsRepository) DeleteGrade(ctx context.Context, id int) error {
	return repo.client.Delete(ctx, "notaparcial", "notaid", id)
}
