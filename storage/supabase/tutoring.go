package supabase

import (
	"context"
	"fmt"

	"github.com/edukia/academia/core/academics"
	"github.com/edukia/academia/core/tutoring"
)

// TutoringRepository implements tutoring.Repository against the tutoria,
// tutoria_detalle, estadotutoria, notificacion and formatotutoria tables,
// plus the catalog reads the reporting side joins on.
type TutoringRepository struct {
	client    *Client
	academics *AcademicsRepository
}

var _ tutoring.Repository = (*TutoringRepository)(nil)

func NewTutoringRepository(client *Client) *TutoringRepository {
	return &TutoringRepository{client: client, academics: NewAcademicsRepository(client)}
}

func (repo *TutoringRepository) ListStatuses(ctx context.Context) ([]tutoring.Status, error) {
	var rows []tutoring.Status
	err := repo.client.Select(ctx, "estadotutoria", nil, "*", &rows)
	return rows, err
}

func (repo *TutoringRepository) GetStatus(ctx context.Context, id int) (tutoring.Status, error) {
	var rows []tutoring.Status
	if err := repo.client.Select(ctx, "estadotutoria", Filters{"estadotutoriaid": Eq(id)}, "*", &rows); err != nil {
		return tutoring.Status{}, err
	}
	if len(rows) == 0 {
		return tutoring.Status{}, tutoring.ErrNotFound
	}
	return rows[0], nil
}

func (repo *TutoringRepository) GetStatusByName(ctx context.Context, name string) (tutoring.Status, error) {
	var rows []tutoring.Status
	if err := repo.client.Select(ctx, "estadotutoria", Filters{"nombre": Eq(name)}, "*", &rows); err != nil {
		return tutoring.Status{}, err
	}
	if len(rows) == 0 {
		return tutoring.Status{}, tutoring.ErrNotFound
	}
	return rows[0], nil
}

func (repo *TutoringRepository) ListTutorings(ctx context.Context) ([]tutoring.Tutoring, error) {
	var rows []tutoring.Tutoring
	err := repo.client.Select(ctx, "tutoria", nil, "*", &rows)
	// a missing tutoria table reads as an empty history, not a failure
	if IsNotFound(err) {
		return []tutoring.Tutoring{}, nil
	}
	return rows, err
}

func (repo *TutoringRepository) GetTutoring(ctx context.Context, id int) (tutoring.Tutoring, error) {
	var rows []tutoring.Tutoring
	if err := repo.client.Select(ctx, "tutoria", Filters{"tutoriaid": Eq(id)}, "*", &rows); err != nil {
		return tutoring.Tutoring{}, err
	}
	if len(rows) == 0 {
		return tutoring.Tutoring{}, tutoring.ErrNotFound
	}
	return rows[0], nil
}

func (repo *TutoringRepository) CreateTutoring(ctx context.Context, nt tutoring.NewTutoring) (tutoring.Tutoring, error) {
	body := map[string]interface{}{
		"notaid":       nt.GradeID,
		"alumnoid":     nt.StudentID,
		"asignaturaid": nt.SubjectID,
		"profesorid":   nt.ProfessorID,
	}
	if nt.SectionID.Valid {
		body["seccionid"] = nt.SectionID.Int
	}
	if nt.ScheduledDate.Valid {
		body["fechatutoria"] = nt.ScheduledDate.String
	}
	if nt.StatusID.Valid {
		body["estadotutoriaid"] = nt.StatusID.Int
	}

	var rows []tutoring.Tutoring
	if err := repo.client.Insert(ctx, "tutoria", body, &rows); err != nil {
		return tutoring.Tutoring{}, err
	}
	if len(rows) == 0 {
		return tutoring.Tutoring{}, tutoring.ErrNotFound
	}
	return rows[0], nil
}

func (repo *TutoringRepository) UpdateTutoring(ctx context.Context, id int, ut tutoring.UpdateTutoring) (tutoring.Tutoring, error) {
	body := map[string]interface{}{}
	if ut.StatusID != nil {
		body["estadotutoriaid"] = *ut.StatusID
	}
	if ut.ScheduledDate != nil {
		body["fechatutoria"] = *ut.ScheduledDate
	}
	if ut.Objective != nil {
		body["objetivotutoria"] = *ut.Objective
	}
	if ut.RequiredCount != nil {
		body["tutorias_requeridas"] = *ut.RequiredCount
	}

	var rows []tutoring.Tutoring
	if err := repo.client.Update(ctx, "tutoria", "tutoriaid", id, body, &rows); err != nil {
		return tutoring.Tutoring{}, err
	}
	if len(rows) == 0 {
		return tutoring.Tutoring{}, tutoring.ErrNotFound
	}
	return rows[0], nil
}

func (repo *TutoringRepository) DeleteTutoring(ctx context.Context, id int) error {
	return repo.client.Delete(ctx, "tutoria", "tutoriaid", id)
}

func (repo *TutoringRepository) ListDetails(ctx context.Context, tutoringID int) ([]tutoring.Detail, error) {
	var rows []tutoring.Detail
	err := repo.client.Select(ctx, "tutoria_detalle", Filters{"tutoriaid": Eq(tutoringID)}, "*", &rows)
	return rows, err
}

func (repo *TutoringRepository) GetDetail(ctx context.Context, id int) (tutoring.Detail, error) {
	var rows []tutoring.Detail
	if err := repo.client.Select(ctx, "tutoria_detalle", Filters{"tutoriadetalleid": Eq(id)}, "*", &rows); err != nil {
		return tutoring.Detail{}, err
	}
	if len(rows) == 0 {
		return tutoring.Detail{}, tutoring.ErrNotFound
	}
	return rows[0], nil
}

func (repo *TutoringRepository) CreateDetail(ctx context.Context, nd tutoring.NewDetail) (tutoring.Detail, error) {
	body := map[string]interface{}{
		"tutoriaid":       nd.TutoringID,
		"fechatutoria":    nd.ScheduledDate,
		"estadotutoriaid": tutoring.StatusPending,
	}
	if nd.Topic.Valid {
		body["tema"] = nd.Topic.String
	}
	if nd.Observations.Valid {
		body["observaciones"] = nd.Observations.String
	}

	var rows []tutoring.Detail
	if err := repo.client.Insert(ctx, "tutoria_detalle", body, &rows); err != nil {
		return tutoring.Detail{}, err
	}
	if len(rows) == 0 {
		return tutoring.Detail{}, tutoring.ErrNotFound
	}
	return rows[0], nil
}

func (repo *TutoringRepository) UpdateDetail(ctx context.Context, id int, ud tutoring.UpdateDetail) (tutoring.Detail, error) {
	body := map[string]interface{}{}
	if ud.ScheduledDate != nil {
		body["fechatutoria"] = *ud.ScheduledDate
	}
	if ud.Topic != nil {
		body["tema"] = *ud.Topic
	}
	if ud.Observations != nil {
		body["observaciones"] = *ud.Observations
	}
	if ud.StatusID != nil {
		body["estadotutoriaid"] = *ud.StatusID
	}

	var rows []tutoring.Detail
	if err := repo.client.Update(ctx, "tutoria_detalle", "tutoriadetalleid", id, body, &rows); err != nil {
		return tutoring.Detail{}, err
	}
	if len(rows) == 0 {
		return tutoring.Detail{}, tutoring.ErrNotFound
	}
	return rows[0], nil
}

func (repo *TutoringRepository) SetDetailStatus(ctx context.Context, id, statusID int) error {
	body := map[string]interface{}{"estadotutoriaid": statusID}
	return repo.client.Update(ctx, "tutoria_detalle", "tutoriadetalleid", id, body, nil)
}

func (repo *TutoringRepository) DeleteDetailsByTutoring(ctx context.Context, tutoringID int) error {
	return repo.client.Delete(ctx, "tutoria_detalle", "tutoriaid", tutoringID)
}

func (repo *TutoringRepository) DeleteDetail(ctx context.Context, id int) error {
	return repo.client.Delete(ctx, "tutoria_detalle", "tutoriadetalleid", id)
}

func (repo *TutoringRepository) CreateNotification(ctx context.Context, n tutoring.Notification) error {
	return repo.client.Insert(ctx, "notificacion", n, nil)
}

func (repo *TutoringRepository) ListRiskGrades(ctx context.Context, semesterPeriodID, professorID int) ([]academics.Grade, error) {
	filters := Filters{
		"semestreperiodoid": Eq(semesterPeriodID),
		"notap1":            Lt(fmt.Sprintf("%.1f", tutoring.RiskThreshold)),
	}
	if professorID != 0 {
		filters["profesorid"] = Eq(professorID)
	}
	var rows []academics.Grade
	err := repo.client.Select(ctx, "notaparcial", filters, "*", &rows)
	return rows, err
}

func (repo *TutoringRepository) ListStudents(ctx context.Context) ([]academics.Student, error) {
	return repo.academics.ListStudents(ctx)
}

func (repo *TutoringRepository) ListSubjects(ctx context.Context) ([]academics.Subject, error) {
	return repo.academics.ListSubjects(ctx)
}

func (repo *TutoringRepository) ListProfessors(ctx context.Context) ([]academics.Professor, error) {
	return repo.academics.ListProfessors(ctx)
}

func (repo *TutoringRepository) GetProfessor(ctx context.Context, id int) (academics.Professor, error) {
	return repo.academics.GetProfessor(ctx, id)
}

func (repo *TutoringRepository) ListSections(ctx context.Context) ([]academics.Section, error) {
	return repo.academics.ListSections(ctx)
}

func (repo *TutoringRepository) ListProfessorAssignments(ctx context.Context, professorID int) ([]academics.ProfessorAssignment, error) {
	var rows []academics.ProfessorAssignment
	err := repo.client.Select(ctx, "profesorasignatura", Filters{"profesorid": Eq(professorID)}, "*", &rows)
	return rows, err
}

func (repo *TutoringRepository) GetSemesterPeriod(ctx context.Context, id int) (academics.SemesterPeriod, error) {
	return repo.academics.GetSemesterPeriod(ctx, id)
}

func (repo *TutoringRepository) GetSemester(ctx context.Context, id int) (academics.Semester, error) {
	return repo.academics.GetSemester(ctx, id)
}

func (repo *TutoringRepository) ListFormats(ctx context.Context) ([]tutoring.Format, error) {
	var rows []tutoring.Format
	err := repo.client.Select(ctx, "formatotutoria", nil, "*", &rows)
	return rows, err
}
