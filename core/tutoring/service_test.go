package tutoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/edukia/academia/core"
	"github.com/edukia/academia/core/academics"
)

type fakeRepository struct {
	statuses    []Status
	tutorings   map[int]Tutoring
	details     map[int]Detail
	grades      []academics.Grade
	students    []academics.Student
	subjects    []academics.Subject
	professors  []academics.Professor
	sections    []academics.Section
	assignments []academics.ProfessorAssignment
	semPeriods  map[int]academics.SemesterPeriod
	semesters   map[int]academics.Semester
	formats     []Format

	notifications []Notification
	notifyErr     error
	nextID        int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		statuses: []Status{
			{ID: StatusPending, Name: "Pendiente"},
			{ID: 2, Name: "Completada"},
			{ID: StatusIncomplete, Name: "Incompleta"},
		},
		tutorings:  make(map[int]Tutoring),
		details:    make(map[int]Detail),
		semPeriods: make(map[int]academics.SemesterPeriod),
		semesters:  make(map[int]academics.Semester),
	}
}

func (r *fakeRepository) id() int {
	r.nextID++
	return r.nextID
}

func (r *fakeRepository) ListStatuses(context.Context) ([]Status, error) { return r.statuses, nil }

func (r *fakeRepository) GetStatus(_ context.Context, id int) (Status, error) {
	for _, s := range r.statuses {
		if s.ID == id {
			return s, nil
		}
	}
	return Status{}, ErrNotFound
}

func (r *fakeRepository) GetStatusByName(_ context.Context, name string) (Status, error) {
	for _, s := range r.statuses {
		if s.Name == name {
			return s, nil
		}
	}
	return Status{}, ErrNotFound
}

func (r *fakeRepository) ListTutorings(context.Context) ([]Tutoring, error) {
	res := make([]Tutoring, 0, len(r.tutorings))
	for _, t := range r.tutorings {
		res = append(res, t)
	}
	return res, nil
}

func (r *fakeRepository) GetTutoring(_ context.Context, id int) (Tutoring, error) {
	if t, ok := r.tutorings[id]; ok {
		return t, nil
	}
	return Tutoring{}, ErrNotFound
}

func (r *fakeRepository) CreateTutoring(_ context.Context, nt NewTutoring) (Tutoring, error) {
	t := Tutoring{
		ID:            r.id(),
		GradeID:       null.IntFrom(nt.GradeID),
		StudentID:     null.IntFrom(nt.StudentID),
		SubjectID:     null.IntFrom(nt.SubjectID),
		ProfessorID:   null.IntFrom(nt.ProfessorID),
		SectionID:     nt.SectionID,
		StatusID:      nt.StatusID,
		ScheduledDate: nt.ScheduledDate,
	}
	r.tutorings[t.ID] = t
	return t, nil
}

func (r *fakeRepository) UpdateTutoring(_ context.Context, id int, ut UpdateTutoring) (Tutoring, error) {
	t, ok := r.tutorings[id]
	if !ok {
		return Tutoring{}, ErrNotFound
	}
	if ut.StatusID != nil {
		t.StatusID = null.IntFrom(*ut.StatusID)
	}
	if ut.ScheduledDate != nil {
		t.ScheduledDate = null.StringFrom(*ut.ScheduledDate)
	}
	if ut.Objective != nil {
		t.Objective = null.StringFrom(*ut.Objective)
	}
	if ut.RequiredCount != nil {
		t.RequiredCount = null.IntFrom(*ut.RequiredCount)
	}
	r.tutorings[id] = t
	return t, nil
}

func (r *fakeRepository) DeleteTutoring(_ context.Context, id int) error {
	delete(r.tutorings, id)
	return nil
}

func (r *fakeRepository) ListDetails(_ context.Context, tutoringID int) ([]Detail, error) {
	res := make([]Detail, 0)
	for _, d := range r.details {
		if d.TutoringID == tutoringID {
			res = append(res, d)
		}
	}
	return res, nil
}

func (r *fakeRepository) GetDetail(_ context.Context, id int) (Detail, error) {
	if d, ok := r.details[id]; ok {
		return d, nil
	}
	return Detail{}, ErrNotFound
}

func (r *fakeRepository) CreateDetail(_ context.Context, nd NewDetail) (Detail, error) {
	d := Detail{
		ID:            r.id(),
		TutoringID:    nd.TutoringID,
		ScheduledDate: nd.ScheduledDate,
		Topic:         nd.Topic,
		Observations:  nd.Observations,
		StatusID:      StatusPending,
	}
	r.details[d.ID] = d
	return d, nil
}

func (r *fakeRepository) UpdateDetail(_ context.Context, id int, ud UpdateDetail) (Detail, error) {
	d, ok := r.details[id]
	if !ok {
		return Detail{}, ErrNotFound
	}
	if ud.ScheduledDate != nil {
		d.ScheduledDate = *ud.ScheduledDate
	}
	if ud.Topic != nil {
		d.Topic = null.StringFrom(*ud.Topic)
	}
	if ud.Observations != nil {
		d.Observations = null.StringFrom(*ud.Observations)
	}
	if ud.StatusID != nil {
		d.StatusID = *ud.StatusID
	}
	r.details[id] = d
	return d, nil
}

func (r *fakeRepository) SetDetailStatus(_ context.Context, id, statusID int) error {
	d, ok := r.details[id]
	if !ok {
		return ErrNotFound
	}
	d.StatusID = statusID
	r.details[id] = d
	return nil
}

func (r *fakeRepository) DeleteDetailsByTutoring(_ context.Context, tutoringID int) error {
	for id, d := range r.details {
		if d.TutoringID == tutoringID {
			delete(r.details, id)
		}
	}
	return nil
}

func (r *fakeRepository) DeleteDetail(_ context.Context, id int) error {
	delete(r.details, id)
	return nil
}

func (r *fakeRepository) CreateNotification(_ context.Context, n Notification) error {
	if r.notifyErr != nil {
		return r.notifyErr
	}
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *fakeRepository) ListRiskGrades(_ context.Context, semesterPeriodID, professorID int) ([]academics.Grade, error) {
	res := make([]academics.Grade, 0)
	for _, g := range r.grades {
		if g.SemesterPeriodID.Int != semesterPeriodID {
			continue
		}
		if professorID != 0 && g.ProfessorID.Int != professorID {
			continue
		}
		if !g.P1.Valid || g.P1.Float64 >= RiskThreshold {
			continue
		}
		res = append(res, g)
	}
	return res, nil
}

func (r *fakeRepository) ListStudents(context.Context) ([]academics.Student, error) {
	return r.students, nil
}

func (r *fakeRepository) ListSubjects(context.Context) ([]academics.Subject, error) {
	return r.subjects, nil
}

func (r *fakeRepository) ListProfessors(context.Context) ([]academics.Professor, error) {
	return r.professors, nil
}

func (r *fakeRepository) GetProfessor(_ context.Context, id int) (academics.Professor, error) {
	for _, p := range r.professors {
		if p.ID == id {
			return p, nil
		}
	}
	return academics.Professor{}, ErrNotFound
}

func (r *fakeRepository) ListSections(context.Context) ([]academics.Section, error) {
	return r.sections, nil
}

func (r *fakeRepository) ListProfessorAssignments(_ context.Context, professorID int) ([]academics.ProfessorAssignment, error) {
	res := make([]academics.ProfessorAssignment, 0)
	for _, a := range r.assignments {
		if a.ProfessorID == professorID {
			res = append(res, a)
		}
	}
	return res, nil
}

func (r *fakeRepository) GetSemesterPeriod(_ context.Context, id int) (academics.SemesterPeriod, error) {
	if sp, ok := r.semPeriods[id]; ok {
		return sp, nil
	}
	return academics.SemesterPeriod{}, academics.ErrNotFound
}

func (r *fakeRepository) GetSemester(_ context.Context, id int) (academics.Semester, error) {
	if s, ok := r.semesters[id]; ok {
		return s, nil
	}
	return academics.Semester{}, academics.ErrNotFound
}

func (r *fakeRepository) ListFormats(context.Context) ([]Format, error) { return r.formats, nil }

type sinkEmail struct{ sent []*core.EmailMessage }

func (s *sinkEmail) SendMessages(msgs ...*core.EmailMessage) { s.sent = append(s.sent, msgs...) }

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setupService(t *testing.T) (*Service, *fakeRepository, *sinkEmail) {
	t.Helper()
	repo := newFakeRepository()
	mail := &sinkEmail{}
	return NewService(repo, mail, nopLogger{}, "America/Guayaquil"), repo, mail
}

func civilDate(daysFromToday int) string {
	loc, _ := time.LoadLocation("America/Guayaquil")
	return time.Now().In(loc).AddDate(0, 0, daysFromToday).Format("2006-01-02")
}

func TestService_CreateDetail_backdated(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	det, err := svc.CreateDetail(ctx, NewDetail{TutoringID: 1, ScheduledDate: civilDate(-3)})
	if err != nil {
		t.Fatal(err)
	}
	if det.StatusID != StatusIncomplete {
		t.Errorf("StatusID = %d, want %d", det.StatusID, StatusIncomplete)
	}
	if det.StatusName != "Incompleta" {
		t.Errorf("StatusName = %q", det.StatusName)
	}
	if stored := repo.details[det.ID]; stored.StatusID != StatusIncomplete {
		t.Errorf("transition not persisted: %d", stored.StatusID)
	}
}

func TestService_CreateDetail_future(t *testing.T) {
	svc, _, _ := setupService(t)

	det, err := svc.CreateDetail(context.Background(), NewDetail{TutoringID: 1, ScheduledDate: civilDate(2)})
	if err != nil {
		t.Fatal(err)
	}
	if det.StatusID != StatusPending {
		t.Errorf("StatusID = %d, want %d", det.StatusID, StatusPending)
	}
	if det.StatusName != "Pendiente" {
		t.Errorf("StatusName = %q", det.StatusName)
	}
}

func TestService_Details_appliesRule(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	overdue, _ := repo.CreateDetail(ctx, NewDetail{TutoringID: 9, ScheduledDate: civilDate(-1)})
	today, _ := repo.CreateDetail(ctx, NewDetail{TutoringID: 9, ScheduledDate: civilDate(0)})

	details, err := svc.Details(ctx, 9)
	if err != nil {
		t.Fatal(err)
	}
	byID := make(map[int]Detail, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}

	if got := byID[overdue.ID]; got.StatusID != StatusIncomplete || got.StatusName != "Incompleta" {
		t.Errorf("overdue session = %+v", got)
	}
	// a session scheduled for today is not overdue
	if got := byID[today.ID]; got.StatusID != StatusPending {
		t.Errorf("today's session = %+v", got)
	}
	if stored := repo.details[overdue.ID]; stored.StatusID != StatusIncomplete {
		t.Error("transition not persisted")
	}
}

func TestService_UpdateDetail_locked(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	det, _ := repo.CreateDetail(ctx, NewDetail{TutoringID: 1, ScheduledDate: civilDate(1)})
	_ = repo.SetDetailStatus(ctx, det.ID, StatusIncomplete)

	topic := "Fracciones"
	_, err := svc.UpdateDetail(ctx, det.ID, UpdateDetail{Topic: &topic})

	var cErr *core.ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("UpdateDetail() error = %v, want conflict", err)
	}
	if stored := repo.details[det.ID]; stored.Topic.Valid {
		t.Error("locked session was mutated")
	}
}

func TestService_UpdateDetail_reschedulePast(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	det, _ := repo.CreateDetail(ctx, NewDetail{TutoringID: 1, ScheduledDate: civilDate(1)})

	past := civilDate(-2)
	updated, err := svc.UpdateDetail(ctx, det.ID, UpdateDetail{ScheduledDate: &past})
	if err != nil {
		t.Fatal(err)
	}
	if updated.StatusID != StatusIncomplete {
		t.Errorf("StatusID = %d, want %d", updated.StatusID, StatusIncomplete)
	}
	if stored := repo.details[det.ID]; stored.StatusID != StatusIncomplete {
		t.Error("transition not persisted")
	}
}

func TestService_UpdateDetail_missing(t *testing.T) {
	svc, _, _ := setupService(t)
	if _, err := svc.UpdateDetail(context.Background(), 404, UpdateDetail{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateDetail() error = %v, want %v", err, ErrNotFound)
	}
}

func TestService_Assign(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	t.Run("resolves Pendiente by name", func(t *testing.T) {
		tut, err := svc.Assign(ctx, NewTutoring{GradeID: 1, StudentID: 1, SubjectID: 1, ProfessorID: 1})
		if err != nil {
			t.Fatal(err)
		}
		if tut.StatusID.Int != StatusPending {
			t.Errorf("StatusID = %d, want %d", tut.StatusID.Int, StatusPending)
		}
	})

	t.Run("falls back to first state", func(t *testing.T) {
		repo.statuses = []Status{{ID: 8, Name: "Abierta"}}
		tut, err := svc.Assign(ctx, NewTutoring{GradeID: 2, StudentID: 1, SubjectID: 1, ProfessorID: 1})
		if err != nil {
			t.Fatal(err)
		}
		if tut.StatusID.Int != 8 {
			t.Errorf("StatusID = %d, want 8", tut.StatusID.Int)
		}
	})

	t.Run("no states configured", func(t *testing.T) {
		repo.statuses = nil
		if _, err := svc.Assign(ctx, NewTutoring{GradeID: 3, StudentID: 1, SubjectID: 1, ProfessorID: 1}); !errors.Is(err, ErrNoStatuses) {
			t.Errorf("Assign() error = %v, want %v", err, ErrNoStatuses)
		}
	})
}

func TestService_Delete_cascade(t *testing.T) {
	svc, repo, mail := setupService(t)
	ctx := context.Background()

	repo.professors = []academics.Professor{
		{ID: 7, FirstName: "Ana", LastName: "Mora", Email: null.StringFrom("amora@utb.edu.ec")},
	}
	tut, _ := repo.CreateTutoring(ctx, NewTutoring{GradeID: 1, StudentID: 3, SubjectID: 1, ProfessorID: 7})
	d1, _ := repo.CreateDetail(ctx, NewDetail{TutoringID: tut.ID, ScheduledDate: civilDate(1)})
	d2, _ := repo.CreateDetail(ctx, NewDetail{TutoringID: tut.ID, ScheduledDate: civilDate(2)})
	other, _ := repo.CreateDetail(ctx, NewDetail{TutoringID: 999, ScheduledDate: civilDate(1)})

	if err := svc.Delete(ctx, tut.ID); err != nil {
		t.Fatal(err)
	}

	if _, ok := repo.tutorings[tut.ID]; ok {
		t.Error("tutoring not deleted")
	}
	if _, ok := repo.details[d1.ID]; ok {
		t.Error("first session not deleted")
	}
	if _, ok := repo.details[d2.ID]; ok {
		t.Error("second session not deleted")
	}
	if _, ok := repo.details[other.ID]; !ok {
		t.Error("unrelated session was deleted")
	}

	if len(repo.notifications) != 1 {
		t.Fatalf("len(notifications) = %d, want 1", len(repo.notifications))
	}
	if n := repo.notifications[0]; n.UserID != 7 || n.Kind != "ALERTA_ELIMINACION" {
		t.Errorf("notification = %+v", n)
	}
	if len(mail.sent) != 1 {
		t.Fatalf("len(sent) = %d, want 1", len(mail.sent))
	}
	if to := mail.sent[0].To[0].Address; to != "amora@utb.edu.ec" {
		t.Errorf("email to %q", to)
	}
}

func TestService_Delete_notificationFailureSwallowed(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	tut, _ := repo.CreateTutoring(ctx, NewTutoring{GradeID: 1, StudentID: 3, SubjectID: 1, ProfessorID: 7})
	repo.notifyErr = errors.New("relation notificacion does not exist")

	if err := svc.Delete(ctx, tut.ID); err != nil {
		t.Fatalf("Delete() error = %v, notification failure must not surface", err)
	}
	if _, ok := repo.tutorings[tut.ID]; ok {
		t.Error("tutoring not deleted")
	}
}

func TestService_Delete_missing(t *testing.T) {
	svc, _, _ := setupService(t)
	if err := svc.Delete(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want %v", err, ErrNotFound)
	}
}

func seedReportData(repo *fakeRepository) {
	repo.students = []academics.Student{{ID: 1, FirstName: "Luis", LastName: "Paz"}}
	repo.subjects = []academics.Subject{{ID: 10, Code: "SIS-MAT-104", Name: "Matemáticas"}}
	repo.professors = []academics.Professor{{ID: 7, FirstName: "Ana", LastName: "Mora"}}
	repo.sections = []academics.Section{{ID: 4, Name: "A"}}
	repo.grades = []academics.Grade{
		{
			ID:               100,
			SemesterPeriodID: null.IntFrom(1),
			SectionID:        null.IntFrom(4),
			SubjectID:        null.IntFrom(10),
			ProfessorID:      null.IntFrom(7),
			StudentID:        null.IntFrom(1),
			P1:               null.Float64From(5.5),
		},
		{
			ID:               101,
			SemesterPeriodID: null.IntFrom(1),
			SectionID:        null.IntFrom(4),
			SubjectID:        null.IntFrom(10),
			ProfessorID:      null.IntFrom(7),
			StudentID:        null.IntFrom(2), // not in catalog
			P1:               null.Float64From(6.0),
		},
	}
}

func TestService_Candidates(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	seedReportData(repo)

	// grade 101 already has a tutoring assigned
	_, _ = repo.CreateTutoring(ctx, NewTutoring{GradeID: 101, StudentID: 2, SubjectID: 10, ProfessorID: 7})

	candidates, err := svc.Candidates(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 1 {
		t.Fatalf("len(candidates) = %d, want 1", len(candidates))
	}
	got := candidates[0]
	if got.GradeID != 100 || got.StudentName != "Luis Paz" || got.SubjectName != "Matemáticas" {
		t.Errorf("candidate = %+v", got)
	}
	if got.ProfessorName != "Ana Mora" || got.SectionName != "A" {
		t.Errorf("candidate = %+v", got)
	}
}

func TestService_History(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	seedReportData(repo)

	_, _ = repo.CreateTutoring(ctx, NewTutoring{
		GradeID: 100, StudentID: 1, SubjectID: 10, ProfessorID: 7,
		SectionID: null.IntFrom(4), StatusID: null.IntFrom(StatusPending),
	})

	entries, err := svc.History(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	got := entries[0]
	if got.Objective.String != "Por definir" {
		t.Errorf("empty objective not defaulted: %q", got.Objective.String)
	}
	if got.StudentName != "Luis Paz" || got.StatusName != "Pendiente" || got.SectionName != "A" {
		t.Errorf("entry = %+v", got)
	}
}

func TestService_AtRiskStudents(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	seedReportData(repo)

	obj, req := "Reforzar álgebra", 3
	tut, _ := repo.CreateTutoring(ctx, NewTutoring{GradeID: 100, StudentID: 1, SubjectID: 10, ProfessorID: 7})
	_, _ = repo.UpdateTutoring(ctx, tut.ID, UpdateTutoring{Objective: &obj, RequiredCount: &req})

	rows, err := svc.AtRiskStudents(ctx, 1, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	byGrade := make(map[int]AtRiskStudent, len(rows))
	for _, r := range rows {
		byGrade[r.GradeID] = r
	}
	if got := byGrade[100]; !got.TutoringID.Valid || got.Objective != obj || got.RequiredCount != 3 {
		t.Errorf("assigned row = %+v", got)
	}
	if got := byGrade[101]; got.TutoringID.Valid || got.StudentName != core.UnknownName {
		t.Errorf("unassigned row = %+v", got)
	}
}

func TestService_TeacherSubjects(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	repo.semPeriods[1] = academics.SemesterPeriod{ID: 1, SemesterID: 2, PeriodID: 1}
	repo.semesters[2] = academics.Semester{ID: 2, Level: "Primero", Code: null.StringFrom("1")}
	repo.subjects = []academics.Subject{
		{ID: 10, Code: "SIS-MAT-104", Name: "Matemáticas"},
		{ID: 11, Code: "SIS-FIS-204", Name: "Física"}, // level 2, filtered out
	}
	repo.sections = []academics.Section{{ID: 4, Name: "A"}}
	repo.assignments = []academics.ProfessorAssignment{
		{ProfessorID: 7, SubjectID: 10, SectionID: 4},
		{ProfessorID: 7, SubjectID: 11, SectionID: 4},
		{ProfessorID: 8, SubjectID: 10, SectionID: 4},
	}

	subjects, err := svc.TeacherSubjects(ctx, 7, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(subjects) != 1 {
		t.Fatalf("len(subjects) = %d, want 1", len(subjects))
	}
	if got := subjects[0]; got.SubjectID != 10 || got.SectionName != "A" {
		t.Errorf("subject = %+v", got)
	}

	t.Run("unknown period is empty", func(t *testing.T) {
		subjects, err := svc.TeacherSubjects(ctx, 7, 99)
		if err != nil {
			t.Fatal(err)
		}
		if len(subjects) != 0 {
			t.Errorf("len(subjects) = %d, want 0", len(subjects))
		}
	})
}

func TestService_Register(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	tut, _ := repo.CreateTutoring(ctx, NewTutoring{GradeID: 1, StudentID: 1, SubjectID: 1, ProfessorID: 1})

	updated, err := svc.Register(ctx, RegisterReport{TutoringID: tut.ID, Objective: "Reforzar álgebra", RequiredCount: 4})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Objective.String != "Reforzar álgebra" || updated.RequiredCount.Int != 4 {
		t.Errorf("Register() = %+v", updated)
	}
}
