package academics

import (
	"context"
	"errors"
	"testing"

	"github.com/volatiletech/null/v8"
)

type fakeRepository struct {
	semPeriods  map[int]SemesterPeriod
	periods     []Period
	semesters   map[int]Semester
	subjects    []Subject
	professors  []Professor
	students    []Student
	sections    []Section
	assignments []ProfessorAssignment
	grades      []Grade
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		semPeriods: make(map[int]SemesterPeriod),
		semesters:  make(map[int]Semester),
	}
}

func (r *fakeRepository) ListActiveSemesterPeriods(context.Context) ([]SemesterPeriod, error) {
	res := make([]SemesterPeriod, 0, len(r.semPeriods))
	for _, sp := range r.semPeriods {
		if sp.State == "Activo" {
			res = append(res, sp)
		}
	}
	return res, nil
}

func (r *fakeRepository) ListActiveSemesterPeriodsByPeriod(_ context.Context, periodID int) ([]SemesterPeriod, error) {
	res := make([]SemesterPeriod, 0)
	for _, sp := range r.semPeriods {
		if sp.PeriodID == periodID && sp.State == "Activo" {
			res = append(res, sp)
		}
	}
	return res, nil
}

func (r *fakeRepository) GetSemesterPeriod(_ context.Context, id int) (SemesterPeriod, error) {
	if sp, ok := r.semPeriods[id]; ok {
		return sp, nil
	}
	return SemesterPeriod{}, ErrSemesterPeriodAbsent
}

func (r *fakeRepository) ListPeriods(context.Context) ([]Period, error) { return r.periods, nil }

func (r *fakeRepository) ListSemesters(context.Context) ([]Semester, error) {
	res := make([]Semester, 0, len(r.semesters))
	for _, s := range r.semesters {
		res = append(res, s)
	}
	return res, nil
}

func (r *fakeRepository) GetSemester(_ context.Context, id int) (Semester, error) {
	if s, ok := r.semesters[id]; ok {
		return s, nil
	}
	return Semester{}, ErrNotFound
}

func (r *fakeRepository) ListSubjects(context.Context) ([]Subject, error) { return r.subjects, nil }

func (r *fakeRepository) ListProfessors(context.Context) ([]Professor, error) {
	return r.professors, nil
}

func (r *fakeRepository) GetProfessor(_ context.Context, id int) (Professor, error) {
	for _, p := range r.professors {
		if p.ID == id {
			return p, nil
		}
	}
	return Professor{}, ErrNotFound
}

func (r *fakeRepository) ListStudents(context.Context) ([]Student, error) { return r.students, nil }

func (r *fakeRepository) ListSections(context.Context) ([]Section, error) { return r.sections, nil }

func (r *fakeRepository) ListAssignmentsBySection(_ context.Context, sectionID int) ([]ProfessorAssignment, error) {
	res := make([]ProfessorAssignment, 0)
	for _, a := range r.assignments {
		if a.SectionID == sectionID {
			res = append(res, a)
		}
	}
	return res, nil
}

func (r *fakeRepository) ListAssignments(_ context.Context, subjectID, sectionID int) ([]ProfessorAssignment, error) {
	res := make([]ProfessorAssignment, 0)
	for _, a := range r.assignments {
		if a.SubjectID == subjectID && a.SectionID == sectionID {
			res = append(res, a)
		}
	}
	return res, nil
}

func (r *fakeRepository) ListGrades(context.Context) ([]Grade, error) { return r.grades, nil }

func (r *fakeRepository) CreateGrade(_ context.Context, ng NewGrade) (Grade, error) {
	g := Grade{
		ID:               len(r.grades) + 1,
		SemesterPeriodID: null.IntFrom(ng.SemesterPeriodID),
		SectionID:        null.IntFrom(ng.SectionID),
		SubjectID:        null.IntFrom(ng.SubjectID),
		ProfessorID:      null.IntFrom(ng.ProfessorID),
		StudentID:        null.IntFrom(ng.StudentID),
		P1:               ng.P1,
		P2:               ng.P2,
		Date:             ng.Date,
	}
	r.grades = append(r.grades, g)
	return g, nil
}

func (r *fakeRepository) UpdateGrade(_ context.Context, id int, ug UpdateGrade) (Grade, error) {
	for i, g := range r.grades {
		if g.ID != id {
			continue
		}
		if ug.P1 != nil {
			g.P1 = null.Float64From(*ug.P1)
		}
		if ug.P2 != nil {
			g.P2 = null.Float64From(*ug.P2)
		}
		if ug.Date != nil {
			g.Date = null.StringFrom(*ug.Date)
		}
		r.grades[i] = g
		return g, nil
	}
	return Grade{}, ErrNotFound
}

func (r *fakeRepository) DeleteGrade(_ context.Context, id int) error {
	for i, g := range r.grades {
		if g.ID == id {
			r.grades = append(r.grades[:i], r.grades[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func setupService(t *testing.T) (*Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	return NewService(repo), repo
}

func seedCatalogs(repo *fakeRepository) {
	repo.periods = []Period{{ID: 1, Name: "2025-A"}}
	repo.semesters[2] = Semester{ID: 2, Level: "Primero", Code: null.StringFrom("1")}
	repo.semPeriods[5] = SemesterPeriod{ID: 5, PeriodID: 1, SemesterID: 2, State: "Activo"}
	repo.subjects = []Subject{
		{ID: 10, Code: "SIS-MAT-104", Name: "Matemáticas"},
		{ID: 11, Code: "SIS-FIS-204", Name: "Física"},
		{ID: 12, Code: "SIS-LEN-110", Name: "Lengua"},
	}
	repo.sections = []Section{{ID: 4, Name: "A"}}
}

func TestService_PeriodsWithLevels(t *testing.T) {
	svc, repo := setupService(t)
	seedCatalogs(repo)
	repo.semPeriods[6] = SemesterPeriod{ID: 6, PeriodID: 1, SemesterID: 99, State: "Activo"}
	repo.semPeriods[7] = SemesterPeriod{ID: 7, PeriodID: 1, SemesterID: 2, State: "Cerrado"}

	rows, err := svc.PeriodsWithLevels(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	byID := make(map[int]PeriodLevel, len(rows))
	for _, pl := range rows {
		byID[pl.SemesterPeriodID] = pl
	}
	if got := byID[5]; got.PeriodName != "2025-A" || got.Level != "Primero" {
		t.Errorf("row = %+v", got)
	}
	// semester 99 is not in the catalog
	if got := byID[6]; got.Level != "Desconocido" {
		t.Errorf("missing semester read %q", got.Level)
	}
}

func TestService_Subjects(t *testing.T) {
	svc, repo := setupService(t)
	seedCatalogs(repo)

	t.Run("windowed by level", func(t *testing.T) {
		subjects, err := svc.Subjects(context.Background(), 5, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(subjects) != 2 {
			t.Fatalf("len(subjects) = %d, want 2", len(subjects))
		}
		for _, s := range subjects {
			if code := s.LevelCode(); code < 100 || code > 199 {
				t.Errorf("subject %d code %d outside level window", s.ID, code)
			}
		}
	})

	t.Run("filtered by section", func(t *testing.T) {
		repo.assignments = []ProfessorAssignment{{ProfessorID: 7, SubjectID: 10, SectionID: 4}}
		subjects, err := svc.Subjects(context.Background(), 5, 4)
		if err != nil {
			t.Fatal(err)
		}
		if len(subjects) != 1 || subjects[0].ID != 10 {
			t.Errorf("subjects = %+v", subjects)
		}
	})

	t.Run("empty section", func(t *testing.T) {
		if _, err := svc.Subjects(context.Background(), 5, 99); !errors.Is(err, ErrNoCoursesForSection) {
			t.Errorf("Subjects() error = %v, want %v", err, ErrNoCoursesForSection)
		}
	})

	t.Run("section with no level match", func(t *testing.T) {
		repo.assignments = []ProfessorAssignment{{ProfessorID: 7, SubjectID: 11, SectionID: 4}}
		if _, err := svc.Subjects(context.Background(), 5, 4); !errors.Is(err, ErrNoSubjectsForLevel) {
			t.Errorf("Subjects() error = %v, want %v", err, ErrNoSubjectsForLevel)
		}
	})

	t.Run("unknown semester period", func(t *testing.T) {
		_, err := svc.Subjects(context.Background(), 404, 0)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Subjects() error = %v, want %v", err, ErrNotFound)
		}
	})
}

func TestService_Professors(t *testing.T) {
	svc, repo := setupService(t)
	repo.professors = []Professor{
		{ID: 7, FirstName: "Ana", LastName: "Mora"},
		{ID: 8, FirstName: "Luis", LastName: "Vera"},
	}
	repo.assignments = []ProfessorAssignment{
		{ProfessorID: 7, SubjectID: 10, SectionID: 4},
		{ProfessorID: 7, SubjectID: 10, SectionID: 4}, // duplicate row
		{ProfessorID: 8, SubjectID: 10, SectionID: 4},
		{ProfessorID: 9, SubjectID: 10, SectionID: 4}, // not in catalog
		{ProfessorID: 8, SubjectID: 11, SectionID: 4},
	}

	professors, err := svc.Professors(context.Background(), 10, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(professors) != 2 {
		t.Fatalf("len(professors) = %d, want 2", len(professors))
	}
	seen := map[int]bool{}
	for _, p := range professors {
		if seen[p.ID] {
			t.Errorf("professor %d listed twice", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestService_Levels(t *testing.T) {
	svc, repo := setupService(t)
	seedCatalogs(repo)
	repo.semPeriods[6] = SemesterPeriod{ID: 6, PeriodID: 1, SemesterID: 99, State: "Activo"}

	levels, err := svc.Levels(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	// the row pointing at the missing semester is skipped, not fatal
	if len(levels) != 1 {
		t.Fatalf("len(levels) = %d, want 1", len(levels))
	}
	if got := levels[0]; got.SemesterPeriodID != 5 || got.Level != "Primero" {
		t.Errorf("level = %+v", got)
	}
}

func TestService_Grades(t *testing.T) {
	svc, repo := setupService(t)
	seedCatalogs(repo)
	repo.students = []Student{{ID: 1, FirstName: "Luis", LastName: "Paz"}}
	repo.professors = []Professor{{ID: 7, FirstName: "Ana", LastName: "Mora"}}
	repo.grades = []Grade{
		{
			ID:               100,
			SemesterPeriodID: null.IntFrom(5),
			SectionID:        null.IntFrom(4),
			SubjectID:        null.IntFrom(10),
			ProfessorID:      null.IntFrom(7),
			StudentID:        null.IntFrom(1),
			P1:               null.Float64From(8.5),
		},
		{ID: 101}, // orphan row, every linkage missing
	}

	rows, err := svc.Grades(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	byID := make(map[int]EnrichedGrade, len(rows))
	for _, eg := range rows {
		byID[eg.ID] = eg
	}

	got := byID[100]
	if got.PeriodName != "2025-A" || got.Level != "Primero" {
		t.Errorf("period linkage = %+v", got)
	}
	if got.StudentName != "Luis Paz" || got.ProfessorName != "Ana Mora" || got.SubjectName != "Matemáticas" {
		t.Errorf("names = %+v", got)
	}

	orphan := byID[101]
	if orphan.PeriodName != "N/A" || orphan.StudentName != "N/A" || orphan.SectionName != "N/A" {
		t.Errorf("orphan = %+v", orphan)
	}
}

func TestService_Grades_empty(t *testing.T) {
	svc, _ := setupService(t)
	rows, err := svc.Grades(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("Grades() = %v, want empty slice", rows)
	}
}
