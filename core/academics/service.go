package academics

import (
	"context"
	"errors"
	"fmt"

	"github.com/edukia/academia/core"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrNoCoursesForSection = errors.New("no courses available for this section")
	ErrNoSubjectsForLevel  = errors.New("no subjects scheduled for this level in the selected section")
	// ErrSemesterPeriodAbsent unwraps to ErrNotFound so callers can treat it
	// as a plain miss.
	ErrSemesterPeriodAbsent = fmt.Errorf("semester period: %w", ErrNotFound)
)

type (
	Repository interface {
		ListActiveSemesterPeriods(ctx context.Context) ([]SemesterPeriod, error)
		ListActiveSemesterPeriodsByPeriod(ctx context.Context, periodID int) ([]SemesterPeriod, error)
		GetSemesterPeriod(ctx context.Context, id int) (SemesterPeriod, error)
		ListPeriods(ctx context.Context) ([]Period, error)
		ListSemesters(ctx context.Context) ([]Semester, error)
		GetSemester(ctx context.Context, id int) (Semester, error)
		ListSubjects(ctx context.Context) ([]Subject, error)
		ListProfessors(ctx context.Context) ([]Professor, error)
		GetProfessor(ctx context.Context, id int) (Professor, error)
		ListStudents(ctx context.Context) ([]Student, error)
		ListSections(ctx context.Context) ([]Section, error)
		ListAssignmentsBySection(ctx context.Context, sectionID int) ([]ProfessorAssignment, error)
		ListAssignments(ctx context.Context, subjectID, sectionID int) ([]ProfessorAssignment, error)
		ListGrades(ctx context.Context) ([]Grade, error)
		CreateGrade(ctx context.Context, ng NewGrade) (Grade, error)
		UpdateGrade(ctx context.Context, id int, ug UpdateGrade) (Grade, error)
		DeleteGrade(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// PeriodsWithLevels returns the active semester/period pairs decorated with
// the period name and academic level, the consolidated form clients load once.
func (svc *Service) PeriodsWithLevels(ctx context.Context) ([]PeriodLevel, error) {
	sps, err := svc.repo.ListActiveSemesterPeriods(ctx)
	if err != nil {
		return nil, err
	}

	periods, err := svc.repo.ListPeriods(ctx)
	if err != nil {
		return nil, err
	}
	semesters, err := svc.repo.ListSemesters(ctx)
	if err != nil {
		return nil, err
	}

	periodMap := core.MapBy(periods, func(p Period) int { return p.ID })
	semesterMap := core.MapBy(semesters, func(s Semester) int { return s.ID })

	result := make([]PeriodLevel, 0, len(sps))
	for _, sp := range sps {
		result = append(result, PeriodLevel{
			SemesterPeriodID: sp.ID,
			PeriodID:         sp.PeriodID,
			PeriodName:       core.JoinName(periodMap, sp.PeriodID, func(p Period) string { return p.Name }, core.UnknownName),
			SemesterID:       sp.SemesterID,
			Level:            core.JoinName(semesterMap, sp.SemesterID, func(s Semester) string { return s.Level }, core.UnknownName),
		})
	}
	return result, nil
}

// Levels returns the active levels of one period.
func (svc *Service) Levels(ctx context.Context, periodID int) ([]Level, error) {
	sps, err := svc.repo.ListActiveSemesterPeriodsByPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}

	result := make([]Level, 0, len(sps))
	for _, sp := range sps {
		sem, err := svc.repo.GetSemester(ctx, sp.SemesterID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		result = append(result, Level{Semester: sem, SemesterPeriodID: sp.ID, PeriodID: sp.PeriodID})
	}
	return result, nil
}

// Subjects returns the subjects of the level behind semesterPeriodID, windowed
// by the level's code range (level 1 -> 100..199). When sectionID is non-zero
// only subjects actually scheduled in that section are returned.
func (svc *Service) Subjects(ctx context.Context, semesterPeriodID, sectionID int) ([]Subject, error) {
	sp, err := svc.repo.GetSemesterPeriod(ctx, semesterPeriodID)
	if err != nil {
		return nil, err
	}
	sem, err := svc.repo.GetSemester(ctx, sp.SemesterID)
	if err != nil {
		return nil, err
	}
	level := sem.LevelNumber()
	minCode, maxCode := level*100, level*100+99

	var scheduled map[int]bool
	if sectionID != 0 {
		assignments, err := svc.repo.ListAssignmentsBySection(ctx, sectionID)
		if err != nil {
			return nil, err
		}
		if len(assignments) == 0 {
			return nil, ErrNoCoursesForSection
		}
		scheduled = make(map[int]bool, len(assignments))
		for _, a := range assignments {
			scheduled[a.SubjectID] = true
		}
	}

	all, err := svc.repo.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Subject, 0, len(all))
	for _, subj := range all {
		if scheduled != nil && !scheduled[subj.ID] {
			continue
		}
		if code := subj.LevelCode(); code >= minCode && code <= maxCode {
			result = append(result, subj)
		}
	}
	if sectionID != 0 && len(result) == 0 {
		return nil, ErrNoSubjectsForLevel
	}
	return result, nil
}

// Professors returns the professors teaching the given subject in the given section.
func (svc *Service) Professors(ctx context.Context, subjectID, sectionID int) ([]Professor, error) {
	assignments, err := svc.repo.ListAssignments(ctx, subjectID, sectionID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(assignments))
	result := make([]Professor, 0, len(assignments))
	for _, a := range assignments {
		if seen[a.ProfessorID] {
			continue
		}
		prof, err := svc.repo.GetProfessor(ctx, a.ProfessorID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		seen[a.ProfessorID] = true
		result = append(result, prof)
	}
	return result, nil
}

func (svc *Service) Students(ctx context.Context) ([]Student, error) {
	return svc.repo.ListStudents(ctx)
}

func (svc *Service) Sections(ctx context.Context) ([]Section, error) {
	return svc.repo.ListSections(ctx)
}

// Grades returns every grade row decorated with catalog display names.
func (svc *Service) Grades(ctx context.Context) ([]EnrichedGrade, error) {
	grades, err := svc.repo.ListGrades(ctx)
	if err != nil {
		return nil, err
	}
	if len(grades) == 0 {
		return []EnrichedGrade{}, nil
	}

	periodLevels, err := svc.PeriodsWithLevels(ctx)
	if err != nil {
		return nil, err
	}
	sections, err := svc.repo.ListSections(ctx)
	if err != nil {
		return nil, err
	}
	subjects, err := svc.repo.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}
	students, err := svc.repo.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	professors, err := svc.repo.ListProfessors(ctx)
	if err != nil {
		return nil, err
	}

	spMap := core.MapBy(periodLevels, func(pl PeriodLevel) int { return pl.SemesterPeriodID })
	sectionMap := core.MapBy(sections, func(s Section) int { return s.ID })
	subjectMap := core.MapBy(subjects, func(s Subject) int { return s.ID })
	studentMap := core.MapBy(students, func(s Student) int { return s.ID })
	professorMap := core.MapBy(professors, func(p Professor) int { return p.ID })

	const na = "N/A"
	result := make([]EnrichedGrade, 0, len(grades))
	for _, g := range grades {
		eg := EnrichedGrade{
			ID:          g.ID,
			PeriodName:  na,
			Level:       na,
			SectionID:   g.SectionID,
			SectionName: core.JoinName(sectionMap, int(g.SectionID.Int), func(s Section) string { return s.Name }, na),
			SubjectID:   g.SubjectID,
			SubjectName: core.JoinName(subjectMap, int(g.SubjectID.Int), func(s Subject) string { return s.Name }, na),
			ProfessorID: g.ProfessorID,
			ProfessorName: core.JoinName(professorMap, int(g.ProfessorID.Int),
				func(p Professor) string { return p.FullName() }, na),
			StudentID: g.StudentID,
			StudentName: core.JoinName(studentMap, int(g.StudentID.Int),
				func(s Student) string { return s.FullName() }, na),
			P1:   g.P1,
			P2:   g.P2,
			Date: g.Date,
		}
		if pl, ok := spMap[int(g.SemesterPeriodID.Int)]; ok {
			eg.PeriodID.SetValid(pl.PeriodID)
			eg.PeriodName = pl.PeriodName
			eg.SemesterID.SetValid(pl.SemesterID)
			eg.Level = pl.Level
		}
		result = append(result, eg)
	}
	return result, nil
}

func (svc *Service) CreateGrade(ctx context.Context, ng NewGrade) (Grade, error) {
	return svc.repo.CreateGrade(ctx, ng)
}

func (svc *Service) UpdateGrade(ctx context.Context, id int, ug UpdateGrade) (Grade, error) {
	return svc.repo.UpdateGrade(ctx, id, ug)
}

func (svc *Service) DeleteGrade(ctx context.Context, id int) error {
	return svc.repo.DeleteGrade(ctx, id)
}
