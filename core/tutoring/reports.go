package tutoring

import (
	"context"
	"errors"

	"github.com/edukia/academia/core"
	"github.com/edukia/academia/core/academics"
)

// TeacherSubjects lists the subjects a professor teaches that belong to the
// academic level behind semesterPeriodID, windowed by the level's code range
// (level 1 -> 100..199).
func (svc *Service) TeacherSubjects(ctx context.Context, professorID, semesterPeriodID int) ([]TeacherSubject, error) {
	sp, err := svc.repo.GetSemesterPeriod(ctx, semesterPeriodID)
	if err != nil {
		if errors.Is(err, academics.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return []TeacherSubject{}, nil
		}
		return nil, err
	}
	sem, err := svc.repo.GetSemester(ctx, sp.SemesterID)
	if err != nil {
		if errors.Is(err, academics.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return []TeacherSubject{}, nil
		}
		return nil, err
	}
	level := sem.LevelNumber()
	minCode, maxCode := level*100, level*100+99

	assignments, err := svc.repo.ListProfessorAssignments(ctx, professorID)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return []TeacherSubject{}, nil
	}

	subjects, err := svc.repo.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}
	sections, err := svc.repo.ListSections(ctx)
	if err != nil {
		return nil, err
	}
	subjectMap := core.MapBy(subjects, func(s academics.Subject) int { return s.ID })
	sectionMap := core.MapBy(sections, func(s academics.Section) int { return s.ID })

	result := make([]TeacherSubject, 0, len(assignments))
	for _, a := range assignments {
		subj, ok := subjectMap[a.SubjectID]
		if !ok {
			continue
		}
		if code := subj.LevelCode(); code < minCode || code > maxCode {
			continue
		}
		result = append(result, TeacherSubject{
			SubjectID:   subj.ID,
			Code:        subj.Code,
			Name:        subj.Name,
			Credits:     subj.Credits,
			SectionID:   a.SectionID,
			SectionName: core.JoinName(sectionMap, a.SectionID, func(s academics.Section) string { return s.Name }, core.UnknownNameF),
		})
	}
	return result, nil
}

func (svc *Service) Formats(ctx context.Context) ([]Format, error) {
	return svc.repo.ListFormats(ctx)
}

// AtRiskStudents lists one professor's failing grades for a period, each
// joined with its tutoring assignment when one exists.
func (svc *Service) AtRiskStudents(ctx context.Context, semesterPeriodID, professorID int) ([]AtRiskStudent, error) {
	grades, err := svc.repo.ListRiskGrades(ctx, semesterPeriodID, professorID)
	if err != nil {
		return nil, err
	}
	if len(grades) == 0 {
		return []AtRiskStudent{}, nil
	}

	students, subjects, _, sections, err := svc.catalogs(ctx)
	if err != nil {
		return nil, err
	}
	tutorings, err := svc.repo.ListTutorings(ctx)
	if err != nil {
		return nil, err
	}

	studentMap := core.MapBy(students, func(s academics.Student) int { return s.ID })
	subjectMap := core.MapBy(subjects, func(s academics.Subject) int { return s.ID })
	sectionMap := core.MapBy(sections, func(s academics.Section) int { return s.ID })
	tutoringByGrade := make(map[int]Tutoring, len(tutorings))
	for _, t := range tutorings {
		if t.GradeID.Valid {
			tutoringByGrade[t.GradeID.Int] = t
		}
	}

	result := make([]AtRiskStudent, 0, len(grades))
	for _, g := range grades {
		row := AtRiskStudent{
			GradeID:     g.ID,
			StudentID:   g.StudentID,
			StudentName: core.JoinName(studentMap, g.StudentID.Int, func(s academics.Student) string { return s.FullName() }, core.UnknownName),
			SubjectID:   g.SubjectID,
			SubjectName: core.JoinName(subjectMap, g.SubjectID.Int, func(s academics.Subject) string { return s.Name }, core.UnknownNameF),
			SubjectCode: core.JoinName(subjectMap, g.SubjectID.Int, func(s academics.Subject) string { return s.Code }, ""),
			SectionID:   g.SectionID,
			SectionName: core.JoinName(sectionMap, g.SectionID.Int, func(s academics.Section) string { return s.Name }, core.UnknownNameF),
			P1:          g.P1,
			Date:        g.Date,
		}
		if tut, ok := tutoringByGrade[g.ID]; ok {
			row.TutoringID.SetValid(tut.ID)
			row.Objective = tut.Objective.String
			row.RequiredCount = tut.RequiredCount.Int
		}
		result = append(result, row)
	}
	return result, nil
}

// Register stores the objective and required session count on an existing
// tutoring assignment.
func (svc *Service) Register(ctx context.Context, rr RegisterReport) (Tutoring, error) {
	return svc.repo.UpdateTutoring(ctx, rr.TutoringID, UpdateTutoring{
		Objective:     &rr.Objective,
		RequiredCount: &rr.RequiredCount,
	})
}
