package tutoring

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/edukia/academia/core"
	"github.com/edukia/academia/core/academics"
)

var (
	ErrNotFound     = errors.New("tutoring record not found")
	ErrDetailLocked = errors.New("an incomplete session cannot be edited")
	ErrNoStatuses   = errors.New("no states configured in the estadotutoria catalog")
)

// RiskThreshold is the P1 grade below which a student qualifies for
// remedial tutoring.
const RiskThreshold = 7.0

var nowFunc = time.Now // mockable

type (
	Repository interface {
		ListStatuses(ctx context.Context) ([]Status, error)
		GetStatus(ctx context.Context, id int) (Status, error)
		GetStatusByName(ctx context.Context, name string) (Status, error)

		ListTutorings(ctx context.Context) ([]Tutoring, error)
		GetTutoring(ctx context.Context, id int) (Tutoring, error)
		CreateTutoring(ctx context.Context, nt NewTutoring) (Tutoring, error)
		UpdateTutoring(ctx context.Context, id int, ut UpdateTutoring) (Tutoring, error)
		DeleteTutoring(ctx context.Context, id int) error

		ListDetails(ctx context.Context, tutoringID int) ([]Detail, error)
		GetDetail(ctx context.Context, id int) (Detail, error)
		CreateDetail(ctx context.Context, nd NewDetail) (Detail, error)
		UpdateDetail(ctx context.Context, id int, ud UpdateDetail) (Detail, error)
		SetDetailStatus(ctx context.Context, id, statusID int) error
		DeleteDetailsByTutoring(ctx context.Context, tutoringID int) error
		DeleteDetail(ctx context.Context, id int) error

		CreateNotification(ctx context.Context, n Notification) error

		ListRiskGrades(ctx context.Context, semesterPeriodID, professorID int) ([]academics.Grade, error)
		ListStudents(ctx context.Context) ([]academics.Student, error)
		ListSubjects(ctx context.Context) ([]academics.Subject, error)
		ListProfessors(ctx context.Context) ([]academics.Professor, error)
		GetProfessor(ctx context.Context, id int) (academics.Professor, error)
		ListSections(ctx context.Context) ([]academics.Section, error)
		ListProfessorAssignments(ctx context.Context, professorID int) ([]academics.ProfessorAssignment, error)
		GetSemesterPeriod(ctx context.Context, id int) (academics.SemesterPeriod, error)
		GetSemester(ctx context.Context, id int) (academics.Semester, error)
		ListFormats(ctx context.Context) ([]Format, error)
	}

	Service struct {
		repo Repository
		mail core.EmailService
		log  core.Logger
		loc  *time.Location
	}
)

// NewService wires the tutoring domain. tz names the civil timezone used by
// the overdue rule; an unknown name falls back to UTC.
func NewService(repo Repository, mail core.EmailService, log core.Logger, tz string) *Service {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Warn("unknown timezone, falling back to UTC", tz)
		loc = time.UTC
	}
	return &Service{repo: repo, mail: mail, log: log, loc: loc}
}

// Candidates lists the failing grades of a period that do not have a tutoring
// assignment yet.
func (svc *Service) Candidates(ctx context.Context, semesterPeriodID int) ([]Candidate, error) {
	grades, err := svc.repo.ListRiskGrades(ctx, semesterPeriodID, 0)
	if err != nil {
		return nil, err
	}
	if len(grades) == 0 {
		return []Candidate{}, nil
	}

	tutorings, err := svc.repo.ListTutorings(ctx)
	if err != nil {
		return nil, err
	}
	assigned := make(map[int]bool, len(tutorings))
	for _, t := range tutorings {
		if t.GradeID.Valid {
			assigned[t.GradeID.Int] = true
		}
	}

	students, subjects, professors, sections, err := svc.catalogs(ctx)
	if err != nil {
		return nil, err
	}
	studentMap := core.MapBy(students, func(s academics.Student) int { return s.ID })
	subjectMap := core.MapBy(subjects, func(s academics.Subject) int { return s.ID })
	professorMap := core.MapBy(professors, func(p academics.Professor) int { return p.ID })
	sectionMap := core.MapBy(sections, func(s academics.Section) int { return s.ID })

	result := make([]Candidate, 0, len(grades))
	for _, g := range grades {
		if assigned[g.ID] {
			continue
		}
		result = append(result, Candidate{
			GradeID:     g.ID,
			StudentID:   g.StudentID,
			StudentName: core.JoinName(studentMap, g.StudentID.Int, func(s academics.Student) string { return s.FullName() }, core.UnknownName),
			SubjectID:   g.SubjectID,
			SubjectName: core.JoinName(subjectMap, g.SubjectID.Int, func(s academics.Subject) string { return s.Name }, core.UnknownNameF),
			P1:          g.P1,
			ProfessorID: g.ProfessorID,
			ProfessorName: core.JoinName(professorMap, g.ProfessorID.Int,
				func(p academics.Professor) string { return p.FullName() }, core.UnknownName),
			SectionID:   g.SectionID,
			SectionName: core.JoinName(sectionMap, g.SectionID.Int, func(s academics.Section) string { return s.Name }, core.UnknownNameF),
		})
	}
	return result, nil
}

// History lists every tutoring assignment decorated with catalog names. An
// empty objective reads "Por definir".
func (svc *Service) History(ctx context.Context) ([]HistoryEntry, error) {
	tutorings, err := svc.repo.ListTutorings(ctx)
	if err != nil {
		return nil, err
	}
	if len(tutorings) == 0 {
		return []HistoryEntry{}, nil
	}

	students, subjects, professors, sections, err := svc.catalogs(ctx)
	if err != nil {
		return nil, err
	}
	statuses, err := svc.repo.ListStatuses(ctx)
	if err != nil {
		return nil, err
	}

	studentMap := core.MapBy(students, func(s academics.Student) int { return s.ID })
	subjectMap := core.MapBy(subjects, func(s academics.Subject) int { return s.ID })
	professorMap := core.MapBy(professors, func(p academics.Professor) int { return p.ID })
	sectionMap := core.MapBy(sections, func(s academics.Section) int { return s.ID })
	statusMap := core.MapBy(statuses, func(s Status) int { return s.ID })

	result := make([]HistoryEntry, 0, len(tutorings))
	for _, t := range tutorings {
		if !t.Objective.Valid || t.Objective.String == "" {
			t.Objective.SetValid("Por definir")
		}
		result = append(result, HistoryEntry{
			Tutoring:    t,
			StudentName: core.JoinName(studentMap, t.StudentID.Int, func(s academics.Student) string { return s.FullName() }, core.UnknownName),
			SubjectName: core.JoinName(subjectMap, t.SubjectID.Int, func(s academics.Subject) string { return s.Name }, core.UnknownNameF),
			ProfessorName: core.JoinName(professorMap, t.ProfessorID.Int,
				func(p academics.Professor) string { return p.FullName() }, core.UnknownName),
			SectionName: core.JoinName(sectionMap, t.SectionID.Int, func(s academics.Section) string { return s.Name }, core.UnknownNameF),
			StatusName:  core.JoinName(statusMap, t.StatusID.Int, func(s Status) string { return s.Name }, core.UnknownName),
		})
	}
	return result, nil
}

// Assign creates a tutoring for a failing grade. When the payload carries no
// state the Pendiente catalog entry is resolved by name, falling back to the
// first configured state.
func (svc *Service) Assign(ctx context.Context, nt NewTutoring) (Tutoring, error) {
	if !nt.StatusID.Valid {
		status, err := svc.repo.GetStatusByName(ctx, StatusPendingName)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return Tutoring{}, pkgerrors.Wrap(err, "resolving default state")
			}
			all, err := svc.repo.ListStatuses(ctx)
			if err != nil {
				return Tutoring{}, pkgerrors.Wrap(err, "listing states")
			}
			if len(all) == 0 {
				return Tutoring{}, ErrNoStatuses
			}
			status = all[0]
		}
		nt.StatusID.SetValid(status.ID)
	}

	created, err := svc.repo.CreateTutoring(ctx, nt)
	if err != nil {
		return Tutoring{}, pkgerrors.Wrap(err, "creating tutoring")
	}
	return created, nil
}

func (svc *Service) Update(ctx context.Context, id int, ut UpdateTutoring) (Tutoring, error) {
	return svc.repo.UpdateTutoring(ctx, id, ut)
}

// Delete removes a tutoring and its sessions, children first. The professor
// notification afterwards is best effort: failures are logged, never returned.
func (svc *Service) Delete(ctx context.Context, id int) error {
	tut, err := svc.repo.GetTutoring(ctx, id)
	if err != nil {
		return err
	}

	if err := svc.repo.DeleteDetailsByTutoring(ctx, id); err != nil {
		return pkgerrors.Wrap(err, "deleting tutoring sessions")
	}
	if err := svc.repo.DeleteTutoring(ctx, id); err != nil {
		return pkgerrors.Wrap(err, "deleting tutoring")
	}

	svc.notifyDeletion(ctx, tut)
	return nil
}

func (svc *Service) notifyDeletion(ctx context.Context, tut Tutoring) {
	msg := fmt.Sprintf(
		"La coordinación ha eliminado la tutoría obligatoria asignada al alumno con ID: %d",
		tut.StudentID.Int,
	)
	err := svc.repo.CreateNotification(ctx, Notification{
		UserID:  tut.ProfessorID.Int,
		Message: msg,
		Kind:    "ALERTA_ELIMINACION",
		Date:    nowFunc().UTC().Format(time.RFC3339),
	})
	if err != nil {
		svc.log.Error("creating deletion notification", err)
	}

	if !tut.ProfessorID.Valid {
		return
	}
	prof, err := svc.repo.GetProfessor(ctx, tut.ProfessorID.Int)
	if err != nil || !prof.Email.Valid {
		return
	}
	svc.mail.SendMessages(&core.EmailMessage{
		To:          []mail.Address{{Name: prof.FullName(), Address: prof.Email.String}},
		Subject:     "Tutoría eliminada",
		TextContent: msg,
	})
}

func (svc *Service) catalogs(ctx context.Context) ([]academics.Student, []academics.Subject, []academics.Professor, []academics.Section, error) {
	students, err := svc.repo.ListStudents(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	subjects, err := svc.repo.ListSubjects(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	professors, err := svc.repo.ListProfessors(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	sections, err := svc.repo.ListSections(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return students, subjects, professors, sections, nil
}
