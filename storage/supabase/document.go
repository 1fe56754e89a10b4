package supabase

import (
	"context"

	"github.com/edukia/academia/core/academics"
	"github.com/edukia/academia/core/document"
	"github.com/edukia/academia/core/schedule"
)

// DocumentRepository implements document.Repository against the
// documentosubido table plus the catalogs its listing joins on.
type DocumentRepository struct {
	client    *Client
	academics *AcademicsRepository
	schedule  *ScheduleRepository
}

var _ document.Repository = (*DocumentRepository)(nil)

func NewDocumentRepository(client *Client) *DocumentRepository {
	return &DocumentRepository{
		client:    client,
		academics: NewAcademicsRepository(client),
		schedule:  NewScheduleRepository(client),
	}
}

func (repo *DocumentRepository) CreateDocument(ctx context.Context, doc document.Document) (document.Document, error) {
	body := map[string]interface{}{
		"cronogramaid":      doc.ScheduleID,
		"profesorid":        doc.ProfessorID,
		"asignaturaid":      doc.SubjectID,
		"tipodocumentoid":   doc.DocumentTypeID,
		"semestreperiodoid": doc.SemesterPeriodID,
		"seccionid":         doc.SectionID,
		"nombrearchivo":     doc.FileName,
		"url":               doc.URL,
		"estado":            doc.State,
	}

	var rows []document.Document
	if err := repo.client.Insert(ctx, "documentosubido", body, &rows); err != nil {
		return document.Document{}, err
	}
	if len(rows) == 0 {
		return document.Document{}, document.ErrNotFound
	}
	return rows[0], nil
}

func (repo *DocumentRepository) ListDocumentsByProfessor(ctx context.Context, professorID int) ([]document.Document, error) {
	var rows []document.Document
	err := repo.client.Select(ctx, "documentosubido", Filters{"profesorid": Eq(professorID)}, "*", &rows)
	return rows, err
}

func (repo *DocumentRepository) ListScheduleEntries(ctx context.Context) ([]schedule.Entry, error) {
	return repo.schedule.ListEntries(ctx)
}

func (repo *DocumentRepository) ListPeriods(ctx context.Context) ([]academics.Period, error) {
	return repo.academics.ListPeriods(ctx)
}

func (repo *DocumentRepository) ListDocumentTypes(ctx context.Context) ([]schedule.DocumentType, error) {
	return repo.schedule.ListDocumentTypes(ctx)
}

func (repo *DocumentRepository) ListSubjects(ctx context.Context) ([]academics.Subject, error) {
	return repo.academics.ListSubjects(ctx)
}

func (repo *DocumentRepository) ListSemesterPeriods(ctx context.Context) ([]academics.SemesterPeriod, error) {
	var rows []academics.SemesterPeriod
	err := repo.client.Select(ctx, "semestreperiodo", nil, "*", &rows)
	return rows, err
}

func (repo *DocumentRepository) ListSemesters(ctx context.Context) ([]academics.Semester, error) {
	return repo.academics.ListSemesters(ctx)
}
