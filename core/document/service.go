package document

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/edukia/academia/core"
	"github.com/edukia/academia/core/academics"
	"github.com/edukia/academia/core/schedule"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrNotPDF   = errors.New("only PDF files are accepted")
)

var objectNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

type (
	Repository interface {
		CreateDocument(ctx context.Context, doc Document) (Document, error)
		ListDocumentsByProfessor(ctx context.Context, professorID int) ([]Document, error)

		ListScheduleEntries(ctx context.Context) ([]schedule.Entry, error)
		ListPeriods(ctx context.Context) ([]academics.Period, error)
		ListDocumentTypes(ctx context.Context) ([]schedule.DocumentType, error)
		ListSubjects(ctx context.Context) ([]academics.Subject, error)
		ListSemesterPeriods(ctx context.Context) ([]academics.SemesterPeriod, error)
		ListSemesters(ctx context.Context) ([]academics.Semester, error)
	}

	// ObjectStore is the blob side of the document flow: it persists the file
	// itself and hands back a public URL.
	ObjectStore interface {
		UploadFile(ctx context.Context, bucket, object string, content []byte, contentType string) (string, error)
	}

	Service struct {
		repo   Repository
		blobs  ObjectStore
		bucket string
	}
)

func NewService(repo Repository, blobs ObjectStore, bucket string) *Service {
	return &Service{repo: repo, blobs: blobs, bucket: bucket}
}

// validPDF sniffs the file structure: a "%PDF-" marker near the start and an
// "%%EOF" trailer near the end. Catches truncated files that a content-type
// check alone would let through.
func validPDF(contentType string, content []byte) bool {
	if contentType != "application/pdf" && contentType != "application/x-pdf" {
		return false
	}
	if len(content) < 10 {
		return false
	}
	head := content
	if len(head) > 1024 {
		head = head[:1024]
	}
	if !bytes.Contains(head, []byte("%PDF-")) {
		return false
	}
	tail := content
	if len(tail) > 1024 {
		tail = tail[len(tail)-1024:]
	}
	return bytes.Contains(tail, []byte("%%EOF"))
}

// objectName builds the storage object key: a fresh uuid prefix keeps
// uploads with the same filename from colliding in the bucket.
func objectName(fileName string) string {
	return uuid.NewString() + "_" + objectNameSanitizer.ReplaceAllString(fileName, "")
}

// Upload validates the file, stores it in the bucket and records the
// documentosubido row in state ENVIADO.
func (svc *Service) Upload(ctx context.Context, professorID int, up Upload) (Document, error) {
	if !validPDF(up.ContentType, up.Content) {
		return Document{}, core.NewValidationError(ErrNotPDF, core.FieldError{Field: "archivo", Error: ErrNotPDF.Error()})
	}

	url, err := svc.blobs.UploadFile(ctx, svc.bucket, objectName(up.FileName), up.Content, up.ContentType)
	if err != nil {
		return Document{}, pkgerrors.Wrap(err, "storing file")
	}

	doc, err := svc.repo.CreateDocument(ctx, Document{
		ScheduleID:       up.ScheduleID,
		ProfessorID:      professorID,
		SubjectID:        up.SubjectID,
		DocumentTypeID:   up.DocumentTypeID,
		SemesterPeriodID: up.SemesterPeriodID,
		SectionID:        up.SectionID,
		FileName:         up.FileName,
		URL:              url,
		State:            StateSubmitted,
	})
	if err != nil {
		return Document{}, pkgerrors.Wrap(err, "recording document")
	}
	return doc, nil
}

// ByProfessor lists one professor's deliveries, each flattened with the
// period, level, subject and format names resolved through the schedule
// entry and semester-period links.
func (svc *Service) ByProfessor(ctx context.Context, professorID int) ([]ProfessorDocument, error) {
	docs, err := svc.repo.ListDocumentsByProfessor(ctx, professorID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return []ProfessorDocument{}, nil
	}

	entries, err := svc.repo.ListScheduleEntries(ctx)
	if err != nil {
		return nil, err
	}
	periods, err := svc.repo.ListPeriods(ctx)
	if err != nil {
		return nil, err
	}
	types, err := svc.repo.ListDocumentTypes(ctx)
	if err != nil {
		return nil, err
	}
	subjects, err := svc.repo.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}
	semPeriods, err := svc.repo.ListSemesterPeriods(ctx)
	if err != nil {
		return nil, err
	}
	semesters, err := svc.repo.ListSemesters(ctx)
	if err != nil {
		return nil, err
	}

	entryMap := core.MapBy(entries, func(e schedule.Entry) int { return e.ID })
	periodMap := core.MapBy(periods, func(p academics.Period) int { return p.ID })
	typeMap := core.MapBy(types, func(t schedule.DocumentType) int { return t.ID })
	subjectMap := core.MapBy(subjects, func(s academics.Subject) int { return s.ID })
	spMap := core.MapBy(semPeriods, func(sp academics.SemesterPeriod) int { return sp.ID })
	semesterMap := core.MapBy(semesters, func(s academics.Semester) int { return s.ID })

	result := make([]ProfessorDocument, 0, len(docs))
	for _, doc := range docs {
		row := ProfessorDocument{
			ID:       doc.ID,
			Date:     civilDate(doc.UploadedAt.String),
			Period:   core.UnknownName,
			Level:    "N/A",
			Subject:  core.JoinName(subjectMap, doc.SubjectID, func(s academics.Subject) string { return s.Name }, core.UnknownNameF),
			Format:   core.JoinName(typeMap, doc.DocumentTypeID, func(t schedule.DocumentType) string { return t.Name }, core.UnknownName),
			FileName: doc.FileName,
			URL:      doc.URL,
			State:    doc.State,
		}
		if entry, ok := entryMap[doc.ScheduleID]; ok {
			row.Period = core.JoinName(periodMap, entry.PeriodID, func(p academics.Period) string { return p.Name }, core.UnknownName)
		}
		if sp, ok := spMap[doc.SemesterPeriodID]; ok {
			if sem, ok := semesterMap[sp.SemesterID]; ok {
				row.Level = sem.Name.String
				if row.Level == "" {
					row.Level = sem.Code.String
				}
			}
		}
		result = append(result, row)
	}
	return result, nil
}

// civilDate truncates a store timestamp to its date part.
func civilDate(ts string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ts
}
