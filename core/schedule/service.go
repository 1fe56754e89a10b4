package schedule

import (
	"context"
	"errors"

	"github.com/edukia/academia/core"
	"github.com/edukia/academia/core/academics"
)

var ErrNotFound = errors.New("schedule record not found")

type (
	Repository interface {
		ListPeriods(ctx context.Context) ([]academics.Period, error)

		ListDocumentTypes(ctx context.Context) ([]DocumentType, error)
		CreateDocumentType(ctx context.Context, ndt NewDocumentType) (DocumentType, error)
		UpdateDocumentType(ctx context.Context, id int, udt UpdateDocumentType) (DocumentType, error)
		DeleteDocumentType(ctx context.Context, id int) error

		ListEntries(ctx context.Context) ([]Entry, error)
		CreateEntry(ctx context.Context, ne NewEntry) (Entry, error)
		UpdateEntry(ctx context.Context, id int, ue UpdateEntry) (Entry, error)
		DeleteEntry(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Periods returns the trimmed period projection loaded by the schedule screen.
func (svc *Service) Periods(ctx context.Context) ([]PeriodOption, error) {
	periods, err := svc.repo.ListPeriods(ctx)
	if err != nil {
		return nil, err
	}
	options := make([]PeriodOption, 0, len(periods))
	for _, p := range periods {
		options = append(options, PeriodOption{ID: p.ID, Name: p.Name})
	}
	return options, nil
}

func (svc *Service) DocumentTypes(ctx context.Context) ([]DocumentType, error) {
	return svc.repo.ListDocumentTypes(ctx)
}

func (svc *Service) CreateDocumentType(ctx context.Context, ndt NewDocumentType) (DocumentType, error) {
	return svc.repo.CreateDocumentType(ctx, ndt)
}

func (svc *Service) UpdateDocumentType(ctx context.Context, id int, udt UpdateDocumentType) (DocumentType, error) {
	return svc.repo.UpdateDocumentType(ctx, id, udt)
}

func (svc *Service) DeleteDocumentType(ctx context.Context, id int) error {
	return svc.repo.DeleteDocumentType(ctx, id)
}

// Entries lists every schedule entry decorated with the period and document
// type names.
func (svc *Service) Entries(ctx context.Context) ([]EnrichedEntry, error) {
	entries, err := svc.repo.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []EnrichedEntry{}, nil
	}

	periods, err := svc.repo.ListPeriods(ctx)
	if err != nil {
		return nil, err
	}
	types, err := svc.repo.ListDocumentTypes(ctx)
	if err != nil {
		return nil, err
	}
	periodMap := core.MapBy(periods, func(p academics.Period) int { return p.ID })
	typeMap := core.MapBy(types, func(t DocumentType) int { return t.ID })

	result := make([]EnrichedEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, EnrichedEntry{
			Entry:            e,
			PeriodName:       core.JoinName(periodMap, e.PeriodID, func(p academics.Period) string { return p.Name }, core.UnknownName),
			DocumentTypeName: core.JoinName(typeMap, e.DocumentTypeID, func(t DocumentType) string { return t.Name }, core.UnknownName),
		})
	}
	return result, nil
}

func (svc *Service) CreateEntry(ctx context.Context, ne NewEntry) (Entry, error) {
	return svc.repo.CreateEntry(ctx, ne)
}

func (svc *Service) UpdateEntry(ctx context.Context, id int, ue UpdateEntry) (Entry, error) {
	return svc.repo.UpdateEntry(ctx, id, ue)
}

func (svc *Service) DeleteEntry(ctx context.Context, id int) error {
	return svc.repo.DeleteEntry(ctx, id)
}
