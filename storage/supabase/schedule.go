package supabase

import (
	"context"

	"github.com/edukia/academia/core/academics"
	"github.com/edukia/academia/core/schedule"
)

// ScheduleRepository implements schedule.Repository against the periodo,
// tipodocumento and cronogramadocumento tables.
type ScheduleRepository struct {
	client *Client
}

var _ schedule.Repository = (*ScheduleRepository)(nil)

func NewScheduleRepository(client *Client) *ScheduleRepository {
	return &ScheduleRepository{client: client}
}

func (repo *ScheduleRepository) ListPeriods(ctx context.Context) ([]academics.Period, error) {
	var rows []academics.Period
	err := repo.client.Select(ctx, "periodo", nil, "periodoid,nombre", &rows)
	return rows, err
}

func (repo *ScheduleRepository) ListDocumentTypes(ctx context.Context) ([]schedule.DocumentType, error) {
	var rows []schedule.DocumentType
	err := repo.client.Select(ctx, "tipodocumento", nil, "*", &rows)
	return rows, err
}

func (repo *ScheduleRepository) CreateDocumentType(ctx context.Context, ndt schedule.NewDocumentType) (schedule.DocumentType, error) {
	var rows []schedule.DocumentType
	if err := repo.client.Insert(ctx, "tipodocumento", ndt, &rows); err != nil {
		return schedule.DocumentType{}, err
	}
	if len(rows) == 0 {
		return schedule.DocumentType{}, schedule.ErrNotFound
	}
	return rows[0], nil
}

func (repo *ScheduleRepository) UpdateDocumentType(ctx context.Context, id int, udt schedule.UpdateDocumentType) (schedule.DocumentType, error) {
	body := map[string]interface{}{}
	if udt.Name != nil {
		body["nombre"] = *udt.Name
	}
	if udt.Description != nil {
		body["descripcion"] = *udt.Description
	}

	var rows []schedule.DocumentType
	if err := repo.client.Update(ctx, "tipodocumento", "tipodocumentoid", id, body, &rows); err != nil {
		return schedule.DocumentType{}, err
	}
	if len(rows) == 0 {
		return schedule.DocumentType{}, schedule.ErrNotFound
	}
	return rows[0], nil
}

func (repo *ScheduleRepository) DeleteDocumentType(ctx context.Context, id int) error {
	return repo.client.Delete(ctx, "tipodocumento", "tipodocumentoid", id)
}

func (repo *ScheduleRepository) ListEntries(ctx context.Context) ([]schedule.Entry, error) {
	var rows []schedule.Entry
	err := repo.client.Select(ctx, "cronogramadocumento", nil, "*", &rows)
	return rows, err
}

func (repo *ScheduleRepository) CreateEntry(ctx context.Context, ne schedule.NewEntry) (schedule.Entry, error) {
	var rows []schedule.Entry
	if err := repo.client.Insert(ctx, "cronogramadocumento", ne, &rows); err != nil {
		return schedule.Entry{}, err
	}
	if len(rows) == 0 {
		return schedule.Entry{}, schedule.ErrNotFound
	}
	return rows[0], nil
}

func (repo *ScheduleRepository) UpdateEntry(ctx context.Context, id int, ue schedule.UpdateEntry) (schedule.Entry, error) {
	body := map[string]interface{}{}
	if ue.PeriodID != nil {
		body["periodoid"] = *ue.PeriodID
	}
	if ue.DocumentTypeID != nil {
		body["tipodocumentoid"] = *ue.DocumentTypeID
	}
	if ue.StartDate != nil {
		body["fechainicio"] = *ue.StartDate
	}
	if ue.EndDate != nil {
		body["fechafin"] = *ue.EndDate
	}
	if ue.Description != nil {
		body["descripcion"] = *ue.Description
	}

	var rows []schedule.Entry
	if err := repo.client.Update(ctx, "cronogramadocumento", "cronogramaid", id, body, &rows); err != nil {
		return schedule.Entry{}, err
	}
	if len(rows) == 0 {
		return schedule.Entry{}, schedule.ErrNotFound
	}
	return rows[0], nil
}

func (repo *ScheduleRepository) DeleteEntry(ctx context.Context, id int) error {
	return repo.client.Delete(ctx, "cronogramadocumento", "cronogramaid", id)
}
