package supabase

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/edukia/academia/core/academics"
	"github.com/edukia/academia/core/user"
)

// UserRepository implements user.Repository against the login, logintoken,
// profesor, roluser and profesorrol tables.
type UserRepository struct {
	client *Client
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

type loginRow struct {
	ID           int      `json:"loginid,omitempty"`
	Username     string   `json:"usuario"`
	PasswordHash string   `json:"passwordhash,omitempty"`
	ProfessorID  null.Int `json:"profesorid"`
}

func (r loginRow) toDomain() user.Login {
	return user.Login{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		ProfessorID:  r.ProfessorID,
	}
}

type tokenRow struct {
	ID        int         `json:"logintokenid,omitempty"`
	LoginID   int         `json:"loginid"`
	TokenHash string      `json:"tokenhash"`
	CreatedAt Timestamp   `json:"fechacreacion"`
	ExpiresAt Timestamp   `json:"fechaexpiracion"`
	Revoked   bool        `json:"esrevocado"`
	IP        null.String `json:"ip"`
	UserAgent null.String `json:"useragent"`
}

func (r tokenRow) toDomain() user.SessionToken {
	return user.SessionToken{
		ID:        r.ID,
		LoginID:   r.LoginID,
		TokenHash: r.TokenHash,
		CreatedAt: r.CreatedAt.Time,
		ExpiresAt: r.ExpiresAt.Time,
		Revoked:   r.Revoked,
		IP:        r.IP,
		UserAgent: r.UserAgent,
	}
}

func (repo *UserRepository) getLogin(ctx context.Context, filters Filters) (user.Login, error) {
	var rows []loginRow
	if err := repo.client.Select(ctx, "login", filters, "*", &rows); err != nil {
		return user.Login{}, err
	}
	if len(rows) == 0 {
		return user.Login{}, user.ErrNotFound
	}
	return rows[0].toDomain(), nil
}

func (repo *UserRepository) GetLoginByUsername(ctx context.Context, username string) (user.Login, error) {
	return repo.getLogin(ctx, Filters{"usuario": Eq(username)})
}

func (repo *UserRepository) GetLoginByID(ctx context.Context, id int) (user.Login, error) {
	return repo.getLogin(ctx, Filters{"loginid": Eq(id)})
}

func (repo *UserRepository) GetLoginByProfessor(ctx context.Context, professorID int) (user.Login, error) {
	return repo.getLogin(ctx, Filters{"profesorid": Eq(professorID)})
}

func (repo *UserRepository) ListLogins(ctx context.Context) ([]user.Login, error) {
	var rows []loginRow
	if err := repo.client.Select(ctx, "login", nil, "loginid,usuario,profesorid", &rows); err != nil {
		return nil, err
	}
	logins := make([]user.Login, 0, len(rows))
	for _, r := range rows {
		logins = append(logins, r.toDomain())
	}
	return logins, nil
}

func (repo *UserRepository) CreateLogin(ctx context.Context, login user.Login) (user.Login, error) {
	body := loginRow{
		Username:     login.Username,
		PasswordHash: login.PasswordHash,
		ProfessorID:  login.ProfessorID,
	}
	var rows []loginRow
	if err := repo.client.Insert(ctx, "login", body, &rows); err != nil {
		return user.Login{}, err
	}
	if len(rows) == 0 {
		return user.Login{}, user.ErrNotFound
	}
	return rows[0].toDomain(), nil
}

func (repo *UserRepository) UpdateLoginUsername(ctx context.Context, id int, username string) error {
	body := map[string]interface{}{"usuario": username}
	return repo.client.Update(ctx, "login", "loginid", id, body, nil)
}

func (repo *UserRepository) DeleteLogin(ctx context.Context, id int) error {
	return repo.client.Delete(ctx, "login", "loginid", id)
}

func (repo *UserRepository) CreateToken(ctx context.Context, tok user.SessionToken) (user.SessionToken, error) {
	body := tokenRow{
		LoginID:   tok.LoginID,
		TokenHash: tok.TokenHash,
		CreatedAt: Timestamp{tok.CreatedAt},
		ExpiresAt: Timestamp{tok.ExpiresAt},
		Revoked:   tok.Revoked,
		IP:        tok.IP,
		UserAgent: tok.UserAgent,
	}
	var rows []tokenRow
	if err := repo.client.Insert(ctx, "logintoken", body, &rows); err != nil {
		return user.SessionToken{}, err
	}
	if len(rows) == 0 {
		return user.SessionToken{}, user.ErrNotFound
	}
	return rows[0].toDomain(), nil
}

func (repo *UserRepository) GetToken(ctx context.Context, id int) (user.SessionToken, error) {
	var rows []tokenRow
	if err := repo.client.Select(ctx, "logintoken", Filters{"logintokenid": Eq(id)}, "*", &rows); err != nil {
		return user.SessionToken{}, err
	}
	if len(rows) == 0 {
		return user.SessionToken{}, user.ErrNotFound
	}
	return rows[0].toDomain(), nil
}

func (repo *UserRepository) RevokeToken(ctx context.Context, id int) error {
	body := map[string]interface{}{"esrevocado": true}
	return repo.client.Update(ctx, "logintoken", "logintokenid", id, body, nil)
}

func (repo *UserRepository) GetProfessor(ctx context.Context, id int) (academics.Professor, error) {
	var rows []academics.Professor
	if err := repo.client.Select(ctx, "profesor", Filters{"profesorid": Eq(id)}, "*", &rows); err != nil {
		return academics.Professor{}, err
	}
	if len(rows) == 0 {
		return academics.Professor{}, user.ErrNotFound
	}
	return rows[0], nil
}

func (repo *UserRepository) GetProfessorByEmail(ctx context.Context, email string) (academics.Professor, error) {
	var rows []academics.Professor
	if err := repo.client.Select(ctx, "profesor", Filters{"correoinstitucional": Eq(email)}, "*", &rows); err != nil {
		return academics.Professor{}, err
	}
	if len(rows) == 0 {
		return academics.Professor{}, user.ErrNotFound
	}
	return rows[0], nil
}

func (repo *UserRepository) CreateProfessor(ctx context.Context, prof academics.Professor) (academics.Professor, error) {
	body := map[string]interface{}{
		"nombre":    prof.FirstName,
		"apellidos": prof.LastName,
	}
	if prof.Email.Valid {
		body["correoinstitucional"] = prof.Email.String
	}
	var rows []academics.Professor
	if err := repo.client.Insert(ctx, "profesor", body, &rows); err != nil {
		return academics.Professor{}, err
	}
	if len(rows) == 0 {
		return academics.Professor{}, user.ErrNotFound
	}
	return rows[0], nil
}

func (repo *UserRepository) ListProfessors(ctx context.Context) ([]academics.Professor, error) {
	var rows []academics.Professor
	if err := repo.client.Select(ctx, "profesor", nil, "profesorid,nombre,apellidos", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (repo *UserRepository) ListRoles(ctx context.Context) ([]user.Role, error) {
	var rows []user.Role
	if err := repo.client.Select(ctx, "roluser", nil, "rolid,nombre", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (repo *UserRepository) GetRole(ctx context.Context, id int) (user.Role, error) {
	var rows []user.Role
	if err := repo.client.Select(ctx, "roluser", Filters{"rolid": Eq(id)}, "*", &rows); err != nil {
		return user.Role{}, err
	}
	if len(rows) == 0 {
		return user.Role{}, user.ErrNotFound
	}
	return rows[0], nil
}

func (repo *UserRepository) GetRoleByName(ctx context.Context, name string) (user.Role, error) {
	var rows []user.Role
	if err := repo.client.Select(ctx, "roluser", Filters{"nombre": Eq(name)}, "*", &rows); err != nil {
		return user.Role{}, err
	}
	if len(rows) == 0 {
		return user.Role{}, user.ErrNotFound
	}
	return rows[0], nil
}

func (repo *UserRepository) ListProfessorRoles(ctx context.Context, professorID int) ([]user.ProfessorRole, error) {
	var rows []user.ProfessorRole
	if err := repo.client.Select(ctx, "profesorrol", Filters{"profesorid": Eq(professorID)}, "*", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (repo *UserRepository) ListAllProfessorRoles(ctx context.Context) ([]user.ProfessorRole, error) {
	var rows []user.ProfessorRole
	if err := repo.client.Select(ctx, "profesorrol", nil, "*", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertProfessorRole keeps one role row per professor: the existing row is
// patched, a missing one inserted.
func (repo *UserRepository) UpsertProfessorRole(ctx context.Context, professorID, roleID int) error {
	existing, err := repo.ListProfessorRoles(ctx, professorID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		body := user.ProfessorRole{ProfessorID: professorID, RoleID: roleID}
		return repo.client.Insert(ctx, "profesorrol", body, nil)
	}
	body := map[string]interface{}{"rolid": roleID}
	return repo.client.Update(ctx, "profesorrol", "profesorid", professorID, body, nil)
}

func (repo *UserRepository) DeleteProfessorRole(ctx context.Context, professorID int) error {
	return repo.client.Delete(ctx, "profesorrol", "profesorid", professorID)
}
