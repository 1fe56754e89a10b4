package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/edukia/academia/core"
	"github.com/edukia/academia/core/academics"
)

// fakeRepository keeps everything in maps; good enough for service semantics.
type fakeRepository struct {
	logins     map[int]Login
	tokens     map[int]SessionToken
	professors map[int]academics.Professor
	roles      map[int]Role
	profRoles  map[int]int // professorID -> roleID
	nextID     int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		logins:     make(map[int]Login),
		tokens:     make(map[int]SessionToken),
		professors: make(map[int]academics.Professor),
		roles:      make(map[int]Role),
		profRoles:  make(map[int]int),
	}
}

func (r *fakeRepository) id() int {
	r.nextID++
	return r.nextID
}

func (r *fakeRepository) GetLoginByUsername(_ context.Context, username string) (Login, error) {
	for _, l := range r.logins {
		if l.Username == username {
			return l, nil
		}
	}
	return Login{}, ErrNotFound
}

func (r *fakeRepository) GetLoginByID(_ context.Context, id int) (Login, error) {
	if l, ok := r.logins[id]; ok {
		return l, nil
	}
	return Login{}, ErrNotFound
}

func (r *fakeRepository) GetLoginByProfessor(_ context.Context, professorID int) (Login, error) {
	for _, l := range r.logins {
		if l.ProfessorID.Valid && l.ProfessorID.Int == professorID {
			return l, nil
		}
	}
	return Login{}, ErrNotFound
}

func (r *fakeRepository) ListLogins(_ context.Context) ([]Login, error) {
	res := make([]Login, 0, len(r.logins))
	for _, l := range r.logins {
		res = append(res, l)
	}
	return res, nil
}

func (r *fakeRepository) CreateLogin(_ context.Context, login Login) (Login, error) {
	login.ID = r.id()
	r.logins[login.ID] = login
	return login, nil
}

func (r *fakeRepository) UpdateLoginUsername(_ context.Context, id int, username string) error {
	l, ok := r.logins[id]
	if !ok {
		return ErrNotFound
	}
	l.Username = username
	r.logins[id] = l
	return nil
}

func (r *fakeRepository) DeleteLogin(_ context.Context, id int) error {
	delete(r.logins, id)
	return nil
}

func (r *fakeRepository) CreateToken(_ context.Context, tok SessionToken) (SessionToken, error) {
	tok.ID = r.id()
	r.tokens[tok.ID] = tok
	return tok, nil
}

func (r *fakeRepository) GetToken(_ context.Context, id int) (SessionToken, error) {
	if tok, ok := r.tokens[id]; ok {
		return tok, nil
	}
	return SessionToken{}, ErrNotFound
}

func (r *fakeRepository) RevokeToken(_ context.Context, id int) error {
	tok, ok := r.tokens[id]
	if !ok {
		return ErrNotFound
	}
	tok.Revoked = true
	r.tokens[id] = tok
	return nil
}

func (r *fakeRepository) GetProfessor(_ context.Context, id int) (academics.Professor, error) {
	if p, ok := r.professors[id]; ok {
		return p, nil
	}
	return academics.Professor{}, ErrNotFound
}

func (r *fakeRepository) GetProfessorByEmail(_ context.Context, email string) (academics.Professor, error) {
	for _, p := range r.professors {
		if p.Email.String == email {
			return p, nil
		}
	}
	return academics.Professor{}, ErrNotFound
}

func (r *fakeRepository) CreateProfessor(_ context.Context, prof academics.Professor) (academics.Professor, error) {
	prof.ID = r.id()
	r.professors[prof.ID] = prof
	return prof, nil
}

func (r *fakeRepository) ListProfessors(_ context.Context) ([]academics.Professor, error) {
	res := make([]academics.Professor, 0, len(r.professors))
	for _, p := range r.professors {
		res = append(res, p)
	}
	return res, nil
}

func (r *fakeRepository) ListRoles(_ context.Context) ([]Role, error) {
	res := make([]Role, 0, len(r.roles))
	for _, role := range r.roles {
		res = append(res, role)
	}
	return res, nil
}

func (r *fakeRepository) GetRole(_ context.Context, id int) (Role, error) {
	if role, ok := r.roles[id]; ok {
		return role, nil
	}
	return Role{}, ErrNotFound
}

func (r *fakeRepository) GetRoleByName(_ context.Context, name string) (Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return Role{}, ErrNotFound
}

func (r *fakeRepository) ListProfessorRoles(_ context.Context, professorID int) ([]ProfessorRole, error) {
	if roleID, ok := r.profRoles[professorID]; ok {
		return []ProfessorRole{{ProfessorID: professorID, RoleID: roleID}}, nil
	}
	return nil, nil
}

func (r *fakeRepository) ListAllProfessorRoles(_ context.Context) ([]ProfessorRole, error) {
	res := make([]ProfessorRole, 0, len(r.profRoles))
	for pid, rid := range r.profRoles {
		res = append(res, ProfessorRole{ProfessorID: pid, RoleID: rid})
	}
	return res, nil
}

func (r *fakeRepository) UpsertProfessorRole(_ context.Context, professorID, roleID int) error {
	r.profRoles[professorID] = roleID
	return nil
}

func (r *fakeRepository) DeleteProfessorRole(_ context.Context, professorID int) error {
	delete(r.profRoles, professorID)
	return nil
}

func setupService(t *testing.T) (*Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	repo.roles[1] = Role{ID: 1, Name: RoleAdmin}
	repo.roles[2] = Role{ID: 2, Name: RoleProfessor}
	return NewService(repo, 24*time.Hour), repo
}

func seedLogin(t *testing.T, repo *fakeRepository, username, password string, professorID int) Login {
	t.Helper()
	hash, err := HashSecret(password)
	if err != nil {
		t.Fatal(err)
	}
	login := Login{Username: username, PasswordHash: hash}
	if professorID != 0 {
		login.ProfessorID = null.IntFrom(professorID)
	}
	created, err := repo.CreateLogin(context.Background(), login)
	if err != nil {
		t.Fatal(err)
	}
	return created
}

func TestService_Login(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	prof, _ := repo.CreateProfessor(ctx, academics.Professor{
		FirstName: "Ana",
		LastName:  "Mora",
		Email:     null.StringFrom("amora@utb.edu.ec"),
	})
	repo.profRoles[prof.ID] = 1
	seedLogin(t, repo, "123-ADMR", "12345", prof.ID)

	t.Run("wrong username", func(t *testing.T) {
		if _, _, err := svc.Login(ctx, "nobody", "12345", RequestMeta{}); err != ErrInvalidCredentials {
			t.Errorf("Login() error = %v, want %v", err, ErrInvalidCredentials)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, _, err := svc.Login(ctx, "123-ADMR", "nope", RequestMeta{}); err != ErrInvalidCredentials {
			t.Errorf("Login() error = %v, want %v", err, ErrInvalidCredentials)
		}
	})

	t.Run("ok", func(t *testing.T) {
		usr, token, err := svc.Login(ctx, "123-ADMR", "12345", RequestMeta{IP: "10.0.0.1", UserAgent: "go-test"})
		if err != nil {
			t.Fatal(err)
		}

		parts := strings.Split(token, "|")
		if len(parts) != 2 {
			t.Fatalf("token %q is not a composite", token)
		}
		if len(parts[1]) != 64 {
			t.Errorf("secret length = %d, want 64", len(parts[1]))
		}

		if usr.FirstName != "Ana" || usr.LastName != "Mora" {
			t.Errorf("profile not attached: %+v", usr)
		}
		if !usr.IsAdmin() {
			t.Errorf("roles not attached: %+v", usr.Roles)
		}
		if usr.Role.String != RoleAdmin {
			t.Errorf("Role = %q, want %q", usr.Role.String, RoleAdmin)
		}

		// stored row holds audit metadata and a hash, never the raw secret
		var stored SessionToken
		for _, tok := range repo.tokens {
			stored = tok
		}
		if stored.IP.String != "10.0.0.1" || stored.UserAgent.String != "go-test" {
			t.Errorf("audit metadata not recorded: %+v", stored)
		}
		if stored.TokenHash == parts[1] {
			t.Error("raw secret was persisted")
		}
	})
}

func TestService_ValidateBearer(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	prof, _ := repo.CreateProfessor(ctx, academics.Professor{FirstName: "Ana", LastName: "Mora"})
	repo.profRoles[prof.ID] = 2
	seedLogin(t, repo, "amora", "pwd", prof.ID)

	_, token, err := svc.Login(ctx, "amora", "pwd", RequestMeta{})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("round trip", func(t *testing.T) {
		usr, err := svc.ValidateBearer(ctx, "Bearer "+token)
		if err != nil {
			t.Fatal(err)
		}
		if usr.Username != "amora" || !usr.HasRole(RoleProfessor) {
			t.Errorf("ValidateBearer() = %+v", usr)
		}
	})

	t.Run("bad secret", func(t *testing.T) {
		tampered := token[:len(token)-4] + "beef"
		if _, err := svc.ValidateBearer(ctx, "Bearer "+tampered); err != ErrInvalidToken {
			t.Errorf("ValidateBearer() error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("expired", func(t *testing.T) {
		nowFunc = func() time.Time { return time.Now().Add(25 * time.Hour) }
		defer func() { nowFunc = time.Now }()

		if _, err := svc.ValidateBearer(ctx, "Bearer "+token); err != ErrInvalidToken {
			t.Errorf("ValidateBearer() error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("revoked", func(t *testing.T) {
		if err := svc.Logout(ctx, "Bearer "+token); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.ValidateBearer(ctx, "Bearer "+token); err != ErrInvalidToken {
			t.Errorf("ValidateBearer() error = %v, want %v", err, ErrInvalidToken)
		}
	})
}

func TestService_Logout_keepsOtherSessions(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()
	seedLogin(t, repo, "amora", "pwd", 0)

	_, tok1, err := svc.Login(ctx, "amora", "pwd", RequestMeta{})
	if err != nil {
		t.Fatal(err)
	}
	_, tok2, err := svc.Login(ctx, "amora", "pwd", RequestMeta{})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Logout(ctx, "Bearer "+tok1); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ValidateBearer(ctx, "Bearer "+tok1); err != ErrInvalidToken {
		t.Errorf("revoked session still valid: %v", err)
	}
	if _, err := svc.ValidateBearer(ctx, "Bearer "+tok2); err != nil {
		t.Errorf("sibling session was revoked: %v", err)
	}
}

func TestService_CreateUpdateDelete(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	p1, _ := repo.CreateProfessor(ctx, academics.Professor{FirstName: "Ana", LastName: "Mora"})
	p2, _ := repo.CreateProfessor(ctx, academics.Professor{FirstName: "Luis", LastName: "Paz"})

	id, err := svc.Create(ctx, NewUser{Username: "amora", Password: "pwd", ProfessorID: p1.ID, RoleID: 2})
	if err != nil {
		t.Fatal(err)
	}
	if repo.profRoles[p1.ID] != 2 {
		t.Errorf("role not assigned: %v", repo.profRoles)
	}

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Create(ctx, NewUser{Username: "amora", Password: "pwd", ProfessorID: p2.ID, RoleID: 2})
		var vErr *core.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Create() error = %v, want validation error", err)
		}
	})

	t.Run("professor already has user", func(t *testing.T) {
		_, err := svc.Create(ctx, NewUser{Username: "amora2", Password: "pwd", ProfessorID: p1.ID, RoleID: 2})
		var vErr *core.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Create() error = %v, want validation error", err)
		}
	})

	t.Run("update", func(t *testing.T) {
		if err := svc.Update(ctx, id, UpdateUser{Username: "ana.mora", RoleID: 1}); err != nil {
			t.Fatal(err)
		}
		login, _ := repo.GetLoginByID(ctx, id)
		if login.Username != "ana.mora" {
			t.Errorf("username = %q", login.Username)
		}
		if repo.profRoles[p1.ID] != 1 {
			t.Errorf("role not reassigned: %v", repo.profRoles)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := svc.Delete(ctx, id); err != nil {
			t.Fatal(err)
		}
		if _, err := repo.GetLoginByID(ctx, id); err != ErrNotFound {
			t.Error("login not deleted")
		}
		if _, ok := repo.profRoles[p1.ID]; ok {
			t.Error("role assignment not deleted")
		}
	})
}

func TestService_Users(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	prof, _ := repo.CreateProfessor(ctx, academics.Professor{FirstName: "Ana", LastName: "Mora"})
	repo.profRoles[prof.ID] = 1
	seedLogin(t, repo, "amora", "pwd", prof.ID)
	seedLogin(t, repo, "orphan", "pwd", 0)

	users, err := svc.Users(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}

	byName := make(map[string]ManagedUser, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}
	if got := byName["amora"]; got.FullName != "Ana Mora" || got.RoleName != RoleAdmin {
		t.Errorf("amora = %+v", got)
	}
	if got := byName["orphan"]; got.FullName != "N/A" || got.RoleName != "N/A" {
		t.Errorf("orphan = %+v", got)
	}
}

func TestService_InitAdmin(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	login, err := svc.InitAdmin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if login.Username != adminUsername {
		t.Errorf("username = %q", login.Username)
	}
	if !VerifySecret(adminPassword, login.PasswordHash) {
		t.Error("admin password hash does not verify")
	}
	if !login.ProfessorID.Valid || repo.profRoles[login.ProfessorID.Int] != 1 {
		t.Errorf("admin role not assigned: %+v", repo.profRoles)
	}

	// second run reuses the existing login
	again, err := svc.InitAdmin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != login.ID {
		t.Errorf("InitAdmin() created a second login: %d != %d", again.ID, login.ID)
	}
}
