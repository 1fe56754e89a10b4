package user

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/edukia/academia/core"
	"github.com/edukia/academia/core/academics"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers every terminal token state (absent, malformed,
	// revoked, expired, bad secret); callers cannot tell them apart.
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrUsernameExists   = errors.New("a user with this username already exists")
	ErrProfessorHasUser = errors.New("the selected professor already has a user")
	ErrAdminRoleMissing = errors.New("the ADMIN role does not exist in the role catalog")
)

type (
	Repository interface {
		GetLoginByUsername(ctx context.Context, username string) (Login, error)
		GetLoginByID(ctx context.Context, id int) (Login, error)
		GetLoginByProfessor(ctx context.Context, professorID int) (Login, error)
		ListLogins(ctx context.Context) ([]Login, error)
		CreateLogin(ctx context.Context, login Login) (Login, error)
		UpdateLoginUsername(ctx context.Context, id int, username string) error
		DeleteLogin(ctx context.Context, id int) error

		CreateToken(ctx context.Context, tok SessionToken) (SessionToken, error)
		GetToken(ctx context.Context, id int) (SessionToken, error)
		RevokeToken(ctx context.Context, id int) error

		GetProfessor(ctx context.Context, id int) (academics.Professor, error)
		GetProfessorByEmail(ctx context.Context, email string) (academics.Professor, error)
		CreateProfessor(ctx context.Context, prof academics.Professor) (academics.Professor, error)
		ListProfessors(ctx context.Context) ([]academics.Professor, error)

		ListRoles(ctx context.Context) ([]Role, error)
		GetRole(ctx context.Context, id int) (Role, error)
		GetRoleByName(ctx context.Context, name string) (Role, error)
		ListProfessorRoles(ctx context.Context, professorID int) ([]ProfessorRole, error)
		ListAllProfessorRoles(ctx context.Context) ([]ProfessorRole, error)
		UpsertProfessorRole(ctx context.Context, professorID, roleID int) error
		DeleteProfessorRole(ctx context.Context, professorID int) error
	}

	Service struct {
		repo     Repository
		tokenTTL time.Duration
	}
)

func NewService(repo Repository, tokenTTL time.Duration) *Service {
	return &Service{repo: repo, tokenTTL: tokenTTL}
}

// Login authenticates a username/password pair and, on success, issues a new
// composite session token. The returned token string is the only copy of the
// raw secret; the store keeps its hash.
func (svc *Service) Login(ctx context.Context, username, password string, meta RequestMeta) (User, string, error) {
	login, err := svc.repo.GetLoginByUsername(ctx, core.CleanString(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", pkgerrors.Wrap(err, "finding login by username")
	}
	if login.PasswordHash == "" || !VerifySecret(password, login.PasswordHash) {
		return User{}, "", ErrInvalidCredentials
	}

	rawSecret, err := newRawSecret()
	if err != nil {
		return User{}, "", pkgerrors.Wrap(err, "generating token secret")
	}
	tokenHash, err := HashSecret(rawSecret)
	if err != nil {
		return User{}, "", pkgerrors.Wrap(err, "hashing token secret")
	}

	now := nowFunc().UTC()
	tok := SessionToken{
		LoginID:   login.ID,
		TokenHash: tokenHash,
		CreatedAt: now,
		ExpiresAt: now.Add(svc.tokenTTL),
		Revoked:   false,
	}
	if meta.IP != "" {
		tok.IP = null.StringFrom(meta.IP)
	}
	if meta.UserAgent != "" {
		tok.UserAgent = null.StringFrom(meta.UserAgent)
	}

	created, err := svc.repo.CreateToken(ctx, tok)
	if err != nil {
		return User{}, "", pkgerrors.Wrap(err, "persisting session token")
	}

	usr, err := svc.enrich(ctx, login)
	if err != nil {
		return User{}, "", err
	}
	return usr, formatComposite(created.ID, rawSecret), nil
}

// ValidateBearer parses an Authorization header value and returns the
// enriched principal behind it. Every failure mode collapses to ErrInvalidToken.
func (svc *Service) ValidateBearer(ctx context.Context, header string) (User, error) {
	tok, _, err := svc.checkToken(ctx, header)
	if err != nil {
		return User{}, err
	}

	login, err := svc.repo.GetLoginByID(ctx, tok.LoginID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidToken
		}
		return User{}, pkgerrors.Wrap(err, "finding token owner")
	}
	return svc.enrich(ctx, login)
}

// Logout revokes the session behind the presented bearer token. Other
// sessions of the same user stay valid.
func (svc *Service) Logout(ctx context.Context, header string) error {
	tok, _, err := svc.checkToken(ctx, header)
	if err != nil {
		return err
	}
	if err := svc.repo.RevokeToken(ctx, tok.ID); err != nil {
		return pkgerrors.Wrap(err, "revoking token")
	}
	return nil
}

func (svc *Service) checkToken(ctx context.Context, header string) (SessionToken, string, error) {
	tokenID, rawSecret, err := parseBearer(header)
	if err != nil {
		return SessionToken{}, "", err
	}

	tok, err := svc.repo.GetToken(ctx, tokenID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return SessionToken{}, "", ErrInvalidToken
		}
		return SessionToken{}, "", pkgerrors.Wrap(err, "finding session token")
	}
	if tok.Revoked {
		return SessionToken{}, "", ErrInvalidToken
	}
	if nowFunc().After(tok.ExpiresAt) {
		return SessionToken{}, "", ErrInvalidToken
	}
	if !VerifySecret(rawSecret, tok.TokenHash) {
		return SessionToken{}, "", ErrInvalidToken
	}
	return tok, rawSecret, nil
}

// enrich attaches the professor profile and role names to a login identity.
// A missing profile or empty role set is not an error.
func (svc *Service) enrich(ctx context.Context, login Login) (User, error) {
	usr := enriched(login)
	if !login.ProfessorID.Valid {
		return usr, nil
	}

	prof, err := svc.repo.GetProfessor(ctx, login.ProfessorID.Int)
	if err == nil {
		usr.attachProfile(prof)
	} else if !errors.Is(err, ErrNotFound) && !errors.Is(err, academics.ErrNotFound) {
		return User{}, pkgerrors.Wrap(err, "finding professor profile")
	}

	prs, err := svc.repo.ListProfessorRoles(ctx, login.ProfessorID.Int)
	if err != nil {
		return User{}, pkgerrors.Wrap(err, "listing professor roles")
	}
	names := make([]string, 0, len(prs))
	for _, pr := range prs {
		role, err := svc.repo.GetRole(ctx, pr.RoleID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return User{}, pkgerrors.Wrap(err, "finding role")
		}
		names = append(names, role.Name)
	}
	usr.attachRoles(names)
	return usr, nil
}

// Users returns the user-management listing, one row per login decorated with
// the professor name and primary role.
func (svc *Service) Users(ctx context.Context) ([]ManagedUser, error) {
	logins, err := svc.repo.ListLogins(ctx)
	if err != nil {
		return nil, err
	}

	professors, err := svc.repo.ListProfessors(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := svc.repo.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	prs, err := svc.repo.ListAllProfessorRoles(ctx)
	if err != nil {
		return nil, err
	}

	profMap := core.MapBy(professors, func(p academics.Professor) int { return p.ID })
	roleMap := core.MapBy(roles, func(r Role) int { return r.ID })
	// first role per professor wins, matching enrichment order
	roleByProf := make(map[int]int, len(prs))
	for _, pr := range prs {
		if _, ok := roleByProf[pr.ProfessorID]; !ok {
			roleByProf[pr.ProfessorID] = pr.RoleID
		}
	}

	const na = "N/A"
	result := make([]ManagedUser, 0, len(logins))
	for _, login := range logins {
		mu := ManagedUser{
			LoginID:     login.ID,
			Username:    login.Username,
			ProfessorID: login.ProfessorID,
			FullName:    na,
			RoleName:    na,
		}
		if login.ProfessorID.Valid {
			if prof, ok := profMap[login.ProfessorID.Int]; ok {
				mu.FullName = prof.FullName()
			}
			if roleID, ok := roleByProf[login.ProfessorID.Int]; ok {
				mu.RoleID = null.IntFrom(roleID)
				mu.RoleName = core.JoinName(roleMap, roleID, func(r Role) string { return r.Name }, na)
			}
		}
		result = append(result, mu)
	}
	return result, nil
}

func (svc *Service) Roles(ctx context.Context) ([]Role, error) {
	return svc.repo.ListRoles(ctx)
}

// ProfessorOptions lists the professors offered in the user-management form.
func (svc *Service) ProfessorOptions(ctx context.Context) ([]ProfessorOption, error) {
	professors, err := svc.repo.ListProfessors(ctx)
	if err != nil {
		return nil, err
	}
	options := make([]ProfessorOption, 0, len(professors))
	for _, p := range professors {
		options = append(options, ProfessorOption{ProfessorID: p.ID, FullName: p.FullName()})
	}
	return options, nil
}

// Create registers a new login for a professor and assigns its role.
func (svc *Service) Create(ctx context.Context, nu NewUser) (int, error) {
	if _, err := svc.repo.GetLoginByUsername(ctx, nu.Username); err == nil {
		return 0, core.NewValidationError(ErrUsernameExists, core.FieldError{Field: "usuario", Error: ErrUsernameExists.Error()})
	} else if !errors.Is(err, ErrNotFound) {
		return 0, pkgerrors.Wrap(err, "checking username uniqueness")
	}
	if _, err := svc.repo.GetLoginByProfessor(ctx, nu.ProfessorID); err == nil {
		return 0, core.NewValidationError(ErrProfessorHasUser, core.FieldError{Field: "profesorid", Error: ErrProfessorHasUser.Error()})
	} else if !errors.Is(err, ErrNotFound) {
		return 0, pkgerrors.Wrap(err, "checking professor login")
	}

	hash, err := HashSecret(nu.Password)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "hashing password")
	}
	created, err := svc.repo.CreateLogin(ctx, Login{
		Username:     nu.Username,
		PasswordHash: hash,
		ProfessorID:  null.IntFrom(nu.ProfessorID),
	})
	if err != nil {
		return 0, pkgerrors.Wrap(err, "creating login")
	}

	if err := svc.repo.UpsertProfessorRole(ctx, nu.ProfessorID, nu.RoleID); err != nil {
		return 0, pkgerrors.Wrap(err, "assigning role")
	}
	return created.ID, nil
}

// Update renames a login and, when a role is provided, reassigns the
// professor's role. Passwords are not updated here.
func (svc *Service) Update(ctx context.Context, id int, uu UpdateUser) error {
	if existing, err := svc.repo.GetLoginByUsername(ctx, uu.Username); err == nil && existing.ID != id {
		return core.NewValidationError(ErrUsernameExists, core.FieldError{Field: "usuario", Error: ErrUsernameExists.Error()})
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return pkgerrors.Wrap(err, "checking username uniqueness")
	}

	if err := svc.repo.UpdateLoginUsername(ctx, id, uu.Username); err != nil {
		return pkgerrors.Wrap(err, "updating login")
	}

	if uu.RoleID != 0 {
		login, err := svc.repo.GetLoginByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(err, "finding login")
		}
		if login.ProfessorID.Valid {
			if err := svc.repo.UpsertProfessorRole(ctx, login.ProfessorID.Int, uu.RoleID); err != nil {
				return pkgerrors.Wrap(err, "reassigning role")
			}
		}
	}
	return nil
}

// Bootstrap credentials seeded by InitAdmin. The password is meant to be
// changed right after the first login.
const (
	adminEmail    = "admin@utb.edu.ec"
	adminUsername = "123456789-ADMR"
	adminPassword = "12345"
)

// InitAdmin seeds the first administrator account: a placeholder professor
// profile, its login and the ADMIN role assignment. Idempotent when the
// login already exists.
func (svc *Service) InitAdmin(ctx context.Context) (Login, error) {
	if existing, err := svc.repo.GetLoginByUsername(ctx, adminUsername); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Login{}, pkgerrors.Wrap(err, "checking admin login")
	}

	prof, err := svc.repo.GetProfessorByEmail(ctx, adminEmail)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, academics.ErrNotFound) {
			return Login{}, pkgerrors.Wrap(err, "finding admin profile")
		}
		prof, err = svc.repo.CreateProfessor(ctx, academics.Professor{
			FirstName: "Administrador",
			LastName:  "General",
			Email:     null.StringFrom(adminEmail),
		})
		if err != nil {
			return Login{}, pkgerrors.Wrap(err, "creating admin profile")
		}
	}

	role, err := svc.repo.GetRoleByName(ctx, RoleAdmin)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Login{}, ErrAdminRoleMissing
		}
		return Login{}, pkgerrors.Wrap(err, "finding admin role")
	}

	hash, err := HashSecret(adminPassword)
	if err != nil {
		return Login{}, pkgerrors.Wrap(err, "hashing admin password")
	}
	login, err := svc.repo.CreateLogin(ctx, Login{
		Username:     adminUsername,
		PasswordHash: hash,
		ProfessorID:  null.IntFrom(prof.ID),
	})
	if err != nil {
		return Login{}, pkgerrors.Wrap(err, "creating admin login")
	}
	if err := svc.repo.UpsertProfessorRole(ctx, prof.ID, role.ID); err != nil {
		return Login{}, pkgerrors.Wrap(err, "assigning admin role")
	}
	return login, nil
}

// Delete removes a login and its professor's role assignment.
func (svc *Service) Delete(ctx context.Context, id int) error {
	login, err := svc.repo.GetLoginByID(ctx, id)
	if err != nil {
		return err
	}
	if login.ProfessorID.Valid {
		if err := svc.repo.DeleteProfessorRole(ctx, login.ProfessorID.Int); err != nil {
			return pkgerrors.Wrap(err, "deleting role assignment")
		}
	}
	if err := svc.repo.DeleteLogin(ctx, id); err != nil {
		return pkgerrors.Wrap(err, "deleting login")
	}
	return nil
}
