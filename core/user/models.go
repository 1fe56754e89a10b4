package user

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/edukia/academia/core"
	"github.com/edukia/academia/core/academics"
)

// Well-known role names; the role catalog itself lives in the store.
const (
	RoleAdmin       = "ADMIN"
	RoleCoordinator = "COORDINADOR"
	RoleProfessor   = "DOCENTE"
)

// Login is a raw credential row: the login identity before enrichment.
// The password hash never leaves the service layer.
type Login struct {
	ID           int
	Username     string
	PasswordHash string
	ProfessorID  null.Int
}

// SessionToken is the persisted half of a composite bearer token. Only the
// bcrypt hash of the random secret is stored; the raw secret is handed to the
// client once and never persisted.
type SessionToken struct {
	ID        int
	LoginID   int
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
	Revoked   bool
	IP        null.String
	UserAgent null.String
}

// RequestMeta is the audit metadata recorded alongside an issued token.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// User is the authenticated principal: a login identity enriched with its
// professor profile and role names.
type User struct {
	ID          int         `json:"loginid"`
	Username    string      `json:"usuario"`
	ProfessorID null.Int    `json:"profesorid"`
	FirstName   string      `json:"nombre"`
	LastName    string      `json:"apellidos"`
	Email       string      `json:"correoinstitucional"`
	Roles       []string    `json:"roles"`
	// Role mirrors the first entry of Roles for older consumers.
	Role null.String `json:"rol"`
}

func (u User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

func (u User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

type Role struct {
	ID   int    `json:"rolid"`
	Name string `json:"nombre"`
}

// ProfessorRole is a row of the professor<->role join relation.
type ProfessorRole struct {
	ProfessorID int `json:"profesorid"`
	RoleID      int `json:"rolid"`
}

// ManagedUser is the user-management listing row.
type ManagedUser struct {
	LoginID     int      `json:"loginid"`
	Username    string   `json:"usuario"`
	ProfessorID null.Int `json:"profesorid"`
	FullName    string   `json:"nombreCompleto"`
	RoleName    string   `json:"rol"`
	RoleID      null.Int `json:"rolid"`
}

// ProfessorOption is a professor offered in the user-management form.
type ProfessorOption struct {
	ProfessorID int    `json:"profesorid"`
	FullName    string `json:"nombreCompleto"`
}

// NewUser contains the information needed to create a new login.
type NewUser struct {
	Username    string `json:"usuario" validate:"required"`
	Password    string `json:"password" validate:"required"`
	ProfessorID int    `json:"profesorid" validate:"required"`
	RoleID      int    `json:"rolid" validate:"required"`
}

func (nu *NewUser) Validate(validate Validator) error {
	nu.Username = core.CleanString(nu.Username)
	return validate.Struct(nu)
}

// UpdateUser defines what may be modified on an existing login.
type UpdateUser struct {
	Username string `json:"usuario" validate:"required"`
	RoleID   int    `json:"rolid"`
}

func (uu *UpdateUser) Validate(validate Validator) error {
	uu.Username = core.CleanString(uu.Username)
	return validate.Struct(uu)
}

// Validator abstracts the struct validator so model validation stays
// independent of the HTTP layer.
type Validator interface {
	Struct(s interface{}) error
}

// enriched builds the principal for a login with no professor attached.
func enriched(login Login) User {
	return User{
		ID:          login.ID,
		Username:    login.Username,
		ProfessorID: login.ProfessorID,
		Roles:       []string{},
	}
}

func (u *User) attachProfile(prof academics.Professor) {
	u.FirstName = prof.FirstName
	u.LastName = prof.LastName
	u.Email = prof.Email.String
}

func (u *User) attachRoles(names []string) {
	u.Roles = names
	if len(names) > 0 {
		u.Role = null.StringFrom(names[0])
	}
}
