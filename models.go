package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the account model. The password hash never leaves the process:
// serialization goes through PublicAccount, an explicit allow-list.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"-"`
	Username      string     `bun:"username,notnull,unique" json:"-"`
	Email         string     `bun:"email,notnull,unique" json:"-"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Name          string     `bun:"name" json:"-"`
	Surname       string     `bun:"surname" json:"-"`
	Birthdate     *time.Time `bun:"birthdate,nullzero" json:"-"`
	Avatar        string     `bun:"avatar" json:"-"`
	Verified      bool       `bun:"verified,notnull,default:false" json:"-"`
	Roles         []*Role    `bun:"m2m:account_roles,join:Account=Role" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"-"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"-"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// RoleNames returns the names of the account's role memberships
func (a *Account) RoleNames() []RoleName {
	names := make([]RoleName, 0, len(a.Roles))
	for _, role := range a.Roles {
		if role != nil {
			names = append(names, role.Name)
		}
	}
	return names
}

// Public projects the account onto its serializable surface. Fields are
// opted in one by one; anything not listed here cannot leak.
func (a *Account) Public() PublicAccount {
	return PublicAccount{
		ID:        a.ID.String(),
		Username:  a.Username,
		Email:     a.Email,
		Name:      a.Name,
		Surname:   a.Surname,
		Birthdate: a.Birthdate,
		Avatar:    a.Avatar,
		Verified:  a.Verified,
		Roles:     a.RoleNames(),
		CreatedAt: a.CreatedAt,
	}
}

// PublicAccount is the serialization allow-list for Account
type PublicAccount struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Name      string     `json:"name,omitempty"`
	Surname   string     `json:"surname,omitempty"`
	Birthdate *time.Time `json:"birthdate,omitempty"`
	Avatar    string     `json:"avatar,omitempty"`
	Verified  bool       `json:"verified"`
	Roles     []RoleName `json:"roles,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Role is a named membership drawn from a small fixed catalog. Roles are
// created lazily at startup and never deleted.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          RoleName   `bun:"name,notnull,unique" json:"name,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// AccountRole is the join model for the account/role many-to-many
type AccountRole struct {
	bun.BaseModel `bun:"table:account_roles,alias:acr"`
	AccountID     uuid.UUID `bun:"account_id,pk,type:uuid"`
	Account       *Account  `bun:"rel:belongs-to,join:account_id=id"`
	RoleID        uuid.UUID `bun:"role_id,pk,type:uuid"`
	Role          *Role     `bun:"rel:belongs-to,join:role_id=id"`
}
