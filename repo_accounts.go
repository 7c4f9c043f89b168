package accounts

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UpdateAccountPasswordSQL rotates the stored password hash. A successful
// rotation is what invalidates every outstanding reset token for the row.
var UpdateAccountPasswordSQL = `UPDATE "accounts" AS "acc"
SET
	"password_hash" = ?,
	"updated_at" = current_timestamp
WHERE
	"acc"."deleted_at" IS NULL
AND (
	"acc"."id" = ?
) RETURNING *;`

// ProfileUpdate carries optional profile mutations; nil fields are left alone
type ProfileUpdate struct {
	Name      *string
	Surname   *string
	Birthdate *time.Time
	Avatar    *string
}

// Accounts is the full storage surface for account rows. It satisfies the
// narrow AccountStore consumed by the lifecycle controller.
type Accounts interface {
	AccountStore

	ByIdentifier(ctx context.Context, identifier string) (*Account, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*Account, error)
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*Account, error)
	List(ctx context.Context) ([]*Account, error)
}

type accountsRepo struct {
	repository.Repository[*Account]
	db *bun.DB
}

var _ Accounts = (*accountsRepo)(nil)

// NewAccountsRepository creates the Bun-backed Accounts repository
func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &accountsRepo{
		Repository: repo,
		db:         db,
	}
}

func (a *accountsRepo) ByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return a.byColumn(ctx, "id", id.String())
}

func (a *accountsRepo) ByUsername(ctx context.Context, username string) (*Account, error) {
	return a.byColumn(ctx, "username", username)
}

func (a *accountsRepo) ByEmail(ctx context.Context, email string) (*Account, error) {
	return a.byColumn(ctx, "email", email)
}

// ByIdentifier resolves an account id, then username, then email. Session
// subjects arrive here as id strings; login forms send either of the others.
func (a *accountsRepo) ByIdentifier(ctx context.Context, identifier string) (*Account, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		return a.ByID(ctx, id)
	}

	record, err := a.ByUsername(ctx, identifier)
	if err == nil {
		return record, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	return a.ByEmail(ctx, identifier)
}

func (a *accountsRepo) byColumn(ctx context.Context, column, value string) (*Account, error) {
	record := &Account{}

	err := a.db.NewSelect().
		Model(record).
		Relation("Roles").
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account")
	}

	return record, nil
}

// Register inserts the account and its role memberships. Uniqueness of
// username and email is checked up front and enforced again by the store's
// unique constraints.
func (a *accountsRepo) Register(ctx context.Context, record *Account) (*Account, error) {
	if _, err := a.ByUsername(ctx, record.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !IsNotFound(err) {
		return nil, err
	}

	if _, err := a.ByEmail(ctx, record.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !IsNotFound(err) {
		return nil, err
	}

	prepareAccountDefaults(record)

	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := a.Repository.CreateTx(ctx, tx, record)
		if err != nil {
			if isUniqueViolation(err) {
				return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create account")
		}
		record = created

		for _, role := range record.Roles {
			if role == nil || role.ID == uuid.Nil {
				continue
			}
			membership := &AccountRole{
				AccountID: record.ID,
				RoleID:    role.ID,
			}
			if _, err := tx.NewInsert().Model(membership).Exec(ctx); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "could not attach role membership")
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return record, nil
}

func (a *accountsRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, a.db, UpdateAccountPasswordSQL, passwordHash, id.String())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update account password")
	}

	if len(res) == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func (a *accountsRepo) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	return a.updateScalar(ctx, id, "email", email)
}

func (a *accountsRepo) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return a.updateScalar(ctx, id, "verified", true)
}

func (a *accountsRepo) updateScalar(ctx context.Context, id uuid.UUID, column string, value any) error {
	res, err := a.db.NewUpdate().
		Model((*Account)(nil)).
		Set(column+" = ?", value).
		Set("updated_at = current_timestamp").
		Where("?TableAlias.id = ?", id.String()).
		Where("?TableAlias.deleted_at IS NULL").
		Exec(ctx)

	if err != nil {
		if isUniqueViolation(err) {
			switch column {
			case "username":
				return ErrUsernameTaken
			case "email":
				return ErrEmailTaken
			}
			return goerrors.Wrap(err, goerrors.CategoryConflict, "account "+column+" already in use")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update account")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func (a *accountsRepo) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*Account, error) {
	q := a.db.NewUpdate().
		Model((*Account)(nil)).
		Set("updated_at = current_timestamp").
		Where("?TableAlias.id = ?", id.String()).
		Where("?TableAlias.deleted_at IS NULL")

	if update.Name != nil {
		q = q.Set("name = ?", *update.Name)
	}
	if update.Surname != nil {
		q = q.Set("surname = ?", *update.Surname)
	}
	if update.Birthdate != nil {
		q = q.Set("birthdate = ?", *update.Birthdate)
	}
	if update.Avatar != nil {
		q = q.Set("avatar = ?", *update.Avatar)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update account profile")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrAccountNotFound
	}

	return a.ByID(ctx, id)
}

func (a *accountsRepo) UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*Account, error) {
	if _, err := a.ByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !IsNotFound(err) {
		return nil, err
	}

	if err := a.updateScalar(ctx, id, "username", username); err != nil {
		return nil, err
	}

	return a.ByID(ctx, id)
}

// Remove deletes the row outright. The unique username and email columns
// must be reusable afterwards, so a soft delete is not enough here.
func (a *accountsRepo) Remove(ctx context.Context, id uuid.UUID) error {
	res, err := a.db.NewDelete().
		Model((*Account)(nil)).
		Where("?TableAlias.id = ?", id.String()).
		ForceDelete().
		Exec(ctx)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to remove account")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func (a *accountsRepo) List(ctx context.Context) ([]*Account, error) {
	var records []*Account

	err := a.db.NewSelect().
		Model(&records).
		Relation("Roles").
		Order("acc.created_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list accounts")
	}

	return records, nil
}

// isUniqueViolation reports whether a driver error is a unique-constraint
// violation. Matches the sqlite and postgres wordings.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	return strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "duplicate key value")
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
