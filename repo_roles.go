package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Roles is the storage surface for the role catalog
type Roles interface {
	GetByName(ctx context.Context, name RoleName) (*Role, error)
	GetByNames(ctx context.Context, names []RoleName) ([]*Role, error)
	List(ctx context.Context) ([]*Role, error)
	// EnsureCatalog creates any catalog role that is missing. Roles are
	// never deleted, so this runs once at startup and is otherwise a no-op.
	EnsureCatalog(ctx context.Context) error
}

type rolesRepo struct {
	repository.Repository[*Role]
	db *bun.DB
}

var _ Roles = (*rolesRepo)(nil)

// NewRolesRepository creates the Bun-backed Roles repository
func NewRolesRepository(db *bun.DB) Roles {
	handlers := repository.ModelHandlers[*Role]{
		NewRecord: func() *Role { return &Role{} },
		GetID: func(record *Role) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Role, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
	}

	return &rolesRepo{
		Repository: repository.NewRepository(db, handlers),
		db:         db,
	}
}

func (r *rolesRepo) GetByName(ctx context.Context, name RoleName) (*Role, error) {
	record := &Role{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, goerrors.New("role not found", goerrors.CategoryNotFound).
				WithMetadata(map[string]any{"name": name})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve role")
	}

	return record, nil
}

func (r *rolesRepo) GetByNames(ctx context.Context, names []RoleName) ([]*Role, error) {
	records := make([]*Role, 0, len(names))

	for _, name := range names {
		record, err := r.GetByName(ctx, name)
		if err != nil {
			if goerrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

func (r *rolesRepo) List(ctx context.Context) ([]*Role, error) {
	var records []*Role

	err := r.db.NewSelect().
		Model(&records).
		Order("rol.name ASC").
		Scan(ctx)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list roles")
	}

	return records, nil
}

func (r *rolesRepo) EnsureCatalog(ctx context.Context) error {
	for _, name := range RoleCatalog() {
		if _, err := r.GetByName(ctx, name); err == nil {
			continue
		} else if !goerrors.IsNotFound(err) {
			return err
		}

		record := &Role{
			ID:   uuid.New(),
			Name: name,
		}

		if _, err := r.db.NewInsert().
			Model(record).
			On("CONFLICT (name) DO NOTHING").
			Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to seed role catalog")
		}
	}

	return nil
}
