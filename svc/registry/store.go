package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storegate/storegate/pkg/pg"
	"github.com/storegate/storegate/pkg/slug"
)

// Store is the persistence surface the handlers depend on.
type Store interface {
	Create(ctx context.Context, in Input) (*Tenant, error)
	Get(ctx context.Context, id string) (*Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
}

// PGStore keeps the tenant directory in the shared control-plane database.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore builds a store over the given connection pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS tenants (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	subdomain   TEXT NOT NULL UNIQUE,
	db_location TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// EnsureSchema creates the tenants table when it does not exist yet.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure tenants schema: %w", err)
	}
	return nil
}

// Create validates and inserts a tenant. An empty subdomain is derived from
// the name with a random suffix to avoid collisions between similar names.
func (s *PGStore) Create(ctx context.Context, in Input) (*Tenant, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	subdomain := in.Subdomain
	if subdomain == "" {
		subdomain = slug.Make(in.Name, slug.MaxLength(maxSubdomainLength), slug.WithSuffix(6))
	}

	t := &Tenant{
		ID:         uuid.NewString(),
		Name:       in.Name,
		Subdomain:  subdomain,
		DBLocation: in.DBLocation,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO tenants (id, name, subdomain, db_location, created_at) VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Name, t.Subdomain, t.DBLocation, t.CreatedAt,
	)
	if pg.IsDuplicateKeyError(err) {
		return nil, ErrDuplicateSubdomain
	}
	if err != nil {
		return nil, fmt.Errorf("insert tenant: %w", err)
	}
	return t, nil
}

// Get returns a tenant by id.
func (s *PGStore) Get(ctx context.Context, id string) (*Tenant, error) {
	return s.queryOne(ctx,
		`SELECT id, name, subdomain, db_location, created_at FROM tenants WHERE id = $1`, id)
}

// GetBySubdomain returns the tenant owning the given subdomain.
func (s *PGStore) GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error) {
	return s.queryOne(ctx,
		`SELECT id, name, subdomain, db_location, created_at FROM tenants WHERE subdomain = $1`, subdomain)
}

// List returns all registered tenants, newest first.
func (s *PGStore) List(ctx context.Context) ([]Tenant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, subdomain, db_location, created_at FROM tenants ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]Tenant, 0)
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Subdomain, &t.DBLocation, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

func (s *PGStore) queryOne(ctx context.Context, query string, arg any) (*Tenant, error) {
	var t Tenant
	err := s.pool.QueryRow(ctx, query, arg).
		Scan(&t.ID, &t.Name, &t.Subdomain, &t.DBLocation, &t.CreatedAt)
	if pg.IsNotFoundError(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query tenant: %w", err)
	}
	return &t, nil
}
