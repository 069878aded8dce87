package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/actu/newsroom/internal/core/domain"
)

const accountColumns = `id, username, email, password_hash, role, created_at, updated_at`

// AccountRepository implements ports.AccountRepository.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		a    domain.Account
		role string
	)
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &role, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", a.ID, err)
	}
	a.Role = parsed
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return &a, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	created := *account
	created.ID = uuid.NewString()

	_, err := conn(ctx, r.db).ExecContext(ctx,
		`insert into accounts (`+accountColumns+`) values ($1, $2, $3, $4, $5, $6, $7)`,
		created.ID, created.Username, created.Email, created.PasswordHash, created.Role.String(),
		created.CreatedAt.UTC(), created.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return &created, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, `where id = $1`, id)
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, `where username = $1`, username)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, `where lower(email) = lower($1)`, email)
}

func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `select `+accountColumns+` from accounts order by username`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		update accounts
		set username = $2, email = $3, password_hash = $4, role = $5, updated_at = $6
		where id = $1`,
		account.ID, account.Username, account.Email, account.PasswordHash, account.Role.String(), account.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}
	updated := *account
	return &updated, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `delete from accounts where id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) findOne(ctx context.Context, where string, arg any) (*domain.Account, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `select `+accountColumns+` from accounts `+where, arg)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}
