package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/actu/newsroom/internal/core/domain"
)

const tokenColumns = `id, value, owner_account_id, created_at, expires_at, revoked`

// TokenRepository implements ports.TokenRepository.
type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func scanToken(row rowScanner) (*domain.IssuedToken, error) {
	var t domain.IssuedToken
	if err := row.Scan(&t.ID, &t.Value, &t.OwnerAccountID, &t.CreatedAt, &t.ExpiresAt, &t.Revoked); err != nil {
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.ExpiresAt = t.ExpiresAt.UTC()
	return &t, nil
}

func (r *TokenRepository) FindByID(ctx context.Context, id string) (*domain.IssuedToken, error) {
	return r.findOne(ctx, `where id = $1`, id)
}

func (r *TokenRepository) FindByValue(ctx context.Context, value string) (*domain.IssuedToken, error) {
	return r.findOne(ctx, `where value = $1`, value)
}

func (r *TokenRepository) FindLive(ctx context.Context, accountID string, now time.Time) (*domain.IssuedToken, error) {
	return r.findOne(ctx,
		`where owner_account_id = $1 and not revoked and expires_at > $2 order by created_at desc limit 1`,
		accountID, now.UTC())
}

func (r *TokenRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.IssuedToken, error) {
	return r.list(ctx, `where owner_account_id = $1 order by created_at desc`, accountID)
}

func (r *TokenRepository) ListAll(ctx context.Context) ([]*domain.IssuedToken, error) {
	return r.list(ctx, `order by created_at desc`)
}

func (r *TokenRepository) Save(ctx context.Context, token *domain.IssuedToken) error {
	q := conn(ctx, r.db)

	if token.ID == "" {
		id := uuid.NewString()
		_, err := q.ExecContext(ctx,
			`insert into tokens (`+tokenColumns+`) values ($1, $2, $3, $4, $5, $6)`,
			id, token.Value, token.OwnerAccountID, token.CreatedAt.UTC(), token.ExpiresAt.UTC(), token.Revoked)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return fmt.Errorf("insert token: %w", err)
		}
		token.ID = id
		return nil
	}

	res, err := q.ExecContext(ctx, `
		update tokens
		set value = $2, owner_account_id = $3, created_at = $4, expires_at = $5, revoked = $6
		where id = $1`,
		token.ID, token.Value, token.OwnerAccountID, token.CreatedAt.UTC(), token.ExpiresAt.UTC(), token.Revoked)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("update token: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TokenRepository) DeleteByAccount(ctx context.Context, accountID string) (int64, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, `delete from tokens where owner_account_id = $1`, accountID)
	if err != nil {
		return 0, fmt.Errorf("delete tokens: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *TokenRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `delete from tokens where id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TokenRepository) findOne(ctx context.Context, where string, args ...any) (*domain.IssuedToken, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `select `+tokenColumns+` from tokens `+where, args...)
	t, err := scanToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find token: %w", err)
	}
	return t, nil
}

func (r *TokenRepository) list(ctx context.Context, tail string, args ...any) ([]*domain.IssuedToken, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `select `+tokenColumns+` from tokens `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var out []*domain.IssuedToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
