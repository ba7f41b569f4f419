package verification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vetbook/vetbook/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	return db.Conn(ctx, r.pool)
}

const codeCols = `id, phone, code, is_verified, created_at`

func (r *repoPG) scanCode(row pgx.Row) (*VerificationCode, error) {
	var c VerificationCode
	err := row.Scan(&c.ID, &c.Phone, &c.Code, &c.IsVerified, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoCode
	}
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *VerificationCode) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO verification_code (id, phone, code, is_verified, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		c.ID, c.Phone, c.Code, c.IsVerified, c.CreatedAt)
	return err
}

func (r *repoPG) Latest(ctx context.Context, phone string) (*VerificationCode, error) {
	return r.scanCode(r.conn(ctx).QueryRow(ctx, `
		SELECT `+codeCols+` FROM verification_code
		WHERE phone = $1 ORDER BY created_at DESC LIMIT 1`, phone))
}

func (r *repoPG) LatestMatching(ctx context.Context, phone, code string) (*VerificationCode, error) {
	return r.scanCode(r.conn(ctx).QueryRow(ctx, `
		SELECT `+codeCols+` FROM verification_code
		WHERE phone = $1 AND code = $2 ORDER BY created_at DESC LIMIT 1`, phone, code))
}

func (r *repoPG) LatestVerified(ctx context.Context, phone string) (*VerificationCode, error) {
	return r.scanCode(r.conn(ctx).QueryRow(ctx, `
		SELECT `+codeCols+` FROM verification_code
		WHERE phone = $1 AND is_verified = TRUE ORDER BY created_at DESC LIMIT 1`, phone))
}

func (r *repoPG) MarkVerified(ctx context.Context, id string) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE verification_code SET is_verified = TRUE WHERE id = $1`, id)
	return err
}

func (r *repoPG) CountSince(ctx context.Context, phone string, since time.Time) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM verification_code WHERE phone = $1 AND created_at >= $2`,
		phone, since).Scan(&n)
	return n, err
}

func (r *repoPG) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM verification_code WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
