package directory

import (
	"context"
	"errors"
	"fmt"

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

// =========== Clinic Repository ===========

type clinicRepoPG struct{ pool *pgxpool.Pool }

func NewClinicRepoPG(pool *pgxpool.Pool) ClinicRepository { return &clinicRepoPG{pool: pool} }

func (r *clinicRepoPG) conn(ctx context.Context) queryable {
	return db.Conn(ctx, r.pool)
}

const clinicCols = `id, name, address, city, phone, photo_id, created_at`

func (r *clinicRepoPG) scanClinic(row pgx.Row) (*VetClinic, error) {
	var c VetClinic
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.City, &c.Phone, &c.PhotoID, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrClinicNotFound
	}
	return &c, err
}

func (r *clinicRepoPG) Create(ctx context.Context, c *VetClinic) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO vet_clinic (id, name, address, city, phone, photo_id)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID, c.Name, c.Address, c.City, c.Phone, c.PhotoID)
	return err
}

func (r *clinicRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*VetClinic, error) {
	return r.scanClinic(r.conn(ctx).QueryRow(ctx, `SELECT `+clinicCols+` FROM vet_clinic WHERE id = $1`, id))
}

func (r *clinicRepoPG) List(ctx context.Context, limit, offset int) ([]*VetClinic, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM vet_clinic`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+clinicCols+` FROM vet_clinic ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*VetClinic
	for rows.Next() {
		c, err := r.scanClinic(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

func (r *doctorRepoPG) conn(ctx context.Context) queryable {
	return db.Conn(ctx, r.pool)
}

// doctorSelect joins the clinic and aggregates review ratings in one query.
const doctorSelect = `
	SELECT d.id, d.clinic_id, d.name, d.specialty, d.bio, d.photo_id,
		d.work_start, d.work_end, d.slot_minutes, d.created_at,
		COALESCE(AVG(rv.rating), 0), COUNT(rv.id),
		c.id, c.name, c.address, c.city, c.phone, c.photo_id, c.created_at
	FROM doctor d
	JOIN vet_clinic c ON c.id = d.clinic_id
	LEFT JOIN review rv ON rv.doctor_id = d.id`

const doctorGroup = ` GROUP BY d.id, c.id`

func (r *doctorRepoPG) scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var c VetClinic
	err := row.Scan(&d.ID, &d.ClinicID, &d.Name, &d.Specialty, &d.Bio, &d.PhotoID,
		&d.WorkStart, &d.WorkEnd, &d.SlotMinutes, &d.CreatedAt,
		&d.Rating, &d.ReviewCount,
		&c.ID, &c.Name, &c.Address, &c.City, &c.Phone, &c.PhotoID, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, err
	}
	d.Clinic = &c
	return &d, nil
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor (id, clinic_id, name, specialty, bio, photo_id, work_start, work_end, slot_minutes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		d.ID, d.ClinicID, d.Name, d.Specialty, d.Bio, d.PhotoID, d.WorkStart, d.WorkEnd, d.SlotMinutes)
	return err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return r.scanDoctor(r.conn(ctx).QueryRow(ctx, doctorSelect+` WHERE d.id = $1`+doctorGroup, id))
}

func (r *doctorRepoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM doctor WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *doctorRepoPG) List(ctx context.Context, f DoctorFilter, limit, offset int) ([]*Doctor, int, error) {
	where := ` WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM doctor d JOIN vet_clinic c ON c.id = d.clinic_id WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.Query != "" {
		cond := fmt.Sprintf(` AND (d.name ILIKE $%d OR d.specialty ILIKE $%d OR c.name ILIKE $%d)`, idx, idx, idx)
		where += cond
		countQuery += cond
		args = append(args, "%"+f.Query+"%")
		idx++
	}
	if f.ClinicID != uuid.Nil {
		cond := fmt.Sprintf(` AND d.clinic_id = $%d`, idx)
		where += cond
		countQuery += cond
		args = append(args, f.ClinicID)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := doctorSelect + where + doctorGroup +
		fmt.Sprintf(` ORDER BY d.name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := r.scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *doctorRepoPG) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*Doctor, error) {
	rows, err := r.conn(ctx).Query(ctx, doctorSelect+` WHERE d.clinic_id = $1`+doctorGroup+` ORDER BY d.name`, clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := r.scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
