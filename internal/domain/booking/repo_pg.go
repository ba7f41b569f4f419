package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vetbook/vetbook/internal/domain/directory"
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

const apptCols = `id, user_id, doctor_id, to_char(date, 'YYYY-MM-DD'), time_slot, status, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.UserID, &a.DoctorID, &a.Date, &a.TimeSlot, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = StatusConfirmed
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment (id, user_id, doctor_id, date, time_slot, status)
		VALUES ($1,$2,$3,$4::date,$5,$6)
		RETURNING created_at, updated_at`,
		a.ID, a.UserID, a.DoctorID, a.Date, a.TimeSlot, a.Status).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSlotTaken
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET status = $2, updated_at = now() WHERE id = $1`,
		a.ID, a.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT a.id, a.user_id, a.doctor_id, to_char(a.date, 'YYYY-MM-DD'), a.time_slot, a.status,
			a.created_at, a.updated_at,
			d.id, d.clinic_id, d.name, d.specialty, d.work_start, d.work_end, d.slot_minutes,
			c.id, c.name, c.address, c.city, c.phone
		FROM appointment a
		JOIN doctor d ON d.id = a.doctor_id
		JOIN vet_clinic c ON c.id = d.clinic_id
		WHERE a.user_id = $1
		ORDER BY a.date, a.time_slot`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		var a Appointment
		var d directory.Doctor
		var c directory.VetClinic
		if err := rows.Scan(&a.ID, &a.UserID, &a.DoctorID, &a.Date, &a.TimeSlot, &a.Status,
			&a.CreatedAt, &a.UpdatedAt,
			&d.ID, &d.ClinicID, &d.Name, &d.Specialty, &d.WorkStart, &d.WorkEnd, &d.SlotMinutes,
			&c.ID, &c.Name, &c.Address, &c.City, &c.Phone); err != nil {
			return nil, err
		}
		d.Clinic = &c
		a.Doctor = &d
		items = append(items, &a)
	}
	return items, rows.Err()
}

func (r *repoPG) ListByDoctorRange(ctx context.Context, doctorID uuid.UUID, from, to string) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE doctor_id = $1 AND status = $2 AND date >= $3::date AND date < $4::date
		ORDER BY date, time_slot`, doctorID, StatusConfirmed, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) ExistsConfirmed(ctx context.Context, doctorID uuid.UUID, date, timeSlot string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM appointment
			WHERE doctor_id = $1 AND date = $2::date AND time_slot = $3 AND status = $4)`,
		doctorID, date, timeSlot, StatusConfirmed).Scan(&exists)
	return exists, err
}

func (r *repoPG) ExistsConfirmedForUser(ctx context.Context, userID, doctorID uuid.UUID, date, timeSlot string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM appointment
			WHERE user_id = $1 AND doctor_id = $2 AND date = $3::date AND time_slot = $4 AND status = $5)`,
		userID, doctorID, date, timeSlot, StatusConfirmed).Scan(&exists)
	return exists, err
}
