package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telecare/signaling/internal/domain"
)

// Postgres reads appointment and doctor records from the platform database.
// The schema is owned by the scheduling service; only the columns needed for
// access decisions are selected here.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) FindAppointment(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error) {
	const q = `SELECT id, patient_id, doctor_id, status FROM appointments WHERE id = $1`

	var a domain.Appointment
	err := p.pool.QueryRow(ctx, q, string(id)).Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying appointment: %w", err)
	}
	return &a, nil
}

func (p *Postgres) FindDoctorByUserID(ctx context.Context, userID domain.UserID) (*domain.DoctorProfile, error) {
	const q = `SELECT id, user_id FROM doctors WHERE user_id = $1`

	var d domain.DoctorProfile
	err := p.pool.QueryRow(ctx, q, string(userID)).Scan(&d.ID, &d.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying doctor profile: %w", err)
	}
	return &d, nil
}
