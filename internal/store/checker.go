// Package store resolves appointments and doctor profiles for call-access
// decisions. The records belong to the scheduling platform; this package only
// reads them.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/telecare/signaling/internal/app"
	"github.com/telecare/signaling/internal/domain"
)

// ErrNotFound is what finders return when a record does not exist; the checker
// translates it into the client-facing rejection reason.
var ErrNotFound = errors.New("not found")

type AppointmentFinder interface {
	FindAppointment(ctx context.Context, id domain.AppointmentID) (*domain.Appointment, error)
}

type DoctorFinder interface {
	FindDoctorByUserID(ctx context.Context, userID domain.UserID) (*domain.DoctorProfile, error)
}

// Checker implements app.AccessChecker over the platform's appointment and
// doctor records. Patients must match the appointment's patient id directly;
// doctors are resolved to their profile first, since appointments reference
// the profile id rather than the user account.
type Checker struct {
	appointments AppointmentFinder
	doctors      DoctorFinder
}

func NewChecker(appointments AppointmentFinder, doctors DoctorFinder) *Checker {
	return &Checker{appointments: appointments, doctors: doctors}
}

func (c *Checker) Validate(ctx context.Context, userID domain.UserID, role domain.Role, appointmentID domain.AppointmentID) (*domain.Appointment, error) {
	appt, err := c.appointments.FindAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Str("module", "store").Str("appointment", string(appointmentID)).
				Msg("appointment not found")
			return nil, app.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("looking up appointment %s: %w", appointmentID, err)
	}

	if appt.Status != domain.AppointmentConfirmed {
		log.Warn().Str("module", "store").Str("appointment", string(appointmentID)).
			Str("status", string(appt.Status)).Msg("appointment is not confirmed")
		return nil, app.ErrAppointmentNotConfirmed
	}

	switch role {
	case domain.RolePatient:
		if appt.PatientID != userID {
			log.Warn().Str("module", "store").Str("appointment", string(appointmentID)).
				Msg("patient not authorized for appointment")
			return nil, app.ErrNotAuthorized
		}
	case domain.RoleDoctor:
		doctor, err := c.doctors.FindDoctorByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, app.ErrDoctorProfileNotFound
			}
			return nil, fmt.Errorf("looking up doctor profile: %w", err)
		}
		if appt.DoctorID != doctor.ID {
			log.Warn().Str("module", "store").Str("appointment", string(appointmentID)).
				Msg("doctor not authorized for appointment")
			return nil, app.ErrNotAuthorized
		}
	default:
		return nil, domain.ErrInvalidRole
	}

	return appt, nil
}
