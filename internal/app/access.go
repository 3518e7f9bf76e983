package app

import (
	"context"
	"errors"

	"github.com/telecare/signaling/internal/domain"
)

// Rejection reasons surfaced to the client verbatim. Authorization failures
// are non-retryable without an external state change.
var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrAppointmentNotConfirmed = errors.New("appointment is not confirmed")
	ErrNotAuthorized           = errors.New("not authorized for this appointment")
	ErrDoctorProfileNotFound   = errors.New("doctor profile not found")
)

// AccessChecker decides whether a user may join the call attached to an
// appointment. Implementations live outside the signaling core; the gateway
// awaits them without holding any registry lock.
type AccessChecker interface {
	Validate(ctx context.Context, userID domain.UserID, role domain.Role, appointmentID domain.AppointmentID) (*domain.Appointment, error)
}
