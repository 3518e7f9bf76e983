package store

import (
	"context"
	"errors"
	"testing"

	"github.com/telecare/signaling/internal/app"
	"github.com/telecare/signaling/internal/domain"
)

func newTestChecker() (*Checker, *Memory) {
	mem := NewMemory()
	return NewChecker(mem, mem), mem
}

func TestValidate_AppointmentNotFound(t *testing.T) {
	c, _ := newTestChecker()

	_, err := c.Validate(context.Background(), "user-1", domain.RolePatient, "missing")
	if !errors.Is(err, app.ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestValidate_NotConfirmed(t *testing.T) {
	c, mem := newTestChecker()
	mem.PutAppointment(domain.Appointment{
		ID:        "appt-1",
		PatientID: "user-1",
		Status:    domain.AppointmentPending,
	})

	_, err := c.Validate(context.Background(), "user-1", domain.RolePatient, "appt-1")
	if !errors.Is(err, app.ErrAppointmentNotConfirmed) {
		t.Fatalf("expected ErrAppointmentNotConfirmed, got %v", err)
	}
}

func TestValidate_PatientMatch(t *testing.T) {
	c, mem := newTestChecker()
	mem.PutAppointment(domain.Appointment{
		ID:        "appt-1",
		PatientID: "user-1",
		DoctorID:  "doc-profile-1",
		Status:    domain.AppointmentConfirmed,
	})

	appt, err := c.Validate(context.Background(), "user-1", domain.RolePatient, "appt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.ID != "appt-1" {
		t.Errorf("unexpected appointment: %+v", appt)
	}

	_, err = c.Validate(context.Background(), "other-user", domain.RolePatient, "appt-1")
	if !errors.Is(err, app.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestValidate_DoctorResolvedThroughProfile(t *testing.T) {
	c, mem := newTestChecker()
	mem.PutAppointment(domain.Appointment{
		ID:        "appt-1",
		PatientID: "user-1",
		DoctorID:  "doc-profile-1",
		Status:    domain.AppointmentConfirmed,
	})
	mem.PutDoctor(domain.DoctorProfile{ID: "doc-profile-1", UserID: "doc-user-1"})
	mem.PutDoctor(domain.DoctorProfile{ID: "doc-profile-2", UserID: "doc-user-2"})

	if _, err := c.Validate(context.Background(), "doc-user-1", domain.RoleDoctor, "appt-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A doctor whose profile does not match the appointment is rejected.
	_, err := c.Validate(context.Background(), "doc-user-2", domain.RoleDoctor, "appt-1")
	if !errors.Is(err, app.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	// A doctor with no profile at all gets a distinct reason.
	_, err = c.Validate(context.Background(), "doc-user-3", domain.RoleDoctor, "appt-1")
	if !errors.Is(err, app.ErrDoctorProfileNotFound) {
		t.Fatalf("expected ErrDoctorProfileNotFound, got %v", err)
	}
}

func TestValidate_UnknownRole(t *testing.T) {
	c, mem := newTestChecker()
	mem.PutAppointment(domain.Appointment{
		ID:        "appt-1",
		PatientID: "user-1",
		Status:    domain.AppointmentConfirmed,
	})

	_, err := c.Validate(context.Background(), "user-1", domain.Role("admin"), "appt-1")
	if !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}
