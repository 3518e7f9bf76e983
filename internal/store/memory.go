package store

import (
	"context"
	"sync"

	"github.com/telecare/signaling/internal/domain"
)

// Memory backs the checker with in-process maps. Used in tests and in dev
// mode when no database is configured.
type Memory struct {
	mu           sync.RWMutex
	appointments map[domain.AppointmentID]domain.Appointment
	doctors      map[domain.UserID]domain.DoctorProfile
}

func NewMemory() *Memory {
	return &Memory{
		appointments: make(map[domain.AppointmentID]domain.Appointment),
		doctors:      make(map[domain.UserID]domain.DoctorProfile),
	}
}

func (m *Memory) PutAppointment(a domain.Appointment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appointments[a.ID] = a
}

func (m *Memory) PutDoctor(d domain.DoctorProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doctors[d.UserID] = d
}

func (m *Memory) FindAppointment(_ context.Context, id domain.AppointmentID) (*domain.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.appointments[id]; ok {
		return &a, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) FindDoctorByUserID(_ context.Context, userID domain.UserID) (*domain.DoctorProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.doctors[userID]; ok {
		return &d, nil
	}
	return nil, ErrNotFound
}
