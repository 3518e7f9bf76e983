package app

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/telecare/signaling/internal/domain"
)

func participant(user string, role domain.Role, conn string) domain.Participant {
	return domain.Participant{UserID: domain.UserID(user), Role: role, ConnID: domain.ConnID(conn)}
}

func TestJoin_EmptyRoomAlwaysPermits(t *testing.T) {
	r := NewRegistry()
	if err := r.CanJoin("r1", domain.RoleDoctor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Join("r1", participant("u1", domain.RoleDoctor, "c1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.Count("r1"); got != 1 {
		t.Errorf("expected 1 participant, got %d", got)
	}
}

func TestJoin_RoleTaken(t *testing.T) {
	r := NewRegistry()
	if err := r.Join("r1", participant("u1", domain.RoleDoctor, "c1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := r.Join("r1", participant("u2", domain.RoleDoctor, "c2"))
	var taken RoleTakenError
	if !errors.As(err, &taken) {
		t.Fatalf("expected RoleTakenError, got %v", err)
	}
	if taken.Role != domain.RoleDoctor {
		t.Errorf("expected doctor in error, got %q", taken.Role)
	}
	if got := r.Count("r1"); got != 1 {
		t.Errorf("registry mutated on rejected join: count %d", got)
	}
}

func TestJoin_RoomFull(t *testing.T) {
	r := NewRegistry()
	if err := r.Join("r1", participant("u1", domain.RoleDoctor, "c1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Join("r1", participant("u2", domain.RolePatient, "c2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Capacity is checked before roles, so a full room reports ErrRoomFull
	// even when the role would clash too.
	if err := r.CanJoin("r1", domain.RoleDoctor); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	if got := r.Count("r1"); got != 2 {
		t.Errorf("expected 2 participants, got %d", got)
	}
}

func TestJoin_UserInOneRoomSystemWide(t *testing.T) {
	r := NewRegistry()
	if err := r.Join("r1", participant("u1", domain.RoleDoctor, "c1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := r.Join("r1", participant("u1", domain.RoleDoctor, "c1b")); !errors.Is(err, ErrAlreadyInRoom) {
		t.Fatalf("expected ErrAlreadyInRoom for same room, got %v", err)
	}
	if err := r.Join("r2", participant("u1", domain.RoleDoctor, "c1c")); !errors.Is(err, ErrAlreadyInRoom) {
		t.Fatalf("expected ErrAlreadyInRoom for second room, got %v", err)
	}

	if !r.IsUserPresent("r1", "u1") {
		t.Error("expected u1 present in r1")
	}
	if r.IsUserPresent("r2", "u1") {
		t.Error("u1 must not be present in r2")
	}
}

func TestRemoveByUser_EmptyRoomCleanup(t *testing.T) {
	r := NewRegistry()
	if err := r.Join("r1", participant("u1", domain.RolePatient, "c1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	removed, ok := r.RemoveByUser("r1", "u1")
	if !ok {
		t.Fatal("expected a removal")
	}
	if removed.Role != domain.RolePatient || removed.ConnID != "c1" {
		t.Errorf("unexpected removed participant: %+v", removed)
	}
	if got := r.Count("r1"); got != 0 {
		t.Errorf("expected empty registry for r1, got %d", got)
	}

	// The user may join again once removed.
	if err := r.Join("r2", participant("u1", domain.RolePatient, "c2")); err != nil {
		t.Fatalf("rejoin after removal failed: %v", err)
	}
}

func TestRemoveByConn(t *testing.T) {
	r := NewRegistry()
	if err := r.Join("r1", participant("u1", domain.RoleDoctor, "c1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Join("r1", participant("u2", domain.RolePatient, "c2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	removed, ok := r.RemoveByConn("r1", "c2")
	if !ok || removed.UserID != "u2" {
		t.Fatalf("expected removal of u2, got %+v ok=%v", removed, ok)
	}
	if got := r.Count("r1"); got != 1 {
		t.Errorf("expected 1 participant left, got %d", got)
	}

	if _, ok := r.RemoveByConn("r1", "c-unknown"); ok {
		t.Error("removal of unknown connection must be a no-op")
	}
}

func TestOther(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Other("r1", "u1"); ok {
		t.Fatal("no peer expected in missing room")
	}

	if err := r.Join("r1", participant("u1", domain.RoleDoctor, "c1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.Other("r1", "u1"); ok {
		t.Fatal("no peer expected with a single participant")
	}

	if err := r.Join("r1", participant("u2", domain.RolePatient, "c2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other, ok := r.Other("r1", "u1")
	if !ok || other.UserID != "u2" || other.Role != domain.RolePatient {
		t.Fatalf("unexpected peer: %+v ok=%v", other, ok)
	}
}

func TestJoin_ConcurrentSameRole(t *testing.T) {
	r := NewRegistry()

	const attempts = 32
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := participant(fmt.Sprintf("u%d", i), domain.RoleDoctor, fmt.Sprintf("c%d", i))
			errs[i] = r.Join("r1", p)
		}(i)
	}
	wg.Wait()

	var joined int
	for _, err := range errs {
		if err == nil {
			joined++
		}
	}
	if joined != 1 {
		t.Fatalf("expected exactly one doctor to win the race, got %d", joined)
	}
	if got := r.Count("r1"); got != 1 {
		t.Errorf("expected 1 participant, got %d", got)
	}
}
