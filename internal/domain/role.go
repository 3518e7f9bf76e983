// Package domain contains plain entities shared across the service; no
// transport or lifecycle logic here.
package domain

import "errors"

var ErrInvalidRole = errors.New("invalid role")

// Role is the closed set of call participants. Unknown values are rejected at
// the authentication boundary, never deeper in room logic.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleDoctor, RolePatient:
		return Role(s), nil
	}
	return "", ErrInvalidRole
}
