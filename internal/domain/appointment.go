package domain

type AppointmentStatus string

const (
	AppointmentPending    AppointmentStatus = "pending"
	AppointmentConfirmed  AppointmentStatus = "confirmed"
	AppointmentInProgress AppointmentStatus = "in_progress"
	AppointmentCompleted  AppointmentStatus = "completed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
)

type AppointmentID string

// CallRoomID maps an appointment to its call room. Deterministic, so the same
// appointment always lands in the same room without a lookup table.
func (id AppointmentID) CallRoomID() RoomID {
	return RoomID("appointment_" + string(id))
}

// Appointment is the scheduling record a call room is keyed to. The signaling
// core only reads it; the scheduling service owns it.
type Appointment struct {
	ID        AppointmentID
	PatientID UserID
	DoctorID  string // doctor profile id, not a user id
	Status    AppointmentStatus
}

// DoctorProfile links a doctor's user account to the profile id that
// appointments reference.
type DoctorProfile struct {
	ID     string
	UserID UserID
}
