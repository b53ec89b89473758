package domain

import "time"

// Estados validos para una postulacion.
const (
	StatusApplied      = "applied"
	StatusInterviewing = "interviewing"
	StatusOffered      = "offered"
	StatusRejected     = "rejected"
	StatusAccepted     = "accepted"
)

type JobApplication struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Company       string     `json:"company"`
	Position      string     `json:"position"`
	Status        string     `json:"status"`
	DateApplied   time.Time  `json:"date_applied"`
	Location      string     `json:"location"`
	Salary        string     `json:"salary,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	ContactPerson string     `json:"contact_person,omitempty"`
	ContactEmail  string     `json:"contact_email,omitempty"`
	NextFollowUp  *time.Time `json:"next_follow_up,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ValidStatus indica si el estado pertenece al conjunto permitido.
func ValidStatus(s string) bool {
	switch s {
	case StatusApplied, StatusInterviewing, StatusOffered, StatusRejected, StatusAccepted:
		return true
	}
	return false
}
