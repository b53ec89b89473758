package domain

import "time"

type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	PasswordHash       string     `json:"-"`
	SecurityQuestion   string     `json:"security_question,omitempty"`
	SecurityAnswerHash string     `json:"-"`
	ResetToken         string     `json:"-"`
	ResetTokenExpires  *time.Time `json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
}
