package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

func ValidRole(r Role) bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID
	Name         string
	Gender       string
	DOB          *time.Time
	Email        string
	PasswordHash string
	Role         Role
	Specialty    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
