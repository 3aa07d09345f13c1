package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/priyanshsolanki/medilink-assignment3/internal/appointment"
	"github.com/priyanshsolanki/medilink-assignment3/internal/availability"
)

type RegisterRequest struct {
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	DOB       string `json:"dob,omitempty"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role,omitempty"`
	Specialty string `json:"specialty,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token  string    `json:"token"`
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
	Role   string    `json:"role"`
}

type CreateWindowRequest struct {
	DoctorID    string `json:"doctorId"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	IsRecurring bool   `json:"isRecurring"`
}

type UpdateWindowRequest struct {
	Date        *string `json:"date,omitempty"`
	StartTime   *string `json:"startTime,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
	IsRecurring *bool   `json:"isRecurring,omitempty"`
}

type WindowResponse struct {
	ID          uuid.UUID `json:"id"`
	DoctorID    uuid.UUID `json:"doctorId"`
	Date        string    `json:"date"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	IsRecurring bool      `json:"isRecurring"`
}

func toWindowResponse(w *availability.Window) WindowResponse {
	return WindowResponse{
		ID:          w.ID,
		DoctorID:    w.DoctorID,
		Date:        w.Day,
		StartTime:   w.StartTime,
		EndTime:     w.EndTime,
		IsRecurring: w.IsRecurring,
	}
}

type DoctorScheduleResponse struct {
	DoctorID     uuid.UUID                `json:"doctorId"`
	Availability availability.DaySchedule `json:"availability"`
}

type BookRequest struct {
	PatientID string `json:"patientId"`
	DoctorID  string `json:"doctorId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

type BookResponse struct {
	Message       string     `json:"message"`
	AppointmentID *uuid.UUID `json:"appointmentId,omitempty"`
	CallLink      string     `json:"callLink,omitempty"`
}

type RescheduleRequest struct {
	NewDate string `json:"newDate"`
	NewTime string `json:"newTime"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AppointmentResponse struct {
	AppointmentID   uuid.UUID `json:"appointmentId"`
	PatientID       uuid.UUID `json:"patientId"`
	DoctorID        uuid.UUID `json:"doctorId"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Status          string    `json:"status"`
	PatientName     string    `json:"patientName,omitempty"`
	DoctorName      string    `json:"doctorName,omitempty"`
	DoctorSpecialty *string   `json:"doctorSpecialty,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toAppointmentResponse(d appointment.Detail) AppointmentResponse {
	return AppointmentResponse{
		AppointmentID:   d.ID,
		PatientID:       d.PatientID,
		DoctorID:        d.DoctorID,
		Date:            d.Day,
		Time:            d.SlotTime,
		Status:          string(d.Status),
		PatientName:     d.PatientName,
		DoctorName:      d.DoctorName,
		DoctorSpecialty: d.DoctorSpecialty,
		CreatedAt:       d.CreatedAt,
	}
}

type CallLinkResponse struct {
	CallLink string `json:"callLink"`
}

type SendMessageRequest struct {
	RecipientID      string `json:"recipientId"`
	EncryptedContent string `json:"encryptedContent"`
	IV               string `json:"iv"`
}

type MessageResponse struct {
	Message   string    `json:"message"`
	MessageID uuid.UUID `json:"messageId"`
}
