package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/priyanshsolanki/medilink-assignment3/internal/appointment"
	"github.com/priyanshsolanki/medilink-assignment3/internal/calllink"
	"github.com/priyanshsolanki/medilink-assignment3/internal/user"
)

func bookAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if req.PatientID == "" || req.DoctorID == "" || req.Date == "" || req.Time == "" {
			writeError(w, http.StatusBadRequest, "missing_fields", "patientId, doctorId, date and time are required")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patientId must be a valid UUID")
			return
		}
		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctorId must be a valid UUID")
			return
		}

		actor, _ := CurrentActor(r.Context())

		result, err := svc.Book(r.Context(), actor, patientID, doctorID, req.Date, req.Time)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		// Soft outcome: the slot cannot be booked but nothing went wrong.
		if result.Unavailable != "" {
			writeJSON(w, http.StatusOK, BookResponse{Message: result.Unavailable})
			return
		}

		writeJSON(w, http.StatusCreated, BookResponse{
			Message:       "Appointment booked successfully",
			AppointmentID: &result.Appointment.ID,
			CallLink:      result.CallLink,
		})
	}
}

func rescheduleAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req RescheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.NewDate == "" || req.NewTime == "" {
			writeError(w, http.StatusBadRequest, "missing_fields", "newDate and newTime are required")
			return
		}

		actor, _ := CurrentActor(r.Context())

		_, link, err := svc.Reschedule(r.Context(), actor, id, req.NewDate, req.NewTime)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, BookResponse{
			Message:  "Appointment rescheduled",
			CallLink: link,
		})
	}
}

func cancelAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		actor, _ := CurrentActor(r.Context())

		if _, err := svc.Cancel(r.Context(), actor, id); err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "Appointment cancelled"})
	}
}

func updateAppointmentStatusHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		actor, _ := CurrentActor(r.Context())

		if _, err := svc.UpdateStatus(r.Context(), actor, id, appointment.Status(req.Status)); err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "Status updated"})
	}
}

func listPatientAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := uuid.Parse(chi.URLParam(r, "patientId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patientId must be a valid UUID")
			return
		}

		details, err := svc.ListByPatient(r.Context(), patientID)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}
		if len(details) == 0 {
			writeError(w, http.StatusNotFound, "no_appointments", "No appointments found")
			return
		}

		out := make([]AppointmentResponse, len(details))
		for i, d := range details {
			out[i] = toAppointmentResponse(d)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listDoctorAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "doctorId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctorId must be a valid UUID")
			return
		}

		actor, _ := CurrentActor(r.Context())

		details, err := svc.ListByDoctor(r.Context(), actor, doctorID)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}
		if len(details) == 0 {
			writeError(w, http.StatusNotFound, "no_appointments", "No appointments found")
			return
		}

		out := make([]AppointmentResponse, len(details))
		for i, d := range details {
			out[i] = toAppointmentResponse(d)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func callLinkHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		actor, _ := CurrentActor(r.Context())

		link, err := svc.CallLink(r.Context(), actor, id)
		if err != nil {
			if errors.Is(err, calllink.ErrLinkExpired) {
				writeError(w, http.StatusGone, "link_expired", "Call link expired")
				return
			}
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, CallLinkResponse{CallLink: link})
	}
}

func handleAppointmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrInvalidInput), errors.Is(err, appointment.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, appointment.ErrForbidden):
		writeError(w, http.StatusForbidden, "access_denied", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", err.Error())
	// Reschedule conflicts are hard 409s, unlike the booking path where
	// the same conditions are soft 200 outcomes.
	case errors.Is(err, appointment.ErrNoAvailability):
		writeError(w, http.StatusConflict, "no_availability", "No availability for this doctor on the new date")
	case errors.Is(err, appointment.ErrSlotNotOffered):
		writeError(w, http.StatusConflict, "slot_not_offered", "New time is not within available slots")
	case errors.Is(err, appointment.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_taken", "New time slot unavailable")
	case errors.Is(err, appointment.ErrSlotBeingBooked):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
