package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/priyanshsolanki/medilink-assignment3/internal/message"
	"github.com/priyanshsolanki/medilink-assignment3/internal/user"
)

func sendMessageHandler(svc *message.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if req.RecipientID == "" || req.EncryptedContent == "" || req.IV == "" {
			writeError(w, http.StatusBadRequest, "missing_fields", "recipientId, encryptedContent and iv are required")
			return
		}

		recipientID, err := uuid.Parse(req.RecipientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_recipient_id", "recipientId must be a valid UUID")
			return
		}

		actor, _ := CurrentActor(r.Context())

		m, err := svc.Send(r.Context(), actor.ID, recipientID, req.EncryptedContent, req.IV)
		if err != nil {
			switch {
			case errors.Is(err, message.ErrSelfMessage):
				writeError(w, http.StatusForbidden, "self_message", err.Error())
			case errors.Is(err, user.ErrUserNotFound):
				writeError(w, http.StatusNotFound, "recipient_not_found", err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}

		writeJSON(w, http.StatusCreated, MessageResponse{
			Message:   "Message sent successfully",
			MessageID: m.ID,
		})
	}
}

func conversationHandler(svc *message.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		otherID, err := uuid.Parse(chi.URLParam(r, "userId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_user_id", "userId must be a valid UUID")
			return
		}

		actor, _ := CurrentActor(r.Context())

		msgs, err := svc.Conversation(r.Context(), actor.ID, otherID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, msgs)
	}
}
