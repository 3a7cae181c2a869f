package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/apillow22-icdconnect/icd-connect-backend/api/middleware"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/responses"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/validators"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/messages"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/logger"
)

type sendMessageRequest struct {
	Content     string     `json:"content" validate:"required"`
	RecipientID *uuid.UUID `json:"recipient_id"`
}

// MessageSend posts a chat message. Without a recipient the message goes
// to the caller's whole team.
func MessageSend(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body sendMessageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.Send(r.Context(), middleware.ActorFromContext(r.Context()), messages.SendInput{
			Content:     body.Content,
			RecipientID: body.RecipientID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

// MessageInbox lists team messages plus messages addressed to the caller.
func MessageInbox(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inbox, err := svc.Inbox(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, inbox)
	}
}

func MessageSent(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sent, err := svc.Sent(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sent)
	}
}

// MessageThread lists the private conversation between the caller and
// another user, oldest first.
func MessageThread(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		otherID, err := validators.ParsePathUUID(chi.URLParam(r, "userId"), "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		thread, err := svc.Thread(r.Context(), middleware.ActorFromContext(r.Context()), otherID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, thread)
	}
}

func MessageDelete(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "messageId"), "messageId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.ActorFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
