package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apillow22-icdconnect/icd-connect-backend/api/middleware"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/responses"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/validators"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/training"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/logger"
)

type createTrainingRequest struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Files       json.RawMessage `json:"files"`
}

type updateTrainingRequest struct {
	Title       *string         `json:"title" validate:"omitempty,min=1"`
	Description *string         `json:"description"`
	Category    *string         `json:"category"`
	Files       json.RawMessage `json:"files"`
}

func TrainingCreate(svc training.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createTrainingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		module, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), training.CreateInput{
			Title:       body.Title,
			Description: body.Description,
			Category:    body.Category,
			Files:       body.Files,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, module)
	}
}

func TrainingList(svc training.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modules, err := svc.ListByTeam(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, modules)
	}
}

func TrainingGet(svc training.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "moduleId"), "moduleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		module, err := svc.Get(r.Context(), middleware.ActorFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, module)
	}
}

func TrainingUpdate(svc training.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "moduleId"), "moduleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateTrainingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		module, err := svc.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, training.UpdateInput{
			Title:       body.Title,
			Description: body.Description,
			Category:    body.Category,
			Files:       body.Files,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, module)
	}
}

func TrainingDelete(svc training.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "moduleId"), "moduleId")
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

// TrainingConfirmTeachBack records the caller's teach-back confirmation.
func TrainingConfirmTeachBack(svc training.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "moduleId"), "moduleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		module, err := svc.ConfirmTeachBack(r.Context(), middleware.ActorFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, module)
	}
}
