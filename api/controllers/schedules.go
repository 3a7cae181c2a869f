package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/apillow22-icdconnect/icd-connect-backend/api/middleware"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/responses"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/validators"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/schedules"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/logger"
)

type createScheduleRequest struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	WeekOf      time.Time       `json:"week_of" validate:"required"`
	Type        string          `json:"type"`
	Activities  json.RawMessage `json:"activities"`
	Shifts      []models.Shift  `json:"shifts"`
}

type updateScheduleRequest struct {
	Title       *string         `json:"title" validate:"omitempty,min=1"`
	Description *string         `json:"description"`
	WeekOf      *time.Time      `json:"week_of"`
	Type        *string         `json:"type"`
	Activities  json.RawMessage `json:"activities"`
	Shifts      []models.Shift  `json:"shifts"`
}

// ScheduleCreate stores a schedule and fans out shift notifications. The
// response carries the delivery report alongside the schedule.
func ScheduleCreate(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createScheduleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), schedules.CreateInput{
			Title:       body.Title,
			Description: body.Description,
			WeekOf:      body.WeekOf,
			Type:        enums.ScheduleType(body.Type),
			Activities:  body.Activities,
			Shifts:      body.Shifts,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func ScheduleList(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListByTeam(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ScheduleGet(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "scheduleId"), "scheduleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		schedule, err := svc.Get(r.Context(), middleware.ActorFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, schedule)
	}
}

func ScheduleUpdate(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "scheduleId"), "scheduleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateScheduleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := schedules.UpdateInput{
			Title:       body.Title,
			Description: body.Description,
			WeekOf:      body.WeekOf,
			Activities:  body.Activities,
			Shifts:      body.Shifts,
		}
		if body.Type != nil {
			scheduleType := enums.ScheduleType(*body.Type)
			input.Type = &scheduleType
		}

		result, err := svc.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ScheduleDelete(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "scheduleId"), "scheduleId")
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
