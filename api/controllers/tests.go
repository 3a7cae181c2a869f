package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apillow22-icdconnect/icd-connect-backend/api/middleware"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/responses"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/validators"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/tests"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/logger"
)

type createTestRequest struct {
	Title            string                `json:"title" validate:"required"`
	Description      string                `json:"description"`
	Questions        []models.TestQuestion `json:"questions" validate:"required,min=1"`
	TimeLimitMinutes int                   `json:"time_limit_minutes" validate:"omitempty,gt=0"`
}

type updateTestRequest struct {
	Title            *string               `json:"title" validate:"omitempty,min=1"`
	Description      *string               `json:"description"`
	Questions        []models.TestQuestion `json:"questions"`
	TimeLimitMinutes *int                  `json:"time_limit_minutes" validate:"omitempty,gt=0"`
	IsActive         *bool                 `json:"is_active"`
}

type submitTestRequest struct {
	Answers []int `json:"answers" validate:"required"`
}

func TestCreate(svc tests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createTestRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		test, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), tests.CreateInput{
			Title:            body.Title,
			Description:      body.Description,
			Questions:        body.Questions,
			TimeLimitMinutes: body.TimeLimitMinutes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, test)
	}
}

// TestList returns the caller's team tests, shaped for their role.
func TestList(svc tests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := svc.ListByTeam(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

func TestGet(svc tests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "testId"), "testId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), middleware.ActorFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func TestUpdate(svc tests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "testId"), "testId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateTestRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		test, err := svc.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, tests.UpdateInput{
			Title:            body.Title,
			Description:      body.Description,
			Questions:        body.Questions,
			TimeLimitMinutes: body.TimeLimitMinutes,
			IsActive:         body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, test)
	}
}

func TestDelete(svc tests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "testId"), "testId")
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

// TestSubmit grades the caller's answers. One submission per test.
func TestSubmit(svc tests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "testId"), "testId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body submitTestRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), middleware.ActorFromContext(r.Context()), id, body.Answers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// TestResults lists every submission for a test. Management roles only.
func TestResults(svc tests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "testId"), "testId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		results, err := svc.Results(r.Context(), middleware.ActorFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, results)
	}
}

// TestUserHistory lists a user's submissions. The user defaults to the
// caller.
func TestUserHistory(svc tests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParseQueryUUID(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		results, err := svc.UserHistory(r.Context(), middleware.ActorFromContext(r.Context()), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, results)
	}
}
