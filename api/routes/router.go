package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apillow22-icdconnect/icd-connect-backend/api/controllers"
	"github.com/apillow22-icdconnect/icd-connect-backend/api/middleware"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/auth"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/calendar"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/dashboard"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/messages"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/sales"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/schedules"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/stars"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/tenants"
	testsvc "github.com/apillow22-icdconnect/icd-connect-backend/internal/tests"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/training"
	"github.com/apillow22-icdconnect/icd-connect-backend/internal/users"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/config"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/logger"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/push"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	healthDeps map[string]controllers.Pinger,
	hub *push.Hub,
	authService auth.Service,
	userService users.Service,
	tenantService tenants.Service,
	messageService messages.Service,
	scheduleService schedules.Service,
	salesService sales.Service,
	starsService stars.Service,
	trainingService training.Service,
	testsService testsvc.Service,
	calendarService calendar.Service,
	dashboardService dashboard.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, healthDeps))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.With(middleware.TenantContext(tenantService, logg)).
			Get("/tenant", controllers.TenantCurrent(logg))
		r.Get("/tenants/check-domain", controllers.TenantCheckDomain(tenantService, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Get("/me", controllers.AuthMe(authService, logg))
			r.With(middleware.RequireAdmin(logg)).Post("/register", controllers.AuthRegister(authService, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/ws", controllers.WebSocket(hub, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.UserTeamMembers(userService, logg))
			r.Patch("/me", controllers.UserUpdateProfile(userService, logg))
			r.Get("/{userId}", controllers.UserProfile(userService, logg))
			r.With(middleware.RequireAdmin(logg)).Patch("/{userId}", controllers.UserAdminUpdate(userService, logg))
			r.With(middleware.RequireAdmin(logg)).Delete("/{userId}", controllers.UserDelete(userService, logg))
		})

		r.Route("/messages", func(r chi.Router) {
			r.Post("/", controllers.MessageSend(messageService, logg))
			r.Get("/inbox", controllers.MessageInbox(messageService, logg))
			r.Get("/sent", controllers.MessageSent(messageService, logg))
			r.Get("/thread/{userId}", controllers.MessageThread(messageService, logg))
			r.Delete("/{messageId}", controllers.MessageDelete(messageService, logg))
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", controllers.ScheduleList(scheduleService, logg))
			r.With(middleware.RequireAdmin(logg)).Post("/", controllers.ScheduleCreate(scheduleService, logg))
			r.Get("/{scheduleId}", controllers.ScheduleGet(scheduleService, logg))
			r.Patch("/{scheduleId}", controllers.ScheduleUpdate(scheduleService, logg))
			r.Delete("/{scheduleId}", controllers.ScheduleDelete(scheduleService, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Post("/", controllers.SaleLog(salesService, logg))
			r.With(middleware.RequireAdmin(logg)).Post("/admin", controllers.SaleAdminLog(salesService, logg))
			r.With(middleware.RequireAdmin(logg)).Get("/", controllers.SalesAll(salesService, logg))
			r.Get("/me", controllers.SalesByUser(salesService, logg))
			r.Get("/leaderboard", controllers.SalesLeaderboard(salesService, logg))
			r.With(middleware.RequireManager(logg)).Get("/range", controllers.SalesByDateRange(salesService, logg))
			r.Get("/users/{userId}", controllers.SalesByUser(salesService, logg))
			r.Patch("/{saleId}", controllers.SaleUpdate(salesService, logg))
			r.Delete("/{saleId}", controllers.SaleDelete(salesService, logg))
		})

		r.Route("/stars", func(r chi.Router) {
			r.With(middleware.RequireManager(logg)).Post("/earn", controllers.StarEarn(starsService, logg))
			r.Post("/spend", controllers.StarSpend(starsService, logg))
			r.With(middleware.RequireAdmin(logg)).Post("/reset", controllers.StarReset(starsService, logg))
			r.Get("/me", controllers.StarAccount(starsService, logg))
			r.Get("/me/history", controllers.StarHistory(starsService, logg))
			r.With(middleware.RequireManager(logg)).Get("/team", controllers.StarTeamAccounts(starsService, logg))
			r.With(middleware.RequireManager(logg)).Get("/team/history", controllers.StarTeamHistory(starsService, logg))
			r.Get("/users/{userId}", controllers.StarAccount(starsService, logg))
			r.Get("/users/{userId}/history", controllers.StarHistory(starsService, logg))
		})

		r.Route("/calendar/events", func(r chi.Router) {
			r.Get("/", controllers.CalendarList(calendarService, logg))
			r.Post("/", controllers.CalendarCreate(calendarService, logg))
			r.Get("/range", controllers.CalendarByRange(calendarService, logg))
			r.Get("/month", controllers.CalendarByMonth(calendarService, logg))
			r.Get("/{eventId}", controllers.CalendarGet(calendarService, logg))
			r.Patch("/{eventId}", controllers.CalendarUpdate(calendarService, logg))
			r.Delete("/{eventId}", controllers.CalendarDelete(calendarService, logg))
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/recent-activities", controllers.DashboardRecentActivities(dashboardService, logg))
			r.Get("/activity-summary", controllers.DashboardSummary(dashboardService, logg))
			r.Post("/clear-activities", controllers.DashboardClear(dashboardService, logg))
			r.Post("/reset-activities", controllers.DashboardReset(dashboardService, logg))
		})

		r.Route("/training", func(r chi.Router) {
			r.Get("/", controllers.TrainingList(trainingService, logg))
			r.With(middleware.RequireAdmin(logg)).Post("/", controllers.TrainingCreate(trainingService, logg))
			r.Get("/{moduleId}", controllers.TrainingGet(trainingService, logg))
			r.Patch("/{moduleId}", controllers.TrainingUpdate(trainingService, logg))
			r.Delete("/{moduleId}", controllers.TrainingDelete(trainingService, logg))
			r.Post("/{moduleId}/teach-back", controllers.TrainingConfirmTeachBack(trainingService, logg))
		})

		r.Route("/tests", func(r chi.Router) {
			r.Get("/", controllers.TestList(testsService, logg))
			r.With(middleware.RequireManager(logg)).Post("/", controllers.TestCreate(testsService, logg))
			r.Get("/results", controllers.TestUserHistory(testsService, logg))
			r.Get("/{testId}", controllers.TestGet(testsService, logg))
			r.Patch("/{testId}", controllers.TestUpdate(testsService, logg))
			r.Delete("/{testId}", controllers.TestDelete(testsService, logg))
			r.Post("/{testId}/submit", controllers.TestSubmit(testsService, logg))
			r.With(middleware.RequireManager(logg)).Get("/{testId}/results", controllers.TestResults(testsService, logg))
		})
	})

	r.Route("/api/admin/v1/tenants", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(logg))
		r.Get("/", controllers.TenantList(tenantService, logg))
		r.Post("/", controllers.TenantCreate(tenantService, logg))
		r.Get("/{tenantId}", controllers.TenantGet(tenantService, logg))
		r.Patch("/{tenantId}", controllers.TenantUpdate(tenantService, logg))
		r.Delete("/{tenantId}", controllers.TenantDelete(tenantService, logg))
	})

	return r
}
