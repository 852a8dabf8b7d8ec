package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/loyalty"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/payment"
	queueDomain "github.com/BruksfildServices01/salon-scheduler/internal/domain/queue"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/revenue"
	scheduleDomain "github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/handlers"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
	ucAppointment "github.com/BruksfildServices01/salon-scheduler/internal/usecase/appointment"
	ucQueue "github.com/BruksfildServices01/salon-scheduler/internal/usecase/queue"
	ucSchedule "github.com/BruksfildServices01/salon-scheduler/internal/usecase/schedule"
)

// Infra is everything the routes need that main builds once. Nil optional
// fields fall back to the use case defaults.
type Infra struct {
	Appointments domain.Repository
	Requests     scheduleDomain.Repository
	Queue        queueDomain.Repository
	AuditStore   audit.Store
	Ledger       loyalty.Ledger
	Sales        revenue.Recorder
	Payments     payment.Verifier

	Notifier  notify.Notifier
	Audit     *audit.Dispatcher
	Locker    domain.Locker
	Reminders ucAppointment.ReminderScheduler
	Log       zerolog.Logger
}

func RegisterRoutes(r *gin.Engine, infra Infra, cfg *config.Config) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(infra.Log),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)

	// ======================================================
	// 🧠 USE CASES
	// ======================================================
	queueBridge := ucQueue.NewBridge(infra.Queue, infra.Appointments, cfg.Scheduling.TokenMaxAttempts, infra.Log)
	queueBoard := ucQueue.NewBoard(infra.Queue, infra.Appointments, infra.Audit, nil)

	appointmentDeps := ucAppointment.Deps{
		Repo:                    infra.Appointments,
		Ledger:                  infra.Ledger,
		Sales:                   infra.Sales,
		Payments:                infra.Payments,
		Queue:                   queueBridge,
		Notifier:                infra.Notifier,
		Audit:                   infra.Audit,
		Locker:                  infra.Locker,
		Reminders:               infra.Reminders,
		Log:                     infra.Log,
		SlotMinutes:             cfg.Scheduling.SlotMinutes,
		CancellationNoticeHours: cfg.Scheduling.CancellationNoticeHours,
	}

	scheduleDeps := ucSchedule.Deps{
		Appointments: infra.Appointments,
		Requests:     infra.Requests,
		Notifier:     infra.Notifier,
		Audit:        infra.Audit,
		Locker:       infra.Locker,
		Log:          infra.Log,
	}

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	availabilityHandler := handlers.NewAvailabilityHandler(appointmentDeps)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentDeps)
	scheduleHandler := handlers.NewScheduleHandler(scheduleDeps)
	queueHandler := handlers.NewQueueHandler(queueBoard)
	salonHandler := handlers.NewSalonHandler(infra.Appointments, infra.Audit)
	serviceHandler := handlers.NewServiceHandler(infra.Appointments)
	auditLogsHandler := handlers.NewAuditLogsHandler(infra.Appointments, infra.AuditStore)
	meHandler := handlers.NewMeHandler(infra.Appointments)

	// ======================================================
	// 🔧 INFRA
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET(cfg.MetricsPath, gin.WrapH(promhttp.Handler()))

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		public := api.Group("/")
		public.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst, infra.Log))
		{
			public.GET("/available-slots", availabilityHandler.Slots)
			public.GET("/public/queue/:salonId/:token", queueHandler.Lookup)
		}

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			customer := middleware.RequireRoles(identity.RoleCustomer)
			staff := middleware.RequireRoles(identity.RoleStaff)
			owner := middleware.RequireRoles(identity.RoleOwner, identity.RoleAdmin)
			crew := middleware.RequireRoles(identity.RoleStaff, identity.RoleOwner, identity.RoleAdmin)

			secured.GET("/me", meHandler.GetMe)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/bookings", customer, appointmentHandler.Book)
			secured.POST("/check-in", customer, appointmentHandler.CheckIn)

			secured.GET("/appointments", crew, appointmentHandler.List)
			secured.GET("/appointments/:id", appointmentHandler.Get)
			secured.PATCH("/appointments/:id", appointmentHandler.Update)
			secured.POST("/appointments/:id/reschedule", owner, appointmentHandler.Reschedule)
			secured.POST("/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.POST("/appointments/:id/complete", crew, appointmentHandler.Complete)
			secured.POST("/appointments/:id/review", customer, appointmentHandler.Review)
			secured.POST("/appointments/:id/payment/verify", customer, appointmentHandler.VerifyPayment)

			// ------------------------------
			// SCHEDULE REQUESTS
			// ------------------------------
			secured.POST("/block-time", staff, scheduleHandler.BlockTime)

			requests := secured.Group("/schedule-requests")
			{
				requests.POST("/block-time", staff, scheduleHandler.BlockTime)
				requests.POST("/leave", staff, scheduleHandler.Leave)
				requests.POST("/shift-swap", staff, scheduleHandler.ShiftSwap)
				requests.GET("/mine", staff, scheduleHandler.Mine)
				requests.PUT("/:id/peer-approve", staff, scheduleHandler.PeerApprove)
				requests.PUT("/:id/peer-reject", staff, scheduleHandler.PeerReject)

				requests.GET("/pending", owner, scheduleHandler.Pending)
				requests.PUT("/:id/approve", owner, scheduleHandler.Approve)
				requests.PUT("/:id/reject", owner, scheduleHandler.Reject)
			}

			// ------------------------------
			// QUEUE
			// ------------------------------
			secured.GET("/queue", owner, queueHandler.Status)
			secured.PUT("/queue/:token", owner, queueHandler.Advance)

			// ------------------------------
			// SALON
			// ------------------------------
			salon := secured.Group("/salon", owner)
			{
				salon.GET("/business-hours", salonHandler.GetBusinessHours)
				salon.PUT("/business-hours", salonHandler.UpdateBusinessHours)

				salon.GET("/services", serviceHandler.List)
				salon.POST("/services", serviceHandler.Create)
				salon.PATCH("/services/:id", serviceHandler.Update)
			}

			secured.GET("/audit-logs", owner, auditLogsHandler.List)
		}
	}
}
