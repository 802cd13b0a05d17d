package routes

import (
	"os"

	"office-portal/constants"
	auditController "office-portal/controllers/auditlog"
	authController "office-portal/controllers/auth"
	bookingRequestController "office-portal/controllers/bookingrequest"
	candidateController "office-portal/controllers/candidate"
	meetingController "office-portal/controllers/meeting"
	notificationController "office-portal/controllers/notification"
	roomController "office-portal/controllers/room"
	twoFactorController "office-portal/controllers/twofactor"
	userController "office-portal/controllers/user"
	vehicleController "office-portal/controllers/vehicle"
	vehicleBookingController "office-portal/controllers/vehiclebooking"
	"office-portal/logger"
	"office-portal/middleware"
	auditService "office-portal/services/audit"
	"office-portal/services/bookingflow"
	"office-portal/services/conflict"
	"office-portal/services/notifier"
	twoFactorService "office-portal/services/twofactor"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	asyncLogger := logger.NewAsyncLogger(db)
	auditSvc := auditService.NewService(db, asyncLogger)
	conflicts := conflict.NewService(db)
	dispatcher := notifier.NewDispatcher(db)
	twoFactorSvc := twoFactorService.NewService(db, os.Getenv("TOTP_ISSUER"), auditSvc)
	flow := bookingflow.NewService(db, conflicts, dispatcher, auditSvc)

	authCtl := authController.NewAuthController(db, twoFactorSvc, auditSvc)
	twoFactorCtl := twoFactorController.NewTwoFactorController(db, twoFactorSvc, dispatcher)
	requestCtl := bookingRequestController.NewBookingRequestController(flow)
	meetingCtl := meetingController.NewMeetingController(db, conflicts, auditSvc)
	vehicleBookingCtl := vehicleBookingController.NewVehicleBookingController(db, conflicts, auditSvc)
	roomCtl := roomController.NewRoomController(db, auditSvc)
	vehicleCtl := vehicleController.NewVehicleController(db, auditSvc)
	candidateCtl := candidateController.NewCandidateController(db, auditSvc)
	notificationCtl := notificationController.NewNotificationController(db)
	userCtl := userController.NewUserController(db, auditSvc)
	auditCtl := auditController.NewAuditLogController(auditSvc)

	// Start the async audit writer goroutine
	go asyncLogger.ProcessLog()

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api := app.Group("/api")
	api.Post("/login", authCtl.Login)
	api.Post("/login/verify-2fa", authCtl.VerifyTwoFactor)

	/*=============================================================================
	| Account Routes
	===============================================================================*/
	account := api.Group("/account").Use(middleware.RequireAuthentication())
	account.Get("/profile", authCtl.Profile)
	account.Put("/preferences", userCtl.UpdatePreferences)

	twoFA := api.Group("/account/2fa").Use(middleware.RequireAuthentication())
	twoFA.Get("/status", twoFactorCtl.Status)
	twoFA.Post("/setup", twoFactorCtl.Setup)
	twoFA.Post("/enable", twoFactorCtl.Enable)
	twoFA.Post("/disable", twoFactorCtl.Disable)
	twoFA.Post("/backup-codes/regenerate", twoFactorCtl.RegenerateBackupCodes)
	twoFA.Get("/trusted-devices", twoFactorCtl.ListTrustedDevices)
	twoFA.Delete("/trusted-devices/:id", twoFactorCtl.DeleteTrustedDevice)

	/*=============================================================================
	| Booking Request Routes
	===============================================================================*/
	requests := api.Group("/booking-requests").Use(middleware.RequireAuthentication())
	requests.Get("/", requestCtl.Index)
	requests.Post("/", requestCtl.Store)
	requests.Get("/:id", requestCtl.Show)
	requests.Delete("/:id", requestCtl.Cancel)
	requests.Put("/:id/accept-counter", requestCtl.AcceptCounter)
	requests.Put("/:id/reject-counter", requestCtl.RejectCounter)

	requests.Put("/:id/approve", middleware.RequireRoles(constants.StaffRoles...), requestCtl.Approve)
	requests.Put("/:id/reject", middleware.RequireRoles(constants.StaffRoles...), requestCtl.Reject)
	requests.Put("/:id/counter", middleware.RequireRoles(constants.StaffRoles...), requestCtl.Counter)

	/*=============================================================================
	| Room Meeting Routes
	===============================================================================*/
	meetings := api.Group("/room-meetings").Use(middleware.RequireAuthentication())
	meetings.Get("/", meetingCtl.Index)
	meetings.Post("/check-availability", meetingCtl.CheckAvailability)
	meetings.Post("/", middleware.RequireRoles(constants.StaffRoles...), meetingCtl.Store)
	meetings.Put("/:id", middleware.RequireRoles(constants.StaffRoles...), meetingCtl.Update)
	meetings.Delete("/:id", middleware.RequireRoles(constants.StaffRoles...), meetingCtl.Destroy)

	/*=============================================================================
	| Vehicle Booking Routes
	===============================================================================*/
	vehicleBookings := api.Group("/vehicle-bookings").Use(middleware.RequireAuthentication())
	vehicleBookings.Get("/", vehicleBookingCtl.Index)
	vehicleBookings.Post("/check-availability", vehicleBookingCtl.CheckAvailability)
	vehicleBookings.Post("/", middleware.RequireRoles(constants.StaffRoles...), vehicleBookingCtl.Store)
	vehicleBookings.Put("/:id", middleware.RequireRoles(constants.StaffRoles...), vehicleBookingCtl.Update)
	vehicleBookings.Post("/:id/return", middleware.RequireRoles(constants.StaffRoles...), vehicleBookingCtl.Return)
	vehicleBookings.Delete("/:id", middleware.RequireRoles(constants.StaffRoles...), vehicleBookingCtl.Destroy)

	/*=============================================================================
	| Resource Catalog Routes
	===============================================================================*/
	rooms := api.Group("/rooms").Use(middleware.RequireAuthentication())
	rooms.Get("/", roomCtl.Index)
	rooms.Post("/", middleware.RequireRoles(constants.StaffRoles...), roomCtl.Store)
	rooms.Put("/:id", middleware.RequireRoles(constants.StaffRoles...), roomCtl.Update)
	rooms.Delete("/:id", middleware.RequireRoles(constants.StaffRoles...), roomCtl.Destroy)

	vehicles := api.Group("/vehicles").Use(middleware.RequireAuthentication())
	vehicles.Get("/", vehicleCtl.Index)
	vehicles.Post("/", middleware.RequireRoles(constants.StaffRoles...), vehicleCtl.Store)
	vehicles.Put("/:id", middleware.RequireRoles(constants.StaffRoles...), vehicleCtl.Update)
	vehicles.Delete("/:id", middleware.RequireRoles(constants.StaffRoles...), vehicleCtl.Destroy)

	/*=============================================================================
	| Candidate Pipeline Routes
	===============================================================================*/
	candidates := api.Group("/candidates").Use(middleware.RequireRoles(constants.StaffRoles...))
	candidates.Get("/", candidateCtl.Index)
	candidates.Get("/export", candidateCtl.ExportCSV)
	candidates.Post("/", candidateCtl.Store)
	candidates.Get("/:id", candidateCtl.Show)
	candidates.Put("/:id", candidateCtl.Update)
	candidates.Put("/:id/stage", candidateCtl.UpdateStage)
	candidates.Delete("/:id", candidateCtl.Destroy)

	/*=============================================================================
	| Notification Routes
	===============================================================================*/
	notifications := api.Group("/notifications").Use(middleware.RequireAuthentication())
	notifications.Get("/", notificationCtl.Index)
	notifications.Get("/unread-count", notificationCtl.UnreadCount)
	notifications.Post("/:id/read", notificationCtl.MarkRead)
	notifications.Post("/read-all", notificationCtl.MarkAllRead)

	/*=============================================================================
	| Admin Routes
	===============================================================================*/
	admin := api.Group("/admin").Use(middleware.RequireRoles(constants.RoleAdmin))
	admin.Get("/users", userCtl.Index)
	admin.Post("/users", userCtl.Store)
	admin.Put("/users/:id", userCtl.Update)
	admin.Delete("/users/:id", userCtl.Destroy)
	admin.Post("/users/:id/reset-2fa", twoFactorCtl.AdminReset)
	admin.Get("/audit-logs", auditCtl.Index)
}
