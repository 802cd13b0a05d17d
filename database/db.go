package database

import (
	"fmt"
	"os"

	"office-portal/logger"
	auditModel "office-portal/models/audit"
	bookingModel "office-portal/models/booking"
	candidateModel "office-portal/models/candidate"
	notificationModel "office-portal/models/notification"
	roomModel "office-portal/models/room"
	userModel "office-portal/models/user"
	vehicleModel "office-portal/models/vehicle"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection with auto migration and indexing
func InitDB() (*gorm.DB, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	user := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, database, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := AutoMigrate(DB); err != nil {
		logger.Error("Failed to run migrations", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	if err := createIndexes(); err != nil {
		logger.Error("Failed to create indexes", err)
		return nil, err
	}
	logger.Success("All indexes created successfully")

	return DB, nil
}

// AutoMigrate runs auto migration for all models in dependency order.
func AutoMigrate(db *gorm.DB) error {
	// Stage 1: Core foundation models
	stage1Models := []interface{}{
		&userModel.User{},
		&roomModel.Room{},
		&vehicleModel.Vehicle{},
	}

	for _, model := range stage1Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 2: Models with dependencies on Stage 1
	stage2Models := []interface{}{
		&userModel.TrustedDevice{},
		&bookingModel.BookingRequest{},
		&bookingModel.RoomMeeting{},
		&bookingModel.VehicleBooking{},
		&candidateModel.Candidate{},
	}

	for _, model := range stage2Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 3: Remaining models
	remainingModels := []interface{}{
		&notificationModel.Notification{},
		&auditModel.AuditLog{},
	}

	for _, model := range remainingModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}

// createIndexes creates additional indexes for better performance
func createIndexes() error {
	indexes := []struct {
		name string
		sql  string
	}{
		{"idx_users_email", "CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)"},
		{"idx_users_role", "CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)"},
		{"idx_booking_requests_status", "CREATE INDEX IF NOT EXISTS idx_booking_requests_status ON booking_requests(status)"},
		{"idx_booking_requests_requester", "CREATE INDEX IF NOT EXISTS idx_booking_requests_requester ON booking_requests(requester_id)"},
		{"idx_room_meetings_window", "CREATE INDEX IF NOT EXISTS idx_room_meetings_window ON room_meetings(room_id, start_time, end_time)"},
		{"idx_vehicle_bookings_window", "CREATE INDEX IF NOT EXISTS idx_vehicle_bookings_window ON vehicle_bookings(vehicle_id, start_time)"},
		{"idx_candidates_stage", "CREATE INDEX IF NOT EXISTS idx_candidates_stage ON candidates(stage)"},
		{"idx_notifications_user_read", "CREATE INDEX IF NOT EXISTS idx_notifications_user_read ON notifications(user_id, read)"},
		{"idx_audit_logs_entity", "CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity_type, entity_id)"},
		{"idx_trusted_devices_expiry", "CREATE INDEX IF NOT EXISTS idx_trusted_devices_expiry ON trusted_devices(user_id, expires_at)"},
	}

	for _, idx := range indexes {
		if err := DB.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
