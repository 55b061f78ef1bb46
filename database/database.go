package database

import (
	"bondroom/models"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb establishes a connection to PostgreSQL
func ConnectDb() {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		os.Exit(2)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	RunMigrations(db)

	// Save database instance globally
	Database = DbInstance{Db: db}
}

// RunMigrations performs database migrations
func RunMigrations(db *gorm.DB) {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.Mentor{},
		&models.TrainingModule{},
		&models.MentorTrainingProgress{},
		&models.MentorQuizAttempt{},
		&models.MentorOnboardingStatus{},
		&models.MentorIdentityVerification{},
		&models.MentorContactVerification{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// At most one pending quiz attempt per mentor. AutoMigrate cannot express
	// a partial index, so create it directly.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_one_pending_quiz_attempt " +
			"ON mentor_quiz_attempts (mentor_id) WHERE status = 'pending'",
	).Error; err != nil {
		log.Fatalf("Failed to create pending attempt index: %v", err)
	}

	log.Println("Migrations completed successfully.")
}
