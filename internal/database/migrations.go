package database

import (
	"gorm.io/gorm"

	"github.com/guzobus/guzo-backend/internal/models"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.Company{},
		&models.Trip{},
		&models.Booking{},
	)
	if err != nil {
		return err
	}

	// Update trips table
	if db.Migrator().HasTable(&models.Trip{}) {
		columns := []string{
			"ADD COLUMN IF NOT EXISTS version bigint DEFAULT 0",
			"ADD COLUMN IF NOT EXISTS departure_terminal text DEFAULT ''",
			"ADD COLUMN IF NOT EXISTS bus_type text DEFAULT ''",
		}

		for _, column := range columns {
			if err := db.Exec("ALTER TABLE trips " + column).Error; err != nil {
				return err
			}
		}

		// Update constraint
		db.Exec(`ALTER TABLE trips DROP CONSTRAINT IF EXISTS trips_status_check`)
		db.Exec(`ALTER TABLE trips ADD CONSTRAINT trips_status_check CHECK (status IN ('active', 'cancelled', 'completed'))`)
	}

	// Update bookings table
	if db.Migrator().HasTable(&models.Booking{}) {
		if err := db.Exec(`ALTER TABLE bookings ADD COLUMN IF NOT EXISTS client_ref text DEFAULT ''`).Error; err != nil {
			return err
		}

		db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_status_check`)
		db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('pending', 'confirmed', 'cancelled'))`)
		db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_payment_status_check`)
		db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_payment_status_check CHECK (payment_status IN ('pending', 'paid', 'cancelled', 'refunded'))`)
	}

	return nil
}
