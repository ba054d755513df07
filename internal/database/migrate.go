package database

import (
	"github.com/atifjaved999/mini-coaching/internal/domain"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Role{},
		&domain.UserRole{},
		&domain.Session{},
		&domain.Participation{},
		&domain.PasswordResetToken{},
	); err != nil {
		return err
	}
	return installScheduleConstraint(db)
}

// installScheduleConstraint adds the storage-level backstop for the no-overlap
// rule: a gist exclusion constraint over (scheduled_on, [start,end)). Only
// postgres supports exclusion constraints; on sqlite the application-level
// conflict scan inside the mutation transaction is the only guard, which is
// acceptable for tests.
func installScheduleConstraint(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return err
	}
	return db.Exec(`
		DO $$ BEGIN
			ALTER TABLE sessions ADD CONSTRAINT sessions_no_overlap
				EXCLUDE USING gist (
					scheduled_on WITH =,
					int4range(start_minute, end_minute) WITH &&
				);
		EXCEPTION WHEN duplicate_object THEN NULL;
		END $$;
	`).Error
}
