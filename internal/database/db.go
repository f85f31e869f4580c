package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pocketjobs/pocketjobs-api/internal/models"
	"github.com/pocketjobs/pocketjobs-api/internal/store"
)

// Connect opens the Postgres connection and runs migrations for both the
// live and the demo table sets. TranslateError is on so unique-index
// violations surface as gorm.ErrDuplicatedKey.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Job{},
		&models.Application{},
		&models.GuardianRelationship{},
		&models.Notification{},
	); err != nil {
		return err
	}

	// Demo tables mirror the live schema under prefixed names
	demo := store.Demo
	for table, model := range map[string]any{
		demo.Profiles:              &models.Profile{},
		demo.Jobs:                  &models.Job{},
		demo.Applications:          &models.Application{},
		demo.GuardianRelationships: &models.GuardianRelationship{},
		demo.Notifications:         &models.Notification{},
	} {
		if err := db.Table(table).AutoMigrate(model); err != nil {
			return err
		}
	}

	// The one-application-per-(job,user) unique index is created here rather
	// than via a model tag. A tag-level name is fixed at schema parse time,
	// and Postgres index names share one per-schema namespace: the demo
	// table's copy would collide with the live one and be skipped, leaving
	// demo_applications unconstrained. The name must derive from the table.
	for _, table := range []string{store.Live.Applications, demo.Applications} {
		if err := db.Exec(applicationsUniqueIndexSQL(table)).Error; err != nil {
			return err
		}
	}
	return nil
}

// applicationsUniqueIndexSQL builds the statement enforcing one application
// per (job_id, user_id) on the given applications table.
func applicationsUniqueIndexSQL(table string) string {
	return fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_job_user ON %s (job_id, user_id)",
		table, table,
	)
}
