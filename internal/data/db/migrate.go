package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/healthjournal-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(

		// Identity
		&types.User{},

		// V1 flat schema
		&types.DailyCheckin{},

		// V2 event log + derived records
		&types.HealthEvent{},
		&types.Insight{},
		&types.Medication{},
		&types.MedicationLog{},
		&types.AssessmentDefinition{},
		&types.AssessmentResponse{},
	); err != nil {
		return err
	}

	if err := EnsureLegacyColumns(db); err != nil {
		return err
	}
	return EnsureJournalIndexes(db)
}

// EnsureLegacyColumns applies additive column migrations. Adding a column
// that already exists is a no-op, not an error, so the whole pass is safe to
// run on every startup.
func EnsureLegacyColumns(db *gorm.DB) error {
	additive := []struct {
		model  any
		column string
	}{
		{&types.DailyCheckin{}, "injection_confidence"},
		{&types.DailyCheckin{}, "partner_involved"},
		{&types.DailyCheckin{}, "missed_doses"},
		{&types.User{}, "medication_status"},
		{&types.User{}, "top_concern"},
	}

	m := db.Migrator()
	for _, a := range additive {
		if m.HasColumn(a.model, a.column) {
			continue
		}
		if err := m.AddColumn(a.model, a.column); err != nil {
			return fmt.Errorf("add column %s: %w", a.column, err)
		}
	}
	return nil
}

// EnsureJournalIndexes creates hot-path indexes with IF NOT EXISTS so the
// statements are valid on both postgres and sqlite.
func EnsureJournalIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_health_event_correlation
		ON health_event (user_id, correlation_id);
	`).Error; err != nil {
		return fmt.Errorf("create idx_health_event_correlation: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_insight_user_expires
		ON insight (user_id, expires_at);
	`).Error; err != nil {
		return fmt.Errorf("create idx_insight_user_expires: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_assessment_definition_name_version
		ON assessment_definition (name, version);
	`).Error; err != nil {
		return fmt.Errorf("create idx_assessment_definition_name_version: %w", err)
	}

	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *SQLiteService) AutoMigrateAll() error {
	s.log.Info("Auto migrating sqlite tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}
