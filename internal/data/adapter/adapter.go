package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/healthjournal-backend/internal/domain"
	"github.com/yungbote/healthjournal-backend/internal/platform/httpx"
	"github.com/yungbote/healthjournal-backend/internal/platform/logger"
	"github.com/yungbote/healthjournal-backend/internal/services"
)

// Adapter is the one stable contract the rest of the application sees,
// regardless of which backend or schema version is active underneath.
type Adapter interface {
	FindUserByEmail(ctx context.Context, email string) (*types.User, error)
	FindUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	CreateUser(ctx context.Context, user *types.User) (*types.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, fields map[string]any) (*types.User, error)

	CreateCheckin(ctx context.Context, userID uuid.UUID, fields services.CheckinFields) (*types.DailyCheckin, error)
	GetUserCheckins(ctx context.Context, userID uuid.UUID, q services.CheckinQuery) ([]*types.DailyCheckin, error)
	GetRecentCheckins(ctx context.Context, userID uuid.UUID, limit int) ([]*types.DailyCheckin, error)
	GetAnalytics(ctx context.Context, userID uuid.UUID, timeframe string) (*services.AnalyticsSummary, error)

	CreateInsight(ctx context.Context, insight *types.Insight) (*types.Insight, error)
	GetUserInsights(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Insight, error)

	// Event-log surface. Fails with errors.ErrSchemaDisabled on backends
	// or schema modes without the event log.
	CreateHealthEvent(ctx context.Context, userID uuid.UUID, in services.CreateEventInput) (*types.HealthEvent, error)
	GetHealthTimeline(ctx context.Context, userID uuid.UUID, opts services.TimelineOptions) ([]*types.HealthEvent, error)
	CompleteAssessment(ctx context.Context, userID uuid.UUID, assessmentType string, responses map[string]int) (*services.AssessmentResult, error)
	RecordMedicationTaken(ctx context.Context, userID, medicationID uuid.UUID, opts services.MedicationTakenOptions) (*types.HealthEvent, error)

	// Query is the {id, fields} escape hatch, whitelist-projected on every
	// backend.
	Query(ctx context.Context, table string, filter map[string]any, limit int) ([]Record, error)

	Close() error
}

type Mode string

const (
	ModePostgres Mode = "postgres"
	ModeSQLite   Mode = "sqlite"
	ModeRemote   Mode = "remote"
)

// Config is read once at process start. Neither the backend choice nor the
// schema flag is re-evaluated for the lifetime of the process.
type Config struct {
	DatabaseURL string `yaml:"database_url"`
	UseV2Schema bool   `yaml:"use_v2_schema"`

	LocalMode  bool   `yaml:"local_mode"`
	SQLitePath string `yaml:"sqlite_path"`

	RemoteAPIKey  string `yaml:"remote_api_key"`
	RemoteBaseID  string `yaml:"remote_base_id"`
	RemoteBaseURL string `yaml:"remote_base_url"`
}

// IsTransient reports whether err is a connectivity-class failure (network
// timeout, 5xx, 408/429). This layer never retries; callers drive their own
// retry policy off this classification.
func IsTransient(err error) bool {
	return httpx.IsRetryableError(err)
}

type BootstrapErrorCode string

const (
	BootstrapErrorNoBackend     BootstrapErrorCode = "no_backend"
	BootstrapErrorInvalidConfig BootstrapErrorCode = "invalid_config"
	BootstrapErrorConnectFailed BootstrapErrorCode = "connect_failed"
	BootstrapErrorMigrateFailed BootstrapErrorCode = "migrate_failed"
)

type BootstrapError struct {
	Code  BootstrapErrorCode
	Mode  Mode
	Cause error
}

func (e *BootstrapError) Error() string {
	if e == nil {
		return "adapter bootstrap failed"
	}
	return fmt.Sprintf("adapter bootstrap failed (code=%s mode=%q): %v", e.Code, e.Mode, e.Cause)
}

func (e *BootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Stubbed in tests.
var (
	newPostgresAdapter = newPostgresBackend
	newSQLiteAdapter   = newSQLiteBackend
	newRemoteAdapter   = newRemoteBackend
)

// Resolve picks exactly one backend at process start and fails fast when
// none resolves. The returned adapter is a process-lifetime singleton owned
// by the caller; Close releases the underlying pool and is safe to call for
// graceful shutdown or test teardown.
func Resolve(log *logger.Logger, cfg Config) (Adapter, error) {
	mode := selectMode(cfg)

	log.Info("Selecting persistence adapter",
		"mode", mode,
		"schema_v2", cfg.UseV2Schema,
	)

	switch mode {
	case ModePostgres:
		return newPostgresAdapter(log, cfg)
	case ModeSQLite:
		return newSQLiteAdapter(log, cfg)
	case ModeRemote:
		return newRemoteAdapter(log, cfg)
	default:
		err := &BootstrapError{
			Code:  BootstrapErrorNoBackend,
			Cause: fmt.Errorf("no DATABASE_URL, LOCAL_MODE or REMOTE_API_KEY configured"),
		}
		log.Error("Persistence adapter selection failed", "error_code", err.Code, "error", err)
		return nil, err
	}
}

func selectMode(cfg Config) Mode {
	switch {
	case strings.TrimSpace(cfg.DatabaseURL) != "":
		return ModePostgres
	case cfg.LocalMode:
		return ModeSQLite
	case strings.TrimSpace(cfg.RemoteAPIKey) != "":
		return ModeRemote
	default:
		return ""
	}
}
