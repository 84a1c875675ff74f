package app

import (
	"github.com/yungbote/healthjournal-backend/internal/data/adapter"
	"github.com/yungbote/healthjournal-backend/internal/platform/logger"
)

// App owns the process-lifetime storage adapter. Construction fails fast:
// if no backend resolves or the chosen one cannot connect and migrate, New
// returns the bootstrap error instead of a half-wired application.
type App struct {
	Log     *logger.Logger
	Storage adapter.Adapter
}

func New(log *logger.Logger, cfg Config) (*App, error) {
	storage, err := adapter.Resolve(log, cfg.Storage)
	if err != nil {
		return nil, err
	}
	return &App{Log: log, Storage: storage}, nil
}

// Close releases the storage backend. Safe to call more than once.
func (a *App) Close() error {
	if a == nil || a.Storage == nil {
		return nil
	}
	return a.Storage.Close()
}
