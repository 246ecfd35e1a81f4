package transactions

import (
	"context"
	"fmt"
	"log/slog"

	"insightdesk/internal/config"
)

// Open builds the configured Log, wrapped in a SheetsMirror when a
// spreadsheet is configured.
func Open(ctx context.Context, db config.DatabaseConfig, sheetsCfg config.SheetsConfig, logger *slog.Logger) (Log, error) {
	var (
		log Log
		err error
	)
	switch db.Backend {
	case "memory":
		log = NewMemoryLog()
	case "sqlite", "":
		log, err = OpenSQLite(ctx, db.DSN, logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown transaction log backend %q", db.Backend)
	}

	if !sheetsCfg.Enabled() {
		return log, nil
	}
	mirror, err := NewSheetsMirror(ctx, log, sheetsCfg, logger)
	if err != nil {
		log.Close()
		return nil, err
	}
	return mirror, nil
}
