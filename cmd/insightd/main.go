package main

import (
	"log/slog"
	"os"

	"insightdesk/internal/app"
	"insightdesk/internal/infrastructure"
)

func main() {
	os.Exit(run())
}

func run() int {
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		return 1
	}
	defer infrastructure.CloseLogFile()

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
