package logger

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module provides the application logger and installs it as the slog default
// so that libraries logging through slog share the same handler.
var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(slog.SetDefault),
)
