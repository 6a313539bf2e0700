package session

import "go.uber.org/fx"

// Module provides the process-wide credential manager. A Store must be
// supplied by a persistence module.
var Module = fx.Provide(NewManager)
