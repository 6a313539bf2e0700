package config

import "go.uber.org/fx"

// Module provides *Config parsed from os.Args and the environment.
var Module = fx.Provide(Load)
