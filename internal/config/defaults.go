package config

const (
	defaultStorePath     = "~/.local/share/mqlite/queue.db"
	defaultStoreMode     = "queue"
	defaultBusyTimeoutMS = 5000
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultConfigPath    = "~/.config/mqlite/config.toml"
	projectConfigName    = "mqlite.toml"

	memoryStorePath = ":memory:"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Store: Store{
			Path:          defaultStorePath,
			Mode:          defaultStoreMode,
			BusyTimeoutMS: defaultBusyTimeoutMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
