package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 4251,
			Host: "localhost",
		},
		Artifacts: ArtifactsConfig{
			AnalysisDir:     "./data/analyses",
			BacktestDir:     "./data/backtest",
			ReadConcurrency: 8,
		},
		Auth: AuthConfig{
			TokenTTLMinutes: 24 * 60,
		},
		Cache: CacheConfig{
			TTLSeconds: 60,
			MaxEntries: 200,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/vire-research",
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			Outputs: []string{"console", "file"},
		},
	}
}
