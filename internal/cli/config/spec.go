package config

import "time"

// CLIConfig is the configuration for litekv-cli.
type CLIConfig struct {
	// Server is the RESP address of litekv-server.
	Server string `yaml:"server" env:"SERVER"`

	// AdminURL is the base URL of the HTTP admin surface.
	AdminURL string `yaml:"admin_url" env:"ADMIN_URL"`

	// AdminToken is sent as a bearer token to admin endpoints.
	AdminToken string `yaml:"admin_token" env:"ADMIN_TOKEN"`

	Output  string        `yaml:"output" env:"OUTPUT"` // table, json, yaml
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`

	Backup BackupConfig `yaml:"backup" envPrefix:"BACKUP_"`
}

// BackupConfig locates AOF backups in Google Cloud Storage.
type BackupConfig struct {
	Bucket string `yaml:"bucket" env:"BUCKET"`
	Prefix string `yaml:"prefix" env:"PREFIX"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:   "127.0.0.1:6379",
		AdminURL: "http://127.0.0.1:8080",
		Output:   "table",
		Timeout:  10 * time.Second,
		Backup: BackupConfig{
			Prefix: "litekv/",
		},
	}
}
