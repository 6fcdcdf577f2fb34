package types

// AppConfig is the unified application configuration, populated by viper
// from flags, STRIDE_* environment variables, and .stride.yaml.
type AppConfig struct {
	Verbose bool          `mapstructure:"verbose"`
	Project ProjectConfig `mapstructure:"project"`
	Data    DataConfig    `mapstructure:"data"`
	Points  PointsConfig  `mapstructure:"points"`
	Recur   RecurConfig   `mapstructure:"recurrence"`
}

// ProjectConfig locates the project-level data directory.
type ProjectConfig struct {
	RootDir  string `mapstructure:"rootDir"`
	TasksDir string `mapstructure:"tasksDir"`
}

// DataConfig describes the task data file.
type DataConfig struct {
	File   string `mapstructure:"file"`
	Format string `mapstructure:"format"` // json, yaml or toml
}

// PointsConfig describes the points ledger.
type PointsConfig struct {
	DBFile      string `mapstructure:"dbFile"`
	DefaultUser string `mapstructure:"defaultUser"`
}

// RecurConfig holds recurrence behavior toggles.
type RecurConfig struct {
	// EnforceMaxOccurrences stops a capped series once its occurrence
	// count is reached. Disable for data created before caps existed.
	EnforceMaxOccurrences bool `mapstructure:"enforceMaxOccurrences"`
}
