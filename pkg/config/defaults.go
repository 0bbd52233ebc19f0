package config

const (
	// Storage driver names.
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	// Event provider names.
	EventsProviderNop   = "nop"
	EventsProviderKafka = "kafka"

	// SQLiteFile is the database file created in the .tagstash/ directory
	// when storage.sqlite_path is unset.
	SQLiteFile = "tagstash.db"

	defaultDriver          = DriverSQLite
	defaultMaxConns        = 20
	defaultMaxConnIdleTime = "30s"
	defaultConnectTimeout  = "2s"

	defaultTagMaxLength    = 100
	defaultTagMaxPerRecord = 50

	defaultAPIListen = ":8081"

	defaultEventsProvider = EventsProviderNop
	defaultEventsTopic    = "tagstash.records"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Driver:          defaultDriver,
			MaxConns:        defaultMaxConns,
			MaxConnIdleTime: defaultMaxConnIdleTime,
			ConnectTimeout:  defaultConnectTimeout,
		},
		Tags: TagsConfig{
			MaxLength:    defaultTagMaxLength,
			MaxPerRecord: defaultTagMaxPerRecord,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
		MCP: MCPConfig{
			Enabled: true,
		},
	}
}

// ValidDrivers returns the recognized storage driver names.
func ValidDrivers() []string {
	return []string{DriverSQLite, DriverPostgres, DriverMemory}
}
