package core

// AdapterConfig holds configuration for connecting to a database.
type AdapterConfig struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Options  map[string]string
	// Params carries adapter-specific settings, decoded by each adapter
	// into its own struct.
	Params map[string]any
}
