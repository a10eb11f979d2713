package config

// Default configuration values.
const (
	DefaultDialect   = "ansi"
	DefaultMetamodel = "metamodel.yaml"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogFormat = "text"
)

// defaultPorts are applied to network targets without an explicit port.
var defaultPorts = map[string]int{
	"postgres": 5432,
	"mysql":    3306,
}

// ApplyTargetDefaults applies default values to a TargetConfig based on the target type.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}
	if t.Port == 0 {
		t.Port = defaultPorts[t.adapterType()]
	}
	if t.IsFileBased() && t.Database == "" {
		t.Database = ":memory:"
	}
}
