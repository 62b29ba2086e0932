package config

const (
	delim = "."

	// EnvPrefix marks environment variables that feed the defaults layer.
	EnvPrefix = "LERNA_"

	// LogLevelVerbose is forced when "verbose" is set.
	LogLevelVerbose = "verbose"

	// LogLevelSilly is the one level "verbose" never overrides.
	LogLevelSilly = "silly"
)

// ConfigFileNames are searched, in order, in every directory from the
// working directory up to the filesystem root.
var ConfigFileNames = []string{"lerna.json", "lerna.yaml", "lerna.yml"}

// reservedEnv are LERNA_* variables that configure the process or are
// exported to child processes; they never become options.
var reservedEnv = map[string]bool{
	"LERNA_DISPATCHER":    true,
	"LERNA_OTEL_EXPORTER": true,
	"LERNA_OTEL_ENDPOINT": true,
	"LERNA_PACKAGE_NAME":  true,
	"LERNA_ROOT_PATH":     true,
}
