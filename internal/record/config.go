package record

// Environment variables consumed by LoadConfig.
const (
	// EnvLog names the variable holding the trace-log path. Unset is a
	// fatal configuration error: there is no default and no silent
	// no-op.
	EnvLog = "BUILDTAP_LOG"

	// EnvFlock names the optional toggle for the advisory file lock.
	// Only the value "1" enables it.
	EnvFlock = "BUILDTAP_FLOCK"
)

// Config carries the resolved recording configuration. It is built once
// at process startup and handed to the Recorder, so the encoder and
// appender never consult the environment themselves.
type Config struct {
	// LogPath is the trace-log destination, absolute or relative.
	LogPath string

	// FileLock takes an advisory lock around each append. Additive
	// safety on top of O_APPEND, off by default.
	FileLock bool
}

// LoadConfig resolves the recording configuration through lookup,
// which is os.LookupEnv in production and a map in tests.
//
// An unset EnvLog is a configuration error. A set-but-empty value is
// kept as-is and surfaces later as an open failure, matching the
// behavior of the variable being "prepared" but wrong.
func LoadConfig(lookup func(string) (string, bool)) (Config, error) {
	path, ok := lookup(EnvLog)
	if !ok {
		return Config{}, NewConfigurationError()
	}

	cfg := Config{LogPath: path}
	if v, ok := lookup(EnvFlock); ok && v == "1" {
		cfg.FileLock = true
	}
	return cfg, nil
}
