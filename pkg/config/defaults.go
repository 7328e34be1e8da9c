package config

const (
	defaultEndpoint = "http://localhost:8000"
	defaultTimeout  = "0s"
	defaultMode     = ModeAuto
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			Endpoint: defaultEndpoint,
			Timeout:  defaultTimeout,
		},
		Chat: ChatConfig{
			Mode: defaultMode,
		},
	}
}
