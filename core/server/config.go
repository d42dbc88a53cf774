package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables
	// authentication.
	ApiKey string `mapstructure:"api_key" default:""`
	// MaxUploadMB caps the size of a single uploaded ARXML file.
	MaxUploadMB int `mapstructure:"max_upload_mb" default:"64"`
	// SessionTTLMinutes is how long an idle merge session is kept before
	// cleanup.
	SessionTTLMinutes int `mapstructure:"session_ttl_minutes" default:"60"`
}

// UploadLimitBytes returns the upload cap in bytes, applying the default
// when the configured value is unusable.
func (c Config) UploadLimitBytes() int {
	mb := c.MaxUploadMB
	if mb <= 0 {
		mb = 64
	}
	return mb * 1024 * 1024
}
