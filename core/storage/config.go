package storage

// Config holds configuration for the artifact archive.
type Config struct {
	// Endpoint is the URL of the storage service. Empty disables archiving.
	Endpoint string `mapstructure:"endpoint" default:""`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket holding merge inputs and outputs.
	Bucket string `mapstructure:"bucket" default:"arxml-artifacts"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Enabled reports whether archiving is configured at all.
func (c Config) Enabled() bool {
	return c.Endpoint != ""
}
