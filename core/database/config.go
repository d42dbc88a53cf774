package database

// Config holds configuration for the merge-job history database.
type Config struct {
	// Host is the database host. Empty disables job history.
	Host string `mapstructure:"host" default:""`
	// Port is the database port.
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user.
	User string `mapstructure:"user" default:"root"`
	// Password is the database password.
	Password string `mapstructure:"password" default:""`
	// Name is the database name.
	Name string `mapstructure:"name" default:"arxml_merger"`
	// TimeoutSeconds bounds connection setup and I/O.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Enabled reports whether job history is configured at all.
func (c Config) Enabled() bool {
	return c.Host != ""
}
