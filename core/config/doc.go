// Package config provides configuration management for the ARXML merger.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file, with defaults declared as struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key, upload limits)
//   - Database: MySQL connection details for merge-job history (optional)
//   - Storage: S3/MinIO credentials for the artifact archive (optional)
//   - Log: Logging level and format
//   - Merge: Default strategy, rules file and reference patterns
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
