// Package server holds the HTTP server configuration and constants.
//
// While the main application entry point handles the server startup, this
// package defines the configuration structures and valid values for server
// settings, such as upload size limits and merge session lifetimes.
//
// # Configuration
//
// The Config struct defines the HTTP port, API key, the per-file upload cap
// and how long idle merge sessions are retained.
//
// This package is primarily used by the core/config package to embed server
// settings and by the mergejob feature to enforce limits.
package server
