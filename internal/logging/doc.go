// Package logging provides a simple leveled logging interface for the
// PhotoSift pipeline and CLI.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable
// and may be raised at runtime with SetLevel (the CLI verbose flag).
package logging
