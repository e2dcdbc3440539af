// Package logging provides structured logging for capstan pipeline runs.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// context propagation support for debugging and post-hoc analysis. Every
// pipeline run appends to a single shared debug log, and entries carry a
// run_id attribute so individual runs can be reconstructed after the fact.
//
// # Features
//
//   - JSON-formatted structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR)
//   - Context propagation (run ID, pipeline stage, step index)
//   - Log rotation with configurable size limits
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. The [Logger] type
// uses Go's slog internally which is designed for concurrent access, and the
// rotating writer uses a mutex to protect file operations during rotation.
// Child loggers created via With* methods share the underlying writer safely.
//
// # Basic Usage
//
// Create a logger for a log directory:
//
//	logger, err := logging.NewLogger("/path/to/logs", "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	// Log messages at various levels
//	logger.Debug("detailed info", "key", "value")
//	logger.Info("operation completed", "duration_ms", 150)
//	logger.Warn("potential issue", "threshold", 100)
//	logger.Error("operation failed", "error", err.Error())
//
// # Context Propagation
//
// Create child loggers with persistent context attributes:
//
//	// Add run context
//	runLogger := logger.WithRun("run-abc123")
//
//	// Add stage context ("plan", "steps", "cleanup", "push", "pr")
//	stageLogger := runLogger.WithStage("steps")
//
//	// Add step context
//	stepLogger := stageLogger.WithStep(3)
//
//	// All logs from stepLogger will include run_id, stage, and step
//	stepLogger.Info("step completed", "duration_ms", 42000)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"step completed","run_id":"run-abc123","stage":"steps","step":3,"duration_ms":42000}
//
// # Log Rotation
//
// The debug log is shared across runs, so rotation keeps it from growing
// without bound:
//
//	config := logging.RotationConfig{
//	    MaxSizeMB:  10, // Rotate when file exceeds 10MB
//	    MaxBackups: 3,  // Keep 3 backup files
//	}
//
//	logger, err := logging.NewLogger("/path/to/logs", "INFO", config)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
// Rotated files are named debug.log.1, debug.log.2, etc., where .1 is the
// most recent backup.
//
// # Testing
//
// For testing, use [NopLogger] to discard all log output:
//
//	func TestSomething(t *testing.T) {
//	    logger := logging.NopLogger()
//	    // Use logger in tests without creating files
//	}
//
// # Reading Logs
//
// Use the "capstan logs" command to view, filter, and follow the debug log
// after or during a run.
//
// # Log Levels
//
// The package defines four log levels:
//
//   - [LevelDebug]: Detailed information for debugging
//   - [LevelInfo]: General operational information (default)
//   - [LevelWarn]: Warning conditions that may need attention
//   - [LevelError]: Error conditions that affect functionality
//
// Use [ValidLevels] to get the list of valid level strings, and [ParseLevel]
// to normalize user-provided level strings.
//
// # Configuration
//
// The logging system is typically configured via capstan's config file:
//
//	logging:
//	  level: info
//	  max_size_mb: 10
//	  max_backups: 3
package logging
