// Package logging provides structured logging utilities for irule-builder.
//
// # Overview
//
// This package wraps the standard library slog package with project defaults:
// records go to stderr, carry the module and version, and include the source
// location at debug level. Diagnostics meant for the document author (the
// coded E-messages) are not logs; the CLI prints those separately.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: Detailed diagnostic information with source location
//   - INFO: General informational messages (default)
//   - WARN/WARNING: Potentially problematic situations
//   - ERROR: Failures requiring attention
//
// The CLI maps its graded -v flag onto levels with LevelForVerbosity:
// -vv always selects DEBUG.
//
// # Usage
//
//	logging.SetDefaultLogger(os.Stderr, logging.FormatJSON, "irule", version, "info")
//	slog.Info("rendering", "template", "irule.tmpl")
//
// Human-friendly output:
//
//	logging.SetDefaultLogger(os.Stderr, logging.FormatText, "irule", version, "debug")
//
// # Environment Configuration
//
// The CLI reads LOG_LEVEL (or IRULE_LOG_LEVEL) as the default for
// --log-level:
//
//	LOG_LEVEL=debug irule build -i device.yaml
package logging
