// Package logging provides structured logging for the mock link.
//
// It wraps log/slog. Components accept a *slog.Logger and fall back to
// Nop() when none is given; every diagnostic the link emits is a warning.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelWarn,
//	    Format: logging.FormatText,
//	})
//	link := mocklink.New(mocklink.WithLogger(logger))
//
// # Recording
//
// Tests that assert on diagnostics use a Recorder, which keeps records in
// memory:
//
//	logger, rec := logging.NewRecorder()
//	// ... exercise code that logs ...
//	if rec.Count(logging.LevelWarn, "no observer") != 2 { ... }
//
// Recorder.Tee records and forwards to a second handler, for example a
// text handler writing to the test output.
//
// # Fixture settings
//
// Settings is the log section of a fixture file. Its Config method parses
// the level and format names with ParseLevel and ParseFormat:
//
//	log:
//	  level: warn
//	  format: json
//	  quietSubscriptions: true
package logging
