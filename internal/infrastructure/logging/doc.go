// Package logging provides structured logging for Gray Logic Designer.
//
// It wraps log/slog with JSON or text output, level filtering and the
// default fields service=designer and version on every entry.
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Never log secrets, tokens or passwords.
package logging
