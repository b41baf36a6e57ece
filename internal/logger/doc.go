// Package logger wraps zap for the sync command:
//   - a global sugared logger writing progress to stdout and problems to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing for the --log-level flag,
//   - leveled helpers (Infof, ErrorKV, etc.) that read the logger from a context.
//
// Every step of a sync run receives a context and logs through it, so the
// component name and run-scoped fields follow each line.
package logger
