// Package logging provides opt-in file-based logging with rotation for wordindex.
// When the --debug flag is set, structured JSON logs are written to
// ~/.wordindex/logs/ for troubleshooting batch loads.
//
// Without --debug, only warnings and errors reach the console.
package logging
