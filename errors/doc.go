// Package errors provides the unified error model shared by the process,
// shellwrap and CLI packages: structured AppErrors with machine-readable
// codes, retryable detection, and the exit status a command-line tool
// should report for them.
package errors
