// Package logger provides structured logging for shellwrap using zerolog.
//
// Output goes to stderr unless configured otherwise, leaving stdout to the
// child processes a caller runs. Libraries obtain component loggers lazily
// so that a later Init reconfigures them:
//
//	logger.Init(logger.Config{Level: "debug", Format: "json"})
//	logger.Get("process").Debug("process started", logger.Fields("pid", pid))
package logger
