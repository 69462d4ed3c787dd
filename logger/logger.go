// Package logger is the logging seam for the SolPay client. The SDK emits
// through the Logger interface only; NoopLogger is the default and
// NewZapLogger is the production implementation wired from the client's
// log_level setting.
package logger

// Logger receives structured SDK events such as intent creation, receipt
// verification outcomes and transport retries.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// NoopLogger discards everything. A Client built without WithLogger logs
// through it.
type NoopLogger struct{}

func (NoopLogger) Debug(string, map[string]any) {}
func (NoopLogger) Info(string, map[string]any)  {}
func (NoopLogger) Warn(string, map[string]any)  {}
func (NoopLogger) Error(string, map[string]any) {}
