package editor

import "log"

// Notifier surfaces non-fatal messages to the user.
type Notifier interface {
	// Info shows an informational notice.
	Info(message string)

	// Warning shows a dismissible warning.
	Warning(message string)
}

// Tracker records named events with a key-value payload. Implementations are
// fire-and-forget: they never block and never fail visibly.
type Tracker interface {
	Track(event string, fields map[string]string)
}

// LogNotifier writes notices to a standard logger.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) logger() *log.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return log.Default()
}

// Info logs the message at info level.
func (n LogNotifier) Info(message string) {
	n.logger().Printf("info: %s", message)
}

// Warning logs the message at warning level.
func (n LogNotifier) Warning(message string) {
	n.logger().Printf("warning: %s", message)
}

// LogTracker writes tracking events to a standard logger.
type LogTracker struct {
	Logger *log.Logger
}

// Track logs the event and its payload.
func (t LogTracker) Track(event string, fields map[string]string) {
	logger := t.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("track %s %v", event, fields)
}

// NopTracker discards all events.
type NopTracker struct{}

// Track does nothing.
func (NopTracker) Track(string, map[string]string) {}
