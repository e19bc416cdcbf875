package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Level is the severity of a log line
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelPrefix = [...]string{
	LevelDebug: "[DEBUG] ",
	LevelInfo:  "[INFO] ",
	LevelWarn:  "[WARN] ",
	LevelError: "[ERROR] ",
}

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled gates LevelDebug output only
	debugEnabled bool = false

	// minLevel drops anything below it
	minLevel Level = LevelInfo

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	if writer == nil {
		writer = func(string) {}
	}
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug-level output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
	if enabled {
		minLevel = LevelDebug
	} else if minLevel == LevelDebug {
		minLevel = LevelInfo
	}
}

// SetLogLevel drops log lines below l
func SetLogLevel(l Level) {
	minLevel = l
	debugEnabled = l == LevelDebug
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16) // Buffer 16 messages
	go debugOutputWorker()
}

// debugOutputWorker runs in background, drains debug channel
func debugOutputWorker() {
	for msg := range debugChan {
		debugPrintln(msg)
	}
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled {
		debugPrintln(msg)
	}
}

// DebugAsync queues a message for async output (non-blocking).
// Falls back to a direct write when the async worker was never started.
// Returns immediately even if channel is full (drops message)
func DebugAsync(msg string) {
	if debugChan == nil {
		debugPrintln(msg)
		return
	}
	select {
	case debugChan <- msg:
	default:
	}
}

// Log writes msg with a level prefix if l passes the current filter
func Log(l Level, msg string) {
	if l < minLevel || int(l) >= len(levelPrefix) {
		return
	}
	DebugAsync(levelPrefix[l] + msg)
}

// Info logs at LevelInfo
func Info(msg string) { Log(LevelInfo, msg) }

// Warn logs at LevelWarn
func Warn(msg string) { Log(LevelWarn, msg) }

// Error logs msg followed by err at LevelError
func Error(msg string, err error) {
	if err != nil {
		msg += ": " + err.Error()
	}
	Log(LevelError, msg)
}
