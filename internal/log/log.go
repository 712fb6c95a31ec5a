//nolint:revive // Package name kept as "log" for stable internal imports.
package log

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/capture"
)

var debugMode = false

// SetDebugMode enables or disables debug logging
func SetDebugMode(enabled bool) {
	debugMode = enabled
}

// IsDebug reports whether debug logging is enabled
func IsDebug() bool {
	return debugMode
}

// Debug logs debug messages when debug mode is enabled
func Debug(format string, elem ...any) {
	if debugMode {
		fmt.Fprintln(stdout(), color.CyanString("[DEBUG] ")+fmt.Sprintf(format, elem...))
	}
}

// DebugH2 logs indented debug messages when debug mode is enabled
func DebugH2(format string, elem ...any) {
	if debugMode {
		fmt.Fprintln(stdout(), color.CyanString("  [DEBUG] ")+fmt.Sprintf(format, elem...))
	}
}

// Fatal logs an error message and exits the program
func Fatal(args ...interface{}) {
	var message string

	switch len(args) {
	case 0:
		message = "fatal error occurred"
	case 1:
		switch v := args[0].(type) {
		case error:
			message = v.Error()
		case string:
			message = v
		default:
			message = fmt.Sprintf("%v", v)
		}
	default:
		if format, ok := args[0].(string); ok && strings.Contains(format, "%") {
			message = fmt.Sprintf(format, args[1:]...)
		} else {
			message = fmt.Sprint(args...)
		}
	}

	for _, line := range strings.Split(strings.TrimSpace(message), "\n") {
		fmt.Fprintln(stderr(), color.RedString("[x] ")+line)
	}
	os.Exit(1)
}

// Error logs an error message to stderr
func Error(str string, elem ...any) {
	fmt.Fprintln(stderr(), color.RedString("[x] ")+fmt.Sprintf(str, elem...))
}

// ErrorH2 logs an indented error message to stderr
func ErrorH2(format string, elem ...any) {
	fmt.Fprintln(stderr(), color.RedString("  [x] ")+fmt.Sprintf(format, elem...))
}

// Info logs an informational message
func Info(format string, elem ...any) {
	fmt.Fprintln(stdout(), color.BlueString("[x] ")+fmt.Sprintf(format, elem...))
}

// InfoH2 logs an indented informational message
func InfoH2(format string, elem ...any) {
	fmt.Fprintln(stdout(), color.GreenString("  [x] ")+fmt.Sprintf(format, elem...))
}

// InfoH3 logs a double-indented informational message
func InfoH3(format string, elem ...any) {
	fmt.Fprintln(stdout(), color.YellowString("    [x] ")+fmt.Sprintf(format, elem...))
}

// ScriptOutput writes text produced by the watched script to stdout as-is.
// A trailing newline is added when missing so the next log line starts clean.
func ScriptOutput(text string) {
	writeBlock(stdout(), text)
}

// ScriptStderr writes the error stream of a successful load attempt to stderr.
func ScriptStderr(text string) {
	writeBlock(stderr(), text)
}

// ScriptError writes the error stream of a load attempt to stderr, headed by
// the script path.
func ScriptError(path, text string) {
	fmt.Fprintln(stderr(), color.RedString("[x] ")+fmt.Sprintf("Error loading %s:", path))
	writeBlock(stderr(), text)
}

// stdout is the console stream, never a script's captured stream
func stdout() *os.File {
	out, _ := capture.HostStreams()
	return out
}

func stderr() *os.File {
	_, errOut := capture.HostStreams()
	return errOut
}

func writeBlock(f *os.File, text string) {
	if text == "" {
		return
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, _ = f.WriteString(text)
}
