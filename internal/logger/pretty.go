// internal/logger/pretty.go
package logger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// PrettyEncoder creates a compact colored console encoder.
func PrettyEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		TimeKey:          "time",
		NameKey:          "logger",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      colorLevelEncoder,
		EncodeTime:       shortTimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	})
}

func colorLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(colorize(level.CapitalString(), level))
}

func colorize(label string, level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return ColorCyan + "[" + label + "]" + ColorReset
	case zapcore.InfoLevel:
		return ColorGreen + "[" + label + "]" + ColorReset
	case zapcore.WarnLevel:
		return ColorYellow + "[" + label + "]" + ColorReset
	case zapcore.ErrorLevel:
		return ColorRed + "[" + label + "]" + ColorReset
	default:
		return ColorRed + ColorBold + "[" + label + "]" + ColorReset
	}
}

func shortTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05"))
}

// FormatEntry renders a buffered entry on one line for the terminal UI.
// Well-known fields are appended in short form.
func FormatEntry(e LogEntry) string {
	var b strings.Builder
	b.WriteString(e.Timestamp.Format("15:04:05"))
	b.WriteString(" ")
	b.WriteString(strings.ToUpper(e.Level))
	b.WriteString(" ")
	b.WriteString(e.Message)

	if v, ok := e.Fields["digest"]; ok {
		fmt.Fprintf(&b, " digest=%s", ShortenDigest(fmt.Sprint(v)))
	}
	if v, ok := e.Fields["account"]; ok {
		fmt.Fprintf(&b, " account=%s", ShortenAddress(fmt.Sprint(v)))
	}
	if v, ok := e.Fields["error"]; ok {
		fmt.Fprintf(&b, " error=%v", v)
	}
	return b.String()
}

// ShortenAddress keeps the 0x prefix, four leading and four trailing characters.
func ShortenAddress(addr string) string {
	body := strings.TrimPrefix(addr, "0x")
	prefix := addr[:len(addr)-len(body)]
	if len(body) > 8 {
		return prefix + body[:4] + "..." + body[len(body)-4:]
	}
	return addr
}

func ShortenDigest(d string) string {
	if len(d) > 16 {
		return d[:8] + "..." + d[len(d)-8:]
	}
	return d
}
