package display

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

// ────────────────────────────────────────────────────────────
// Log-level helpers (colored prefixes for CLI output)
// ────────────────────────────────────────────────────────────

// Step prints a pipeline step like "  [1/5] report.pdf".
func Step(w io.Writer, step, total int, msg string) {
	fmt.Fprintf(w, "  %s%s[%d/%d]%s %s%s%s\n",
		bold, brightCyan, step, total, reset,
		white, msg, reset,
	)
}

// StepDetail prints an indented detail line under a step.
func StepDetail(w io.Writer, msg string) {
	fmt.Fprintf(w, "        %s%s%s\n", dim+white, msg, reset)
}

// StepWarn prints a warning detail under a step.
func StepWarn(w io.Writer, msg string) {
	fmt.Fprintf(w, "        %s%s⚠ %s%s\n", yellow, bold, msg, reset)
}

// Info prints a general info message.
func Info(w io.Writer, msg string) {
	fmt.Fprintf(w, "  %s%sℹ%s %s\n", brightBlue, bold, reset, msg)
}

// Success prints a green success message.
func Success(w io.Writer, msg string) {
	fmt.Fprintf(w, "  %s%s✓%s %s\n", brightGreen, bold, reset, msg)
}

// Warn prints a yellow warning message.
func Warn(w io.Writer, msg string) {
	fmt.Fprintf(w, "  %s%s⚠%s %s%s%s\n", brightYellow, bold, reset, yellow, msg, reset)
}

// ErrorMsg prints a red error message.
func ErrorMsg(w io.Writer, msg string) {
	fmt.Fprintf(w, "  %s%s✗%s %s%s%s\n", brightRed, bold, reset, red, msg, reset)
}

// Header prints a section header line.
func Header(w io.Writer, msg string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s%s%s%s\n", bold, brightCyan, msg, reset)
	fmt.Fprintf(w, "  %s%s%s%s\n", dim, cyan, strings.Repeat("━", 62), reset)
}

// KeyValue prints a labeled value.
func KeyValue(w io.Writer, key string, value interface{}, valueColor string) {
	paddedKey := padRight(key, 18)
	fmt.Fprintf(w, "    %s%s%s  %s%v%s\n", dim, paddedKey, reset, valueColor, value, reset)
}

// FileCreated prints a file creation notice.
func FileCreated(w io.Writer, path string) {
	fmt.Fprintf(w, "    %s%s✓%s %s%s%s\n", brightGreen, bold, reset, dim+white, path, reset)
}

// ────────────────────────────────────────────────────────────
// Progress and sizes
// ────────────────────────────────────────────────────────────

// Bar renders percent (0–100) as a fixed-width bar.
func Bar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	p := math.Max(0, math.Min(100, percent))
	filled := int(math.Round(p / 100 * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// HumanSize formats a byte count with binary units, e.g. "1.5 MB".
func HumanSize(bytes int64) string {
	units := []string{"B", "KB", "MB", "GB"}
	if bytes <= 0 {
		return "0.0 B"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/math.Pow(1024, float64(i)), units[i])
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dμs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}
