package display

import (
	"fmt"
	"io"
	"strings"
)

// ANSI color codes
const (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	red    = "\033[31m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	white  = "\033[37m"

	brightRed    = "\033[91m"
	brightGreen  = "\033[92m"
	brightYellow = "\033[93m"
	brightBlue   = "\033[94m"
	brightCyan   = "\033[96m"
	brightWhite  = "\033[97m"
)

// RunInfo holds everything shown in the banner before an extraction run.
type RunInfo struct {
	Files int
	Jobs  int

	// Strategy
	Mode          string
	TextBackend   string
	AutoThreshold int
	RenderScale   float64

	// OCR
	Languages        []string
	FallbackLanguage string
	TessdataPrefix   string
	OCRCompiled      bool
}

// PrintBanner prints the run configuration.
func PrintBanner(w io.Writer, info RunInfo) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s%s📄 pdf2text%s\n", bold, brightCyan, reset)
	fmt.Fprintf(w, "  %s%s%s%s\n", dim, cyan, strings.Repeat("━", 62), reset)
	fmt.Fprintln(w)

	printSectionHeader(w, "⚙️  Strategy")
	printKV(w, "Mode", info.Mode, brightWhite)
	printKV(w, "Text Layer", info.TextBackend, white)
	if info.Mode == "auto" {
		printKV(w, "OCR Below", fmt.Sprintf("%d chars", info.AutoThreshold), white)
	}
	printKV(w, "Files", fmt.Sprintf("%d (%d at a time)", info.Files, info.Jobs), white)
	fmt.Fprintln(w)

	if info.Mode != "text" {
		printSectionHeader(w, "🔍 OCR")
		if info.OCRCompiled {
			printKVColored(w, "Engine", "✓ tesseract", brightGreen)
		} else {
			printKVColored(w, "Engine", "✗ not compiled (build with -tags ocr)", brightYellow)
		}
		printKV(w, "Languages", strings.Join(info.Languages, "+"), white)
		printKV(w, "Fallback", info.FallbackLanguage, white)
		printKV(w, "Render Scale", fmt.Sprintf("%.1fx", info.RenderScale), white)
		if info.TessdataPrefix != "" {
			printKV(w, "Tessdata", info.TessdataPrefix, dim+white)
		}
		fmt.Fprintln(w)
	}
}

func printSectionHeader(w io.Writer, title string) {
	fmt.Fprintf(w, "  %s%s%s%s\n", bold, brightYellow, title, reset)
}

func printKV(w io.Writer, key, value, valueColor string) {
	paddedKey := padRight(key, 18)
	fmt.Fprintf(w, "    %s%s%s  %s%s%s\n", dim, paddedKey, reset, valueColor, value, reset)
}

func printKVColored(w io.Writer, key, value, valueColor string) {
	paddedKey := padRight(key, 18)
	fmt.Fprintf(w, "    %s%s%s  %s%s%s%s\n", dim, paddedKey, reset, bold, valueColor, value, reset)
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
