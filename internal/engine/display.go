package engine

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Display handles terminal progress output for a job execution.
type Display struct {
	w       io.Writer
	title   string
	verbose bool
	stop    chan struct{}
	done    chan struct{}
}

// NewDisplay creates a display that writes to stdout.
func NewDisplay(title string, verbose bool) *Display {
	return &Display{w: os.Stdout, title: title, verbose: verbose}
}

// labelColumnWidth is the fixed display width reserved for the image/action column.
var labelColumnWidth = 34

// ansiEscapeRe matches ANSI terminal escape sequences and C0/DEL control characters.
var ansiEscapeRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]|[\x00-\x1f\x7f]`)

// sanitizeLabel strips ANSI escape sequences and control characters from a
// step label (image names and action refs come from user-supplied YAML).
func sanitizeLabel(name string) string {
	return ansiEscapeRe.ReplaceAllString(name, "")
}

// truncateLabel sanitizes and truncates label to fit within labelColumnWidth
// runes, appending an ellipsis if truncation occurs.
func truncateLabel(label string) string {
	label = sanitizeLabel(label)
	if utf8.RuneCountInString(label) <= labelColumnWidth {
		return label
	}
	runes := []rune(label)
	return string(runes[:labelColumnWidth-1]) + "…"
}

// Header prints the job header.
func (d *Display) Header() {
	fmt.Fprintf(d.w, "\n⚙ cirun — %s\n", d.title)
	fmt.Fprintln(d.w, strings.Repeat("─", 76))
}

// StepStart prints a step-in-progress line and starts an elapsed time ticker.
// In non-verbose mode, the line is updated in place every second with elapsed
// time. In verbose mode, a plain line is printed (step output follows).
func (d *Display) StepStart(name, label string) {
	label = truncateLabel(label)
	if d.verbose {
		fmt.Fprintf(d.w, "⏳ %-16s %-34s running...\n", name, label)
		return
	}
	// Print without trailing newline so the ticker can overwrite in place.
	fmt.Fprintf(d.w, "⏳ %-16s %-34s running...", name, label)

	stop := make(chan struct{})
	done := make(chan struct{})
	d.stop = stop
	d.done = done
	start := time.Now()

	go func() {
		defer close(done)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fmt.Fprintf(d.w, "\r⏳ %-16s %-34s running... %.0fs",
					name, label, time.Since(start).Seconds())
			}
		}
	}()
}

// stopTicker stops the elapsed time goroutine and waits for it to finish.
func (d *Display) stopTicker() {
	if d.stop != nil {
		close(d.stop)
		<-d.done
		d.stop = nil
		d.done = nil
	}
}

// maxPreviewLines is the number of step output lines shown after completion
// in verbose mode.
const maxPreviewLines = 10

// StepDone prints a completed step line, overwriting the running line in
// non-verbose mode. output, when non-empty, is shown as a preview (first
// maxPreviewLines lines).
func (d *Display) StepDone(name, label string, duration time.Duration, output string) {
	d.stopTicker()
	label = truncateLabel(label)
	prefix := "\r"
	if d.verbose {
		prefix = ""
	}
	fmt.Fprintf(d.w, "%s✅ %-16s %-34s %.1fs\n", prefix, name, label, duration.Seconds())

	if output != "" {
		lines := strings.Split(output, "\n")
		// Drop the trailing empty element that Split adds for a newline-terminated string.
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		previewLines := lines
		truncated := false
		if len(lines) > maxPreviewLines {
			previewLines = lines[:maxPreviewLines]
			truncated = true
		}
		for _, l := range previewLines {
			fmt.Fprintf(d.w, "  │ %s\n", l)
		}
		if truncated {
			fmt.Fprintf(d.w, "  │ ... (%d more lines)\n", len(lines)-maxPreviewLines)
		}
	}
}

// StepFailed prints a failed step line, overwriting the running line in
// non-verbose mode.
func (d *Display) StepFailed(name, label string, err error) {
	d.stopTicker()
	label = truncateLabel(label)
	prefix := "\r"
	if d.verbose {
		prefix = ""
	}
	fmt.Fprintf(d.w, "%s❌ %-16s %-34s %s\n", prefix, name, label, err.Error())
}

// StepTolerated prints a failed continue-on-error step line; the job moves on.
func (d *Display) StepTolerated(name, label string, err error) {
	d.stopTicker()
	label = truncateLabel(label)
	prefix := "\r"
	if d.verbose {
		prefix = ""
	}
	fmt.Fprintf(d.w, "%s⚠️ %-16s %-34s %s (continue-on-error)\n", prefix, name, label, err.Error())
}

// Summary prints the final run summary.
func (d *Display) Summary(totalDuration time.Duration) {
	fmt.Fprintln(d.w, strings.Repeat("─", 76))
	fmt.Fprintf(d.w, "✅ Done  %.0fs\n", totalDuration.Seconds())
	fmt.Fprintln(d.w)
}

// Failed prints a failure summary.
func (d *Display) Failed(err error) {
	fmt.Fprintln(d.w, strings.Repeat("─", 76))
	fmt.Fprintf(d.w, "❌ Failed: %s\n\n", err.Error())
}
