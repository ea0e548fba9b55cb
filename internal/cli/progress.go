package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter shows import progress as a progress bar.
// It implements storage.ProgressReporter.
type CLIProgressReporter struct {
	quiet     bool
	out       io.Writer
	bar       *progressbar.ProgressBar
	startTime time.Time
	written   map[string]int
	order     []string
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet:   quiet,
		out:     out,
		written: make(map[string]int),
	}
}

func (c *CLIProgressReporter) OnImportStart(totalRecords int) {
	c.startTime = time.Now()
	if c.quiet {
		return
	}
	c.bar = progressbar.NewOptions(totalRecords,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Importing records"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("records/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnRecordsWritten(kind string, n int) {
	if _, seen := c.written[kind]; !seen {
		c.order = append(c.order, kind)
	}
	c.written[kind] += n
	if c.bar != nil {
		c.bar.Add(n)
	}
}

func (c *CLIProgressReporter) OnImportComplete() {
	if c.bar != nil {
		c.bar.Finish()
		c.bar = nil
	}
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "✓ Import complete in %.1fs\n", time.Since(c.startTime).Seconds())
	for _, kind := range c.order {
		fmt.Fprintf(c.out, "  %-12s %s\n", kind+":", formatNumber(c.written[kind]))
	}
}

// formatNumber adds thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
