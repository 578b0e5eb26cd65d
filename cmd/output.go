package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"frameworks/ansible/pkg/ansible/result"
)

// palette colours text only when the writer is a terminal
type palette struct {
	ok   *color.Color
	warn *color.Color
	bad  *color.Color
	dim  *color.Color
}

func newPalette(w io.Writer) *palette {
	p := &palette{
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		bad:  color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
	}
	if !isTerminal(w) {
		for _, c := range []*color.Color{p.ok, p.warn, p.bad, p.dim} {
			c.DisableColor()
		}
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *palette) mark(ok bool) string {
	if ok {
		return p.ok.Sprint("✓")
	}
	return p.bad.Sprint("✗")
}

// recapJSON is the machine readable summary of a run
type recapJSON struct {
	ExitCode    int    `json:"exit_code"`
	Success     bool   `json:"success"`
	Duration    string `json:"duration"`
	Hosts       int    `json:"hosts"`
	Ok          int    `json:"ok"`
	Changed     int    `json:"changed"`
	Unreachable int    `json:"unreachable"`
	Failed      int    `json:"failed"`
	Skipped     int    `json:"skipped"`
	Rescued     int    `json:"rescued"`
	Ignored     int    `json:"ignored"`
	Output      string `json:"output,omitempty"` // output tail, failed runs only
}

func printRecap(cmd *cobra.Command, res *result.Result) error {
	if res == nil {
		return nil
	}
	s := res.Stats
	if s == nil {
		s = &result.Stats{}
	}

	if output == "json" {
		var tail string
		if !res.Success() {
			tail = res.Output
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(recapJSON{
			ExitCode:    res.ExitCode,
			Success:     res.Success(),
			Duration:    res.Duration.String(),
			Hosts:       s.Hosts,
			Ok:          s.Ok,
			Changed:     s.Changed,
			Unreachable: s.Unreachable,
			Failed:      s.Failures,
			Skipped:     s.Skipped,
			Rescued:     s.Rescued,
			Ignored:     s.Ignored,
			Output:      tail,
		})
	}

	out := cmd.OutOrStdout()
	p := newPalette(out)

	fmt.Fprintln(out)
	if s.Hosts == 0 {
		fmt.Fprintf(out, "%s exit status %d %s\n", p.mark(res.ExitCode == 0), res.ExitCode, p.dim.Sprintf("(%s)", res.Duration.Round(time.Millisecond)))
		return nil
	}

	fmt.Fprintf(out, "%s %d host(s): %s %s %s %s %s\n",
		p.mark(res.Success()),
		s.Hosts,
		p.ok.Sprintf("ok=%d", s.Ok),
		p.warn.Sprintf("changed=%d", s.Changed),
		colorIf(p.bad, s.Unreachable > 0).Sprintf("unreachable=%d", s.Unreachable),
		colorIf(p.bad, s.Failures > 0).Sprintf("failed=%d", s.Failures),
		p.dim.Sprintf("skipped=%d rescued=%d ignored=%d (%s)", s.Skipped, s.Rescued, s.Ignored, res.Duration.Round(time.Millisecond)),
	)
	return nil
}

var plain = func() *color.Color {
	c := color.New()
	c.DisableColor()
	return c
}()

func colorIf(c *color.Color, cond bool) *color.Color {
	if cond {
		return c
	}
	return plain
}
