package runner

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Verification summarizes a membership run.
type Verification struct {
	TotalSteps int  `json:"total_steps"`
	OK         int  `json:"ok"`
	Fail       int  `json:"fail"`
	Conforms   bool `json:"conforms"`
}

// Report is the final accounting of a pipeline run: what the producer
// emitted, what the buffer kept, what the sequencer processed, and -
// for verification runs - the verdict tally.
type Report struct {
	RunID     string `json:"run_id"`
	Trace     string `json:"trace"`
	Automaton string `json:"automaton,omitempty"`

	Readings  int64 `json:"readings"`
	Capacity  int   `json:"capacity"`
	PeakSize  int   `json:"peak_size"`
	Written   int64 `json:"written"`
	Read      int64 `json:"read"`
	Dropped   int64 `json:"dropped"`
	Remaining int   `json:"remaining"`

	Inputs  int64 `json:"inputs"`
	Outputs int64 `json:"outputs"`

	ElapsedMs int64 `json:"elapsed_ms"`

	Verification *Verification `json:"verification,omitempty"`
}

// Render writes the human-readable final report.
func (r *Report) Render(w io.Writer) {
	p := message.NewPrinter(language.English)

	line := func(label, format string, args ...any) {
		fmt.Fprintf(w, "|  %-12s: %s\n", label, p.Sprintf(format, args...))
	}

	rule := "+==================================================================+"
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "|                          FINAL REPORT                            |")
	fmt.Fprintln(w, rule)
	line("Run ID", "%s", r.RunID)
	line("Trace", "%s", r.Trace)
	if r.Automaton != "" {
		line("Automaton", "%s", r.Automaton)
	}
	line("Producer", "%d readings written", r.Readings)
	line("Ring buffer", "capacity=%d, peak=%d", r.Capacity, r.PeakSize)
	line("Ring buffer", "%d written / %d read / %d dropped", r.Written, r.Read, r.Dropped)
	line("Sequencer", "%d inputs / %d outputs", r.Inputs, r.Outputs)
	line("Remaining", "%d", r.Remaining)
	line("Elapsed", "%s", (time.Duration(r.ElapsedMs) * time.Millisecond).String())
	if v := r.Verification; v != nil {
		fmt.Fprintln(w, "+------------------------------------------------------------------+")
		line("Membership", "%d steps -> %d OK / %d FAIL", v.TotalSteps, v.OK, v.Fail)
		if v.Conforms {
			line("Verdict", "CONFORMS")
		} else {
			line("Verdict", "VIOLATIONS DETECTED")
		}
	}
	fmt.Fprintln(w, rule)
}
