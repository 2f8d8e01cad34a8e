package runner

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
)

func TestReport_Render_Trace(t *testing.T) {
	r := &Report{
		RunID:     "0190a6be-0000-7000-8000-000000000001",
		Trace:     "egm.csv",
		Readings:  3,
		Capacity:  15,
		PeakSize:  2,
		Written:   3,
		Read:      3,
		Dropped:   0,
		Remaining: 0,
		Inputs:    3,
		Outputs:   3,
		ElapsedMs: 120,
	}

	var buf bytes.Buffer
	r.Render(&buf)

	g := goldie.New(t)
	g.Assert(t, "report_trace", buf.Bytes())
}

func TestReport_Render_Verification(t *testing.T) {
	r := &Report{
		RunID:     "0190a6be-0000-7000-8000-000000000002",
		Trace:     "egm-fault.csv",
		Automaton: "egm",
		Readings:  1234,
		Capacity:  100,
		PeakSize:  7,
		Written:   1234,
		Read:      1200,
		Dropped:   34,
		Remaining: 0,
		Inputs:    1200,
		Outputs:   1200,
		ElapsedMs: 1204,
		Verification: &Verification{
			TotalSteps: 1199,
			OK:         1190,
			Fail:       9,
			Conforms:   false,
		},
	}

	var buf bytes.Buffer
	r.Render(&buf)

	g := goldie.New(t)
	g.Assert(t, "report_verify", buf.Bytes())
}

func TestReport_Render_Conforms(t *testing.T) {
	r := &Report{
		RunID:     "0190a6be-0000-7000-8000-000000000003",
		Trace:     "egm.csv",
		Automaton: "egm",
		Readings:  4,
		Capacity:  100,
		PeakSize:  1,
		Written:   4,
		Read:      4,
		Inputs:    4,
		Outputs:   4,
		ElapsedMs: 2,
		Verification: &Verification{
			TotalSteps: 4,
			OK:         4,
			Fail:       0,
			Conforms:   true,
		},
	}

	var buf bytes.Buffer
	r.Render(&buf)

	g := goldie.New(t)
	g.Assert(t, "report_conforms", buf.Bytes())
}
