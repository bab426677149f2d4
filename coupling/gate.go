package coupling

import (
	"fmt"

	"github.com/jasontalley/pact/errors"
)

// GateError is returned when a report fails the coupling gate. The message
// embeds the rendered report so a CI log line is self-contained.
type GateError struct {
	Report *Report
}

func (e *GateError) Error() string {
	return fmt.Sprintf("coupling gate failed: score %d%% (threshold %d%%), %d mismatch(es)\n\n%s",
		e.Report.Summary.CouplingScore,
		e.Report.Threshold,
		e.Report.Summary.MismatchCount,
		Render(e.Report))
}

func (e *GateError) Unwrap() error {
	return errors.ErrCouplingGate
}

// CheckGate returns nil when the report passes the gate and a *GateError
// otherwise. A perfect score never excuses a mismatch.
func CheckGate(report *Report) error {
	if report.PassesGate {
		return nil
	}
	return &GateError{Report: report}
}
