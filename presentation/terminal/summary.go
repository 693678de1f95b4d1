package terminal

import (
	"fmt"
	"io"
	"time"

	"portal_automation/domain/entities"

	"github.com/fatih/color"
)

const (
	passMark = "✓"
	failMark = "✗"
	skipMark = "-"
)

var (
	passColor  = color.New(color.FgGreen)
	failColor  = color.New(color.FgRed)
	skipColor  = color.New(color.FgYellow)
	grayColor  = color.New(color.Faint)
	valueColor = color.New(color.FgCyan)
)

func statusMark(status entities.Status) string {
	switch status {
	case entities.StatusPassed:
		return passColor.Sprint(passMark)
	case entities.StatusSkipped:
		return skipColor.Sprint(skipMark)
	default:
		return failColor.Sprint(failMark)
	}
}

// printReport writes a human readable summary of a run
func printReport(w io.Writer, report entities.Report) {
	fmt.Fprintf(w, "\nrun %s  %s\n\n", valueColor.Sprint(report.RunID), grayColor.Sprint(round(report.Duration)))

	for _, sc := range report.Scenarios {
		fmt.Fprintf(w, "%s %s %s\n", statusMark(sc.Status), sc.Name, grayColor.Sprintf("[%s, %s]", sc.Portal, round(sc.Duration)))
		for _, step := range sc.Steps {
			line := fmt.Sprintf("    %s %s", statusMark(step.Status), step.Name)
			if step.Optional {
				line += grayColor.Sprint(" (optional)")
			}
			if step.Duration > 0 {
				line += " " + grayColor.Sprint(round(step.Duration))
			}
			fmt.Fprintln(w, line)

			if step.Error != "" {
				c := failColor
				if step.Status == entities.StatusSkipped {
					c = grayColor
				}
				fmt.Fprintf(w, "        %s\n", c.Sprint(step.Error))
			}
			if step.Screenshot != "" {
				fmt.Fprintf(w, "        screenshot: %s\n", valueColor.Sprint(step.Screenshot))
			}
		}
	}

	passed, failed, skipped := report.Counts()
	fmt.Fprintf(w, "\n%s  %s  %s\n",
		passColor.Sprintf("%d passed", passed),
		failColor.Sprintf("%d failed", failed),
		skipColor.Sprintf("%d skipped", skipped),
	)
}

func round(d time.Duration) time.Duration {
	return d.Round(time.Millisecond)
}
