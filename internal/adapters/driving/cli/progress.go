package cli

import (
	"fmt"
	"io"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driving"
)

// clearLine moves to column 0 and erases the line.
const clearLine = "\r\033[K"

var _ driving.ProgressObserver = (*progressPrinter)(nil)

// progressPrinter reports per-day progress. On a terminal it keeps a single
// status line up to date; otherwise it prints one line per processed day.
type progressPrinter struct {
	out     io.Writer
	live    bool
	pending bool
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{out: out, live: isTerminal(out)}
}

func (p *progressPrinter) DayStarted(day domain.Day, index, total int) {
	if !p.live {
		return
	}
	fmt.Fprintf(p.out, "%s%s fetching %s", clearLine, counter(index, total), day)
	p.pending = true
}

func (p *progressPrinter) DaySkipped(day domain.Day, index, total int) {
	if p.live {
		fmt.Fprintf(p.out, "%s%s %s", clearLine, counter(index, total), styles.Muted.Render(day.String()+" already ingested"))
		p.pending = true
		return
	}
	fmt.Fprintf(p.out, "%s %s %s\n", counter(index, total), day, styles.Muted.Render("skipped"))
}

func (p *progressPrinter) DayIngested(day domain.Day, messages int, index, total int) {
	if p.live {
		fmt.Fprintf(p.out, "%s%s %s %s", clearLine, counter(index, total), day,
			styles.Success.Render(fmt.Sprintf("%d messages", messages)))
		p.pending = true
		return
	}
	fmt.Fprintf(p.out, "%s %s %d messages\n", counter(index, total), day, messages)
}

// Finish ends a live status line.
func (p *progressPrinter) Finish() {
	if p.pending {
		fmt.Fprintln(p.out)
		p.pending = false
	}
}

func counter(index, total int) string {
	width := len(fmt.Sprint(total))
	return fmt.Sprintf("[%*d/%d]", width, index+1, total)
}
