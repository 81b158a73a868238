package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/schollz/progressbar/v3"

	"codeberg.org/snonux/blogtrans/internal/content"
	"codeberg.org/snonux/blogtrans/internal/journal"
	"codeberg.org/snonux/blogtrans/internal/translation"
)

// progressObserver drives the progress bar and records finished posts in
// the journal
type progressObserver struct {
	ctx context.Context
	p   *Processor
	run *journalRun
	bar *progressbar.ProgressBar
}

func (p *Processor) newObserver(ctx context.Context, run *journalRun) *progressObserver {
	return &progressObserver{ctx: ctx, p: p, run: run}
}

func (o *progressObserver) Planned(total int) {
	if total == 0 {
		return
	}
	o.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(o.p.errOut),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("translating"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func (o *progressObserver) Starting(index, total int, lang, name string) {
	o.p.logger.Debug("translating post", "index", index, "total", total, "language", lang, "post", name)
	if o.bar != nil {
		o.bar.Describe(fmt.Sprintf("[%d/%d] %s/%s", index, total, lang, name))
	}
}

func (o *progressObserver) Done(ev content.Event) {
	if o.bar != nil {
		_ = o.bar.Add(1)
		if ev.Index == ev.Total {
			_ = o.bar.Finish()
			fmt.Fprintln(o.p.errOut)
		}
	}

	post := journal.Post{
		Language:  ev.Language,
		Name:      ev.Name,
		Status:    journal.StatusWritten,
		Fallbacks: ev.Fallbacks,
		Duration:  ev.Duration,
	}
	switch {
	case ev.Err != nil:
		post.Status = journal.StatusFailed
		post.Error = ev.Err.Error()
	case ev.Skipped:
		post.Status = journal.StatusSkipped
	}
	o.run.record(o.ctx, post)
}

func (p *Processor) printSummary(title string, report *content.Report, stats translation.Stats) {
	header := fmt.Sprintf("=== %s Summary ===", title)
	fmt.Fprintf(p.out, "\n%s\n", header)
	if report.Backup != "" {
		fmt.Fprintf(p.out, "Backup: %s\n", report.Backup)
	}
	if len(report.Deleted) > 0 {
		fmt.Fprintf(p.out, "Deleted: %d\n", len(report.Deleted))
	}
	fmt.Fprintf(p.out, "Written: %d\n", len(report.Written))
	if len(report.Skipped) > 0 {
		fmt.Fprintf(p.out, "Skipped: %d\n", len(report.Skipped))
	}
	fmt.Fprintf(p.out, "Backend calls: %d\n", stats.Calls)
	if report.Fallbacks > 0 {
		fmt.Fprintf(p.out, "Kept original text: %d chunks\n", report.Fallbacks)
	}
	if len(report.Failed) > 0 {
		fmt.Fprintf(p.out, "Errors: %d\n", len(report.Failed))
		for _, f := range report.Failed {
			fmt.Fprintf(p.out, "  %s/%s: %v\n", f.Language, f.Name, f.Err)
		}
	}
	fmt.Fprintln(p.out, strings.Repeat("=", len(header)))
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
