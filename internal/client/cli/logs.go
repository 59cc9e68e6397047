package cli

import (
	"context"
	"fmt"
	"time"
)

// Logs prints the recorded error log, oldest first.
func (a *App) Logs(_ context.Context) error {
	entries := a.errlog.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No log entries.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(a.out, "%s [%s] %s", e.Timestamp.Format(time.DateTime), e.Level, e.Message)
		if len(e.Context) > 0 {
			fmt.Fprintf(a.out, " %v", e.Context)
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

// ExportLogs prints the recorded error log as JSON.
func (a *App) ExportLogs(ctx context.Context) error {
	data, err := a.errlog.Export()
	if err != nil {
		a.log.Error(ctx, "error exporting logs", "error", err)
		return err
	}
	fmt.Fprintln(a.out, data)
	return nil
}

// ClearLogs empties the recorded error log in memory and in storage.
func (a *App) ClearLogs(ctx context.Context) error {
	if err := a.errlog.Clear(ctx); err != nil {
		fmt.Fprintf(a.out, "Could not clear logs: %s\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Logs cleared.")
	return nil
}
