package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/offlinekit/jobsync/internal/export"
)

type ListCmd struct {
	Format    string `help:"Output format: csv, json, md." enum:",csv,json,md" default:""`
	Output    string `name:"output" short:"o" help:"Write output to a file."`
	NoRefresh bool   `help:"Serve the cached catalog only, even when stale."`
}

func (l *ListCmd) Run(ctx *Context) error {
	runCtx := context.Background()

	st, err := buildStack(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	st.Monitor.Check(runCtx)
	if err := st.Syncer.Start(runCtx); err != nil {
		return err
	}

	// The cached catalog is always served; a stale catalog is refreshed
	// first so this command's output matches what a consumer would settle
	// on. Refresh errors with cached data present are reported, not fatal.
	if !l.NoRefresh && st.Syncer.Stale() {
		if err := st.Syncer.RefreshAll(runCtx); err != nil {
			return err
		}
	}

	snap := st.Syncer.Snapshot()
	if snap.Offline {
		ctx.UI.Warnf("offline, showing cached data")
	} else if snap.Err != "" {
		ctx.UI.Warnf("%s", snap.Err)
	}

	writer := ctx.Out
	var file *os.File
	if l.Output != "" {
		file, err = os.Create(l.Output)
		if err != nil {
			return err
		}
		defer file.Close()
		writer = file
	}

	format, err := resolveFormat(ctx, l.Format, l.Output)
	if err != nil {
		return err
	}

	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled && file == nil
	if err := export.WriteJobs(writer, snap.Jobs, format, export.WriteOptions{
		ColorEnabled: colorEnabled,
	}); err != nil {
		return err
	}

	fmt.Fprintf(ctx.Err, "summary: jobs=%d offline=%t\n", len(snap.Jobs), snap.Offline)
	return nil
}

func resolveFormat(ctx *Context, flagValue string, outputPath string) (export.Format, error) {
	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}

	switch strings.ToLower(strings.TrimSpace(flagValue)) {
	case "":
	case "csv":
		return export.FormatCSV, nil
	case "json":
		return export.FormatJSON, nil
	case "md":
		return export.FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported format %q", flagValue)
	}

	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".json":
		return export.FormatJSON, nil
	case ".csv":
		return export.FormatCSV, nil
	case ".tsv":
		return export.FormatTSV, nil
	case ".md":
		return export.FormatMarkdown, nil
	}
	return export.FormatTable, nil
}
