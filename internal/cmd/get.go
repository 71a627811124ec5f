package cmd

import (
	"context"
	"errors"

	"github.com/offlinekit/jobsync/internal/export"
	"github.com/offlinekit/jobsync/internal/syncer"
)

type GetCmd struct {
	ID string `arg:"" help:"Job identifier."`
}

func (g *GetCmd) Run(ctx *Context) error {
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

	job, err := st.Syncer.GetJobByID(runCtx, g.ID)
	if err != nil {
		if errors.Is(err, syncer.ErrUnavailableOffline) {
			ctx.UI.Warnf("job %q is not cached and the network is unreachable", g.ID)
		}
		return err
	}

	if !job.Detailed() {
		ctx.UI.Warnf("showing cached summary; details could not be fetched")
	}

	format := export.FormatTable
	if ctx.JSONOutput {
		format = export.FormatJSON
	}
	return export.WriteJobDetail(ctx.Out, job, format)
}
