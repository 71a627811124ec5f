package cmd

import "context"

type RefreshCmd struct{}

func (r *RefreshCmd) Run(ctx *Context) error {
	runCtx := context.Background()

	st, err := buildStack(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Syncer.Start(runCtx); err != nil {
		return err
	}

	if err := st.Syncer.CheckNetworkAndRefresh(runCtx); err != nil {
		return err
	}

	snap := st.Syncer.Snapshot()
	if snap.Offline {
		ctx.UI.Warnf("offline, cached catalog unchanged (%d jobs)", len(snap.Jobs))
		return nil
	}
	if snap.Err != "" {
		ctx.UI.Warnf("refresh completed with warnings: %s", snap.Err)
	}
	ctx.UI.Successf("catalog refreshed: %d jobs", len(snap.Jobs))
	return nil
}
