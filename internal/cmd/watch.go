package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
)

type WatchCmd struct {
	Every time.Duration `help:"Refresh interval; defaults to the staleness threshold."`
}

// Run keeps the local catalog fresh: a cron loop refreshes on the interval,
// and a connectivity subscription refreshes as soon as the network returns.
func (w *WatchCmd) Run(ctx *Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := buildStack(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Syncer.Start(runCtx); err != nil {
		return err
	}
	st.Monitor.Start(runCtx)

	st.Monitor.OnChange(func(offline bool) {
		if offline {
			ctx.UI.Warnf("network lost, serving cached data")
			return
		}
		ctx.UI.Infof("network restored, refreshing")
		if err := st.Syncer.CheckNetworkAndRefresh(runCtx); err != nil {
			ctx.UI.Errorf("refresh: %v", err)
		}
	})

	interval := w.Every
	if interval <= 0 {
		interval = time.Duration(ctx.Config.StaleAfterMinutes) * time.Minute
	}
	if interval <= 0 {
		interval = time.Hour
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		if err := st.Syncer.CheckNetworkAndRefresh(runCtx); err != nil {
			ctx.UI.Errorf("refresh: %v", err)
			return
		}
		snap := st.Syncer.Snapshot()
		ctx.Logger.Info().Int("jobs", len(snap.Jobs)).Bool("offline", snap.Offline).Msg("scheduled refresh")
	}); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	ctx.UI.Infof("watching catalog, refreshing every %s (ctrl-c to stop)", interval)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx.UI.Infof("stopping")
	return nil
}
