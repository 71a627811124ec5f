package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/offlinekit/jobsync/internal/config"
	"github.com/offlinekit/jobsync/internal/netmon"
	"github.com/offlinekit/jobsync/internal/remote"
	"github.com/offlinekit/jobsync/internal/store"
	"github.com/offlinekit/jobsync/internal/syncer"
)

// stack is the wired sync layer a command runs against.
type stack struct {
	Store   *store.Store
	Monitor *netmon.Monitor
	Syncer  *syncer.Syncer
}

func (s *stack) Close() {
	s.Monitor.Close()
	_ = s.Store.Close()
}

// buildStack wires store, remote client, connectivity monitor and syncer from
// the loaded configuration.
func buildStack(ctx *Context) (*stack, error) {
	dbPath, err := config.DBPath()
	if err != nil {
		return nil, err
	}
	metaPath, err := config.MetaPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	kv, err := store.NewKV(metaPath)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(dbPath, kv)
	if err != nil {
		return nil, err
	}

	catalog, err := remote.NewClient(ctx.Config.APIBaseURL)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("remote client: %w", err)
	}

	monitor := netmon.New(ctx.Config.ProbeAddress, ctx.Logger)

	staleAfter := store.DefaultStaleAfter
	if ctx.Config.StaleAfterMinutes > 0 {
		staleAfter = time.Duration(ctx.Config.StaleAfterMinutes) * time.Minute
	}

	sync := syncer.New(st, catalog, monitor, ctx.Logger, syncer.WithStaleAfter(staleAfter))
	return &stack{Store: st, Monitor: monitor, Syncer: sync}, nil
}
