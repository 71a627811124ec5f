package cmd

import (
	"context"
	"fmt"
)

type ClearCmd struct {
	Yes bool `help:"Skip the confirmation prompt."`
}

func (c *ClearCmd) Run(ctx *Context) error {
	if !c.Yes {
		return fmt.Errorf("clearing deletes every cached job; re-run with --yes to confirm")
	}

	runCtx := context.Background()

	st, err := buildStack(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	// The syncer is deliberately not started here: startup would kick a
	// background refresh that races the reset and refills the store.
	if err := st.Store.Init(runCtx); err != nil {
		return err
	}
	if err := st.Store.ClearAll(runCtx); err != nil {
		return err
	}

	ctx.UI.Successf("cleared cached catalog")
	return nil
}
