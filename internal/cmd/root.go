package cmd

import "github.com/alecthomas/kong"

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"JSON output to stdout; disables colors."`
	Plain   bool   `help:"TSV output to stdout; disables colors."`
	Verbose bool   `help:"Enable debug logging."`

	VersionFlag kong.VersionFlag `help:"Print version."`

	Version VersionCmd `cmd:"" help:"Print version."`
	Config  ConfigCmd  `cmd:"" help:"Manage configuration."`
	List    ListCmd    `cmd:"" help:"List the cached job catalog, refreshing it when stale."`
	Get     GetCmd     `cmd:"" help:"Show one job in detailed form."`
	Refresh RefreshCmd `cmd:"" help:"Re-check connectivity and refresh the catalog."`
	Watch   WatchCmd   `cmd:"" help:"Keep the catalog fresh on an interval."`
	Clear   ClearCmd   `cmd:"" help:"Delete every cached job and the sync timestamp."`
}

func NewCLI() *CLI {
	return &CLI{}
}
