// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

// authCommand handles Steam sign-in
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in with Steam",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in through Steam OpenID in the browser",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the sign-in URL instead of opening a browser",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for Steam to redirect back",
						Value: 2 * time.Minute,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the signed-in Steam account",
				Action: r.AuthLogout,
			},
			{
				Name:  "whoami",
				Usage: "Show the signed-in Steam account",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthWhoami,
			},
		},
	}
}

// marketCommand handles Steam Community Market lookups
func marketCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "market",
		Aliases: []string{"m"},
		Usage:   "Search the Steam market and look up prices",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Search market items by name",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results to show",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.MarketSearch,
			},
			{
				Name:      "price",
				Usage:     "Look up the lowest listing price for one or more items",
				ArgsUsage: "[market hash name...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read market hash names from a file, one per line",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent price lookups",
						Value: 3,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MarketPrice,
			},
		},
	}
}

// tracksCommand handles the watchlist
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tracks",
		Aliases: []string{"t"},
		Usage:   "Manage tracked items",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tracked items",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reached",
						Usage: "Only show items at or below their target",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.TracksList,
			},
			{
				Name:  "add",
				Usage: "Track an item by market hash name",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "target",
						Usage:    "Target price in USD",
						Required: true,
					},
				},
				Action: r.TracksAdd,
			},
			{
				Name:      "import",
				Usage:     "Track items from Steam market listing URLs",
				ArgsUsage: "[listing url...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read listing URLs from a file, one per line",
					},
					&cli.StringFlag{
						Name:     "target",
						Usage:    "Target price in USD for every imported item",
						Required: true,
					},
				},
				Action: r.TracksImport,
			},
			{
				Name:  "target",
				Usage: "Change the target price of a tracked item",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "price"},
				},
				Action: r.TracksTarget,
			},
			{
				Name:  "auto",
				Usage: "Turn auto-purchase on or off for a tracked item",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "state"},
				},
				Action: r.TracksAuto,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Stop tracking an item",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.TracksDelete,
			},
			{
				Name:  "refresh",
				Usage: "Refresh prices now and run auto-purchase",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TracksRefresh,
			},
			{
				Name:  "export",
				Usage: "Export the watchlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format (csv, markdown, txt, json)",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file or directory",
					},
				},
				Action: r.TracksExport,
			},
		},
	}
}

// historyCommand lists auto-purchased items
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List items bought by auto-purchase",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.HistoryList,
	}
}

// notificationsCommand handles stored notices
func notificationsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "notifications",
		Aliases: []string{"n"},
		Usage:   "Show and clear notifications",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List notifications, newest first",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "unread",
						Usage: "Only show unread notifications",
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Filter by kind (price_drop, purchase, info, error)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of notifications to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.NotificationsList,
			},
			{
				Name:   "read",
				Usage:  "Mark all notifications read",
				Action: r.NotificationsRead,
			},
		},
	}
}

// settingsCommand handles stored preferences
func settingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change preferences",
		Commands: []*cli.Command{
			{
				Name:  "interval",
				Usage: "Show or set the price refresh interval in minutes (or off)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "minutes"},
				},
				Action: r.SettingsInterval,
			},
		},
	}
}

// watchCommand keeps refreshing in the foreground
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Keep refreshing prices on the configured interval",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "interval",
				Usage: "Set the refresh interval in minutes before watching",
			},
			&cli.BoolFlag{
				Name:  "now",
				Usage: "Refresh once immediately",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address",
			},
		},
		Action: r.Watch,
	}
}

// tuiCommand launches the interactive UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the UI is running",
				Value: "./tmp/steamwatch-tui.log",
			},
		},
		Action: r.TUI,
	}
}
