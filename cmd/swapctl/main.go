// Command swapctl queries token prices, quotes conversions, ranks wallet
// balances and runs paper swaps from the terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "swapctl",
		Usage: "token prices, quotes, balances and paper swaps",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "feed",
				Usage: "price feed URL (defaults to PRICE_FEED_URL)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level",
				Value: "warn",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "tokens",
				Usage: "list tokens with a price",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Usage: "case-insensitive symbol filter"},
				},
				Action: runTokens,
			},
			{
				Name:  "quote",
				Usage: "convert an amount between two tokens",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "source token", Required: true},
					&cli.StringFlag{Name: "to", Usage: "destination token", Required: true},
					&cli.StringFlag{Name: "amount", Usage: "source amount", Value: "1"},
				},
				Action: runQuote,
			},
			{
				Name:  "balances",
				Usage: "rank wallet balances by chain priority",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "balance", Usage: "chain:symbol:amount, repeatable"},
					&cli.StringSliceFlag{Name: "price", Usage: "symbol:usd, overrides the feed, repeatable"},
					&cli.StringFlag{Name: "priority-file", Usage: "YAML chain priority table"},
				},
				Action: runBalances,
			},
			{
				Name:   "swap",
				Usage:  "run a paper swap interactively",
				Action: runSwap,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
