package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/vault/internal/api"
	"github.com/mtlprog/vault/internal/config"
	"github.com/mtlprog/vault/internal/domain"
	"github.com/mtlprog/vault/internal/export"
	"github.com/mtlprog/vault/internal/token"
	"github.com/mtlprog/vault/internal/worker"
)

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "fetch the token view once and print it as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "account", Usage: "account ID whose balance to include"},
		},
		Action: func(c *cli.Context) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			account := c.String("account")
			if account != "" && !domain.IsAccountID(account) {
				return fmt.Errorf("invalid account ID %q", account)
			}

			view := token.NewAggregator(a.source).Fetch(c.Context, account)
			if err := printJSON(api.NewTokenDTO(view)); err != nil {
				return err
			}
			if view.State == token.StateFailed {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:      "quote",
		Usage:     "compute the reward for a deposit",
		ArgsUsage: "<amount>",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "rate", Usage: "reward rate in basis points (defaults to the network profile)", Value: -1},
		},
		Action: func(c *cli.Context) error {
			input := c.Args().First()
			deposit := domain.ToAtomicUnits(input)
			if deposit == 0 {
				return fmt.Errorf("amount must be a positive number, got %q", input)
			}

			rate := c.Int64("rate")
			if rate < 0 {
				profile, err := config.LoadNetworkProfile(config.Load().NetworkProfilePath)
				if err != nil {
					return err
				}
				rate = profile.DefaultRewardRate
			}

			reward := domain.CalculateReward(deposit, rate)
			fmt.Printf("deposit %s at %s%% earns %s\n",
				domain.FormatAmount(deposit), domain.BPSToPercent(rate), domain.FormatAmount(reward))
			return nil
		},
	}
}

func unlockCommand() *cli.Command {
	return &cli.Command{
		Name:      "unlock",
		Usage:     "show the time left until a timelock expires",
		ArgsUsage: "<unix-seconds>",
		Action: func(c *cli.Context) error {
			var unlock int64
			if _, err := fmt.Sscan(c.Args().First(), &unlock); err != nil {
				return fmt.Errorf("timelock must be UNIX seconds: %w", err)
			}
			fmt.Println(domain.TimeUntilUnlock(unlock, domain.SystemClock().Unix()))
			return nil
		},
	}
}

func snapshotCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "capture today's token snapshot into the database",
		Action: func(c *cli.Context) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			pool, svc, err := a.openSnapshots(c.Context)
			if err != nil {
				return err
			}
			defer pool.Close()

			date := worker.UTCDate(time.Now())
			view, err := svc.Capture(c.Context, date)
			if err != nil {
				return err
			}

			hook, err := a.exportHook(c.Context, svc)
			if err != nil {
				return err
			}
			if hook != nil {
				if err := hook.Export(c.Context, date, view); err != nil {
					return err
				}
			}
			fmt.Printf("snapshot %s saved for %s\n", date.Format(time.DateOnly), svc.TokenSlug())
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write the stored history to an Excel workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "output path", Value: "vault-history.xlsx"},
		},
		Action: func(c *cli.Context) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			pool, svc, err := a.openSnapshots(c.Context)
			if err != nil {
				return err
			}
			defer pool.Close()

			out := c.String("out")
			writer := export.NewXLSXWriter(out)
			rows, err := export.NewService(svc, writer).Rows(c.Context)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return errors.New("no snapshots stored yet")
			}
			if err := writer.Write(c.Context, rows); err != nil {
				return err
			}
			fmt.Printf("wrote %d rows to %s\n", len(rows), out)
			return nil
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
