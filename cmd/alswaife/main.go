package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/MahmoudHooda2019/alswaife/internal/catalog"
	catalogloader "github.com/MahmoudHooda2019/alswaife/internal/catalog/loader"
	"github.com/MahmoudHooda2019/alswaife/internal/clock"
	"github.com/MahmoudHooda2019/alswaife/internal/config"
	"github.com/MahmoudHooda2019/alswaife/internal/export"
	exportservice "github.com/MahmoudHooda2019/alswaife/internal/export/service"
	"github.com/MahmoudHooda2019/alswaife/internal/ledger"
	ledgerdomain "github.com/MahmoudHooda2019/alswaife/internal/ledger/domain"
	"github.com/MahmoudHooda2019/alswaife/internal/migration"
	"github.com/MahmoudHooda2019/alswaife/internal/observability"
	"github.com/MahmoudHooda2019/alswaife/internal/pricing"
	pricingdomain "github.com/MahmoudHooda2019/alswaife/internal/pricing/domain"
	"github.com/MahmoudHooda2019/alswaife/internal/sequence"
	sequencedomain "github.com/MahmoudHooda2019/alswaife/internal/sequence/domain"
	"github.com/MahmoudHooda2019/alswaife/pkg/db"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "alswaife",
		Short: "Stone factory invoicing and ledger CLI",
	}
	root.AddCommand(newMigrateCmd(), newCatalogCmd(), newCounterCmd(), newCommitCmd(), newStatementCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp()
		},
	}
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog [file]",
		Short: "Validate the pricing catalog file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				path = cfg.CatalogPath
			}

			products, err := catalogloader.Load(path)
			if err != nil {
				return err
			}
			for _, p := range products {
				fmt.Printf("%s: %d rule(s)\n", p.Code, len(p.Rules))
			}
			return nil
		},
	}
	return cmd
}

func newCounterCmd() *cobra.Command {
	var series string
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Show the last issued invoice number",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(
				sequence.Module,
				fx.Invoke(func(seq sequencedomain.Service) error {
					last, err := seq.Peek(cmd.Context(), series)
					if err != nil {
						return err
					}
					fmt.Printf("last issued: %d\n", last)
					return nil
				}),
			)
		},
	}
	cmd.Flags().StringVar(&series, "series", sequencedomain.DefaultSeries, "counter series")
	return cmd
}

// draftFile is the JSON shape accepted by the commit command.
type draftFile struct {
	Client string         `json:"client"`
	Series string         `json:"series"`
	Header map[string]any `json:"header"`
	Items  []struct {
		Product     string          `json:"product"`
		Thickness   string          `json:"thickness"`
		Description string          `json:"description"`
		Length      decimal.Decimal `json:"length"`
		Height      decimal.Decimal `json:"height"`
		Count       decimal.Decimal `json:"count"`
	} `json:"items"`
}

func newCommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commit <draft.json>",
		Short: "Price, commit and export a draft invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var draft draftFile
			if err := json.Unmarshal(raw, &draft); err != nil {
				return fmt.Errorf("parse draft: %w", err)
			}

			return runApp(
				catalog.Module,
				pricing.Module,
				sequence.Module,
				ledger.Module,
				export.Module,
				fx.Invoke(func(pricer pricingdomain.Service, book ledgerdomain.Service, exporter *exportservice.Service) error {
					ctx := cmd.Context()

					items := make([]pricingdomain.LineItem, 0, len(draft.Items))
					for _, it := range draft.Items {
						priced, err := pricer.Price(ctx, pricingdomain.LineItem{
							ProductCode: it.Product,
							Thickness:   it.Thickness,
							Description: it.Description,
							Length:      it.Length,
							Height:      it.Height,
							Count:       it.Count,
						})
						if err != nil {
							return err
						}
						items = append(items, priced)
					}

					invoice, err := book.Commit(ctx, ledgerdomain.Draft{
						Series:     draft.Series,
						ClientName: draft.Client,
						Header:     draft.Header,
						Items:      items,
					})
					if err != nil {
						return err
					}

					path, err := exporter.WriteInvoice(invoice)
					if err != nil {
						return err
					}
					fmt.Printf("invoice %d committed, total %s, exported to %s\n",
						invoice.Number, invoice.GrandTotal, path)
					return nil
				}),
			)
		},
	}
}

func newStatementCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "statement <client>",
		Short: "Export a client statement workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(
				sequence.Module,
				ledger.Module,
				export.Module,
				fx.Invoke(func(book ledgerdomain.Service, exporter *exportservice.Service) error {
					data, err := book.Statement(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					path, err := exporter.WriteStatement(data)
					if err != nil {
						return err
					}
					fmt.Printf("statement for %s exported to %s\n", args[0], path)
					return nil
				}),
			)
		},
	}
}

// runApp builds the base fx graph, runs the invoked work and shuts down.
func runApp(extra ...fx.Option) error {
	opts := []fx.Option{
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		fx.NopLogger,
	}
	opts = append(opts, extra...)
	app := fx.New(opts...)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}
	return app.Stop(context.Background())
}

func registerSnowflake(cfg *config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
