package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/example/clickmenu/pkg/auth"
	"github.com/example/clickmenu/pkg/config"
	"github.com/example/clickmenu/pkg/discovery"
	rpc "github.com/example/clickmenu/pkg/grpc"
	"github.com/example/clickmenu/pkg/repository"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "storectl",
		Usage: "operate ClickMenu stores and orders over the order service RPC API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "config/config.yaml", Usage: "config file with the JWT secret and etcd endpoints"},
			&cli.StringFlag{Name: "addr", Usage: "order service address, skips etcd discovery"},
			&cli.DurationFlag{Name: "timeout", Value: 10 * time.Second, Usage: "per-command deadline"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log connection details to stderr"},
		},
		Commands: []*cli.Command{
			ordersCommand(),
			storesCommand(),
			analyticsCommand(),
			auditCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "storectl:", err)
		os.Exit(1)
	}
}

func pageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "limit", Value: 20},
		&cli.IntFlag{Name: "offset"},
	}
}

func ordersCommand() *cli.Command {
	return &cli.Command{
		Name:  "orders",
		Usage: "list and move orders",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list orders, newest first",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "store"},
					&cli.StringFlag{Name: "status"},
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}},
				}, pageFlags()...),
				Action: func(c *cli.Context) error {
					return run(c, func(ctx context.Context, m *rpc.ClientManager) (interface{}, error) {
						return m.OrderClient().ListOrders(ctx, &rpc.ListOrdersRequest{
							StoreID: c.String("store"),
							Status:  c.String("status"),
							Query:   c.String("query"),
							Limit:   c.Int("limit"),
							Offset:  c.Int("offset"),
						})
					})
				},
			},
			{
				Name:      "get",
				Usage:     "show one order",
				ArgsUsage: "REQUEST_ID",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "store"}},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected REQUEST_ID", 2)
					}
					return run(c, func(ctx context.Context, m *rpc.ClientManager) (interface{}, error) {
						return m.OrderClient().GetOrder(ctx, &rpc.GetOrderRequest{StoreID: c.String("store"), RequestID: c.Args().Get(0)})
					})
				},
			},
			{
				Name:      "status",
				Usage:     "move an order to a new status",
				ArgsUsage: "REQUEST_ID STATUS",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "store"}},
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("expected REQUEST_ID STATUS", 2)
					}
					return run(c, func(ctx context.Context, m *rpc.ClientManager) (interface{}, error) {
						return m.OrderClient().UpdateOrderStatus(ctx, &rpc.UpdateOrderStatusRequest{
							StoreID:   c.String("store"),
							RequestID: c.Args().Get(0),
							Status:    c.Args().Get(1),
						})
					})
				},
			},
		},
	}
}

func storesCommand() *cli.Command {
	bulk := func(name, usage, action string) *cli.Command {
		return &cli.Command{
			Name:      name,
			Usage:     usage,
			ArgsUsage: "STORE_ID...",
			Action: func(c *cli.Context) error {
				if c.NArg() == 0 {
					return cli.Exit("expected at least one STORE_ID", 2)
				}
				return run(c, func(ctx context.Context, m *rpc.ClientManager) (interface{}, error) {
					return m.StoreClient().BulkUpdateStores(ctx, &rpc.BulkUpdateStoresRequest{StoreIDs: c.Args().Slice(), Action: action})
				})
			},
		}
	}

	return &cli.Command{
		Name:  "stores",
		Usage: "inspect stores and apply bulk actions",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list stores",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "status"},
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}},
				}, pageFlags()...),
				Action: func(c *cli.Context) error {
					return run(c, func(ctx context.Context, m *rpc.ClientManager) (interface{}, error) {
						return m.StoreClient().ListStores(ctx, &rpc.ListStoresRequest{
							Status: c.String("status"),
							Query:  c.String("query"),
							Limit:  c.Int("limit"),
							Offset: c.Int("offset"),
						})
					})
				},
			},
			{
				Name:      "get",
				Usage:     "show one store",
				ArgsUsage: "STORE_ID",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected STORE_ID", 2)
					}
					return run(c, func(ctx context.Context, m *rpc.ClientManager) (interface{}, error) {
						return m.StoreClient().GetStore(ctx, &rpc.GetStoreRequest{StoreID: c.Args().Get(0)})
					})
				},
			},
			bulk("pause", "pause stores", "pause"),
			bulk("activate", "activate stores", "activate"),
			{
				Name:      "reset-passcodes",
				Usage:     "issue new passcodes; prints them once",
				ArgsUsage: "STORE_ID...",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return cli.Exit("expected at least one STORE_ID", 2)
					}
					return run(c, func(ctx context.Context, m *rpc.ClientManager) (interface{}, error) {
						return m.StoreClient().BulkResetPasscodes(ctx, &rpc.BulkResetPasscodesRequest{StoreIDs: c.Args().Slice()})
					})
				},
			},
		},
	}
}

func analyticsCommand() *cli.Command {
	return &cli.Command{
		Name:  "analytics",
		Usage: "platform summary, or one store's with --store",
		Flags: []cli.Flag{&cli.StringFlag{Name: "store"}},
		Action: func(c *cli.Context) error {
			return run(c, func(ctx context.Context, m *rpc.ClientManager) (interface{}, error) {
				res, err := m.OrderClient().GetAnalytics(ctx, &rpc.AnalyticsRequest{StoreID: c.String("store")})
				if err != nil {
					return nil, err
				}
				if res.Store != nil {
					return res.Store, nil
				}
				return res.Platform, nil
			})
		},
	}
}

func auditCommand() *cli.Command {
	return &cli.Command{
		Name:      "audit",
		Usage:     "show the newest audit entries of a request id, store id or item (STORE/ITEM) from MongoDB",
		ArgsUsage: "ENTITY_ID",
		Flags:     []cli.Flag{&cli.Int64Flag{Name: "limit", Value: 20}},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected ENTITY_ID", 2)
			}
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			if cfg.MongoDB.URI == "" {
				return cli.Exit("mongodb.uri is not configured", 2)
			}
			repo, err := repository.NewMongoRepository(&cfg.MongoDB)
			if err != nil {
				return fmt.Errorf("failed to connect to MongoDB: %w", err)
			}
			defer repo.Close(context.Background())

			ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()
			logs, err := repo.GetAuditLogs(ctx, c.Args().Get(0), c.Int64("limit"))
			if err != nil {
				return err
			}
			return printJSON(c, logs)
		},
	}
}

// run connects with an admin token minted from the configured secret,
// calls fn and prints its result as JSON.
func run(c *cli.Context, fn func(ctx context.Context, m *rpc.ClientManager) (interface{}, error)) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if c.Bool("verbose") {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	defer logger.Sync()

	token, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).IssueAdmin(cfg.Auth.AdminUsername)
	if err != nil {
		return fmt.Errorf("failed to mint admin token: %w", err)
	}

	var sd *discovery.ServiceDiscovery
	if c.String("addr") == "" && len(cfg.Etcd.Endpoints) > 0 {
		if sd, err = discovery.NewServiceDiscovery(&cfg.Etcd, logger); err != nil {
			logger.Warn("Failed to connect to etcd, using configured address", zap.Error(err))
			sd = nil
		} else {
			defer sd.Close()
		}
	}

	m := rpc.NewClientManager(cfg, logger, sd)
	if err := m.Connect(c.String("addr"), token); err != nil {
		return err
	}
	defer m.Close()

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	out, err := fn(ctx, m)
	if err != nil {
		return err
	}
	return printJSON(c, out)
}

func printJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
