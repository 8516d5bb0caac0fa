package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"quill/internal/config"
	"quill/internal/server"
	"quill/internal/store"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var (
		host  string
		port  int
		debug bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the blog web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("debug") {
				cfg.Server.Debug = debug
			}

			addr, err := server.ListenAddr(cfg.Server.Host, cfg.Server.Port)
			if err != nil {
				return err
			}

			logger := slog.Default().With("component", "server")
			return withStore(cfg, func(st *store.Store) error {
				logger.Info("opening database", "path", st.Path())
				srv, err := server.New(addr, st, server.Options{
					SiteName: cfg.Server.SiteName,
					Debug:    cfg.Server.Debug,
				}, logger)
				if err != nil {
					return err
				}

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				fmt.Fprintf(cmd.ErrOrStderr(), "serving %s on http://%s\n", cfg.Server.SiteName, addr)
				return srv.ListenAndServe(ctx)
			})
		},
	}

	cmd.Flags().StringVar(&host, "host", config.DefaultHost, "listen host")
	cmd.Flags().IntVar(&port, "port", config.DefaultPort, "listen port")
	cmd.Flags().BoolVar(&debug, "debug", false, "show internal error details")
	return cmd
}
