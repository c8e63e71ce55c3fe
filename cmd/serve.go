package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mock-swap/pkg/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the swap form over HTTP and websocket",
	Long: `Run an HTTP API around one swap session. Every change to the form is
pushed to websocket clients on /ws; Prometheus metrics are on /metrics.

Examples:
  mock-swap serve
  mock-swap serve --addr 127.0.0.1:9000 --delay 3s`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from server.addr)")
	addSwapFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	a := mustApp(cmd)

	addr := a.cfg.ServerAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	color.Green("Serving swap session on %s", addr)
	srv := server.New(a.store, a.quotes, a.metrics, a.logger)
	if err := srv.Run(ctx, addr); err != nil {
		printError(err)
		os.Exit(1)
	}
	printSuccess("Server stopped.")
}
