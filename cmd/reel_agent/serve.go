package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/reel-lens/internal/pipeline"
	"github.com/jonathan/reel-lens/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that accepts reel submissions and serves status polls, stored records, intelligence objects, and reconstruction overlays.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT env var or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	c, err := buildComponents(ctx)
	if err != nil {
		return err
	}
	defer c.close()

	runner, err := pipeline.NewRunner(ctx, c.pipeline, c.cfg.WorkerPoolSize, nil)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	port := c.cfg.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	srv := server.New(server.Config{Port: port}, runner, c.registry, c.cache, c.chain, c.reconstructor, nil)
	return srv.Start()
}
