package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/reel-lens/internal/tasks"
)

var (
	extractKeepMedia bool
	extractJSON      bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <source>",
	Short: "Run one extraction synchronously and print the record",
	Long:  `Download, segment, and extract a single video URL or local file, waiting for completion instead of serving the job over HTTP.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractKeepMedia, "keep-media", false, "Keep downloaded media and keyframes in the temp dir")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "Print the full stored document as JSON")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(_ *cobra.Command, args []string) error {
	source := args[0]
	ctx := context.Background()

	c, err := buildComponents(ctx)
	if err != nil {
		return err
	}
	defer c.close()
	c.pipeline.KeepMedia = extractKeepMedia

	taskID, err := c.registry.Submit(source)
	if err != nil {
		return err
	}

	start := time.Now()
	c.pipeline.Run(ctx, taskID, source)

	job, err := c.registry.Get(taskID)
	if err != nil {
		return err
	}
	if job.Status == tasks.StatusFailed {
		return fmt.Errorf("extraction failed: %s", job.Error)
	}

	doc, err := c.cache.Get(ctx, job.ResultRef.String())
	if err != nil {
		return err
	}

	if extractJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	fmt.Printf("Extraction completed in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Document ID:  %s\n", doc.ID)
	fmt.Printf("  Correlation:  %s\n", doc.CorrelationID)
	fmt.Printf("  Category:     %s\n", doc.Record.Category)
	fmt.Printf("  Title:        %s\n", doc.Record.Title)
	fmt.Printf("  Confidence:   %.2f\n", doc.Record.ConfidenceScore)
	fmt.Printf("  Keyframes:    %d\n", len(doc.Keyframes))
	return nil
}
