// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/namecle/internal/batch"
	"github.com/pdiddy/namecle/internal/extract"
	"github.com/pdiddy/namecle/internal/httputil"
	"github.com/pdiddy/namecle/internal/lookup"
	"github.com/pdiddy/namecle/internal/output"
	"github.com/pdiddy/namecle/internal/reconcile"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Preview reconciled metadata for one PDF without renaming it",
	Long: `Inspect runs the full extraction and lookup pipeline for a single
file and prints the reconciled metadata and the filename it would produce.
The file itself is never touched.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	inspectCmd.Flags().Duration("delay", 0, "minimum spacing between API requests (default 1s)")
	inspectCmd.Flags().Bool("llm", false, "extract metadata with an LLM instead of font heuristics")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)
	cfg.Rename.DryRun = true
	cfg.Rename.WriteMetadata = false

	client := httputil.NewClient(cfg.Lookup.Timeout, cfg.Lookup.PolitenessDelay)
	chain := &lookup.Chain{
		Backends: []lookup.Backend{
			&lookup.SemanticScholarBackend{
				Client: client,
				APIKey: cfg.Lookup.SemanticScholarAPIKey,
				Agent:  cfg.Lookup.UserAgent,
			},
			&lookup.CrossRefBackend{
				Client: client,
				Agent:  cfg.Lookup.UserAgent,
				Mailto: cfg.Lookup.CrossRefMailto,
			},
		},
		Log: os.Stderr,
	}

	ctrl := &batch.Controller{
		Scan: batch.FileScanner{},
		Engine: &reconcile.Engine{
			Lookup:              chain,
			SimilarityThreshold: cfg.Rename.TitleSimilarityThreshold,
			Grades:              cfg.Rename.Grades,
			Log:                 os.Stderr,
		},
		Log: os.Stderr,
		Cfg: cfg,
	}
	if useLLM, _ := cmd.Flags().GetBool("llm"); useLLM {
		ctrl.AI = extract.NewChatBackend(cfg.AI, cfg.Lookup.Timeout)
	}

	collector := &outcomeCollector{}
	ctrl.Events = collector

	ctrl.Run(context.Background(), args)

	if len(collector.outcomes) == 0 {
		return fmt.Errorf("no outcome produced for %s", args[0])
	}
	o := collector.outcomes[0]
	if o.Record == nil {
		return fmt.Errorf("no metadata: %s (%s)", o.Err, o.Detail)
	}

	fmt.Fprintln(os.Stdout)
	output.WriteRecord(os.Stdout, args[0], *o.Record, o.NewName)
	return nil
}
