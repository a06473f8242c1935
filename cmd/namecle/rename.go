// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/namecle/internal/batch"
	"github.com/pdiddy/namecle/internal/extract"
	"github.com/pdiddy/namecle/internal/history"
	"github.com/pdiddy/namecle/internal/httputil"
	"github.com/pdiddy/namecle/internal/lookup"
	"github.com/pdiddy/namecle/internal/output"
	"github.com/pdiddy/namecle/internal/reconcile"
	"github.com/pdiddy/namecle/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "namecle/0.1"
	defaultMaxLength = 255
	defaultHistoryDB = "namecle-history.db"
)

var renameCmd = &cobra.Command{
	Use:   "rename [files or directories...]",
	Short: "Rename paper PDFs from reconciled bibliographic metadata",
	Long: `Rename extracts each paper's title, authors, and DOI, cross-references
them against Semantic Scholar and CrossRef, and renames the file to
"[year] [grade] [title] [authors].pdf". Directory arguments expand to the
PDF files directly inside them.

Files are processed one at a time. Ctrl-C finishes the file in flight and
stops before the next one.`,
	RunE: runRename,
}

func init() {
	renameCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	renameCmd.Flags().Duration("delay", 0, "minimum spacing between API requests (default 1s)")
	renameCmd.Flags().Bool("llm", false, "extract metadata with an LLM instead of font heuristics")
	renameCmd.Flags().Bool("manual", false, "prompt to confirm or replace the title for each file whose DOI does not resolve")
	renameCmd.Flags().Bool("dry-run", false, "report what would be renamed without touching files")
	renameCmd.Flags().Bool("write-metadata", false, "write a YAML metadata sidecar next to each renamed file")
	renameCmd.Flags().Int("max-length", defaultMaxLength, "filename length budget including the .pdf suffix")
	renameCmd.Flags().String("history-db", defaultHistoryDB, "SQLite run-history database")
	renameCmd.Flags().Bool("no-history", false, "skip recording outcomes to the history database")

	rootCmd.AddCommand(renameCmd)
}

func runRename(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more PDF files or directories")
	}

	files, err := expandArgs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no PDF files found in the given arguments")
	}

	cfg := pipelineConfig(cmd)

	ctrl, closeHistory, err := buildController(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	collector := &outcomeCollector{}
	ctrl.Events = collector

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		ctrl.Abort()
	}()

	sum := ctrl.Run(context.Background(), files)

	fmt.Fprintln(os.Stdout)
	output.WriteResults(os.Stdout, collector.outcomes, sum)

	if sum.HasFailures() {
		return fmt.Errorf("%d file(s) failed", sum.Failed)
	}
	return nil
}

// pipelineConfig assembles the pipeline configuration from flags, the config
// file, and loaded secrets.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	maxLen, _ := cmd.Flags().GetInt("max-length")
	if maxLen == 0 {
		maxLen = defaultMaxLength
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	writeMeta, _ := cmd.Flags().GetBool("write-metadata")

	viper.SetDefault("scan.preview_pages", 5)
	viper.SetDefault("scan.title_font_size_threshold", 15.0)
	viper.SetDefault("scan.min_title_length", 5)
	viper.SetDefault("scan.max_authors", 5)
	viper.SetDefault("ai.endpoint", "http://127.0.0.1:8080/v1/chat/completions")
	viper.SetDefault("ai.max_input_chars", 2500)

	return types.PipelineConfig{
		Scan: types.ScanConfig{
			PreviewPages:           viper.GetInt("scan.preview_pages"),
			TitleFontSizeThreshold: viper.GetFloat64("scan.title_font_size_threshold"),
			MinTitleLength:         viper.GetInt("scan.min_title_length"),
			MaxAuthors:             viper.GetInt("scan.max_authors"),
		},
		Lookup: types.LookupConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: defaultUserAgent,
			},
			SemanticScholarAPIKey: secretDefault("semantic-scholar-api-key", viper.GetString("lookup.semantic_scholar_api_key")),
			CrossRefMailto:        secretDefault("crossref-mailto", viper.GetString("lookup.crossref_mailto")),
			PolitenessDelay:       delay,
		},
		AI: types.AIConfig{
			Endpoint:      viper.GetString("ai.endpoint"),
			Model:         viper.GetString("ai.model"),
			APIKey:        secretDefault("llm-api-key", viper.GetString("ai.api_key")),
			MaxInputChars: viper.GetInt("ai.max_input_chars"),
		},
		Rename: types.RenameConfig{
			MaxFilenameLength:        maxLen,
			TitleSimilarityThreshold: 0.75,
			Grades:                   types.DefaultGradeThresholds(),
			DryRun:                   dryRun,
			WriteMetadata:            writeMeta,
		},
		History: types.HistoryConfig{
			DBPath: historyPath(cmd),
		},
	}
}

// historyPath resolves the history database location; "" disables history.
func historyPath(cmd *cobra.Command) string {
	if noHist, _ := cmd.Flags().GetBool("no-history"); noHist {
		return ""
	}
	dbPath, _ := cmd.Flags().GetString("history-db")
	return dbPath
}

// buildController wires the pipeline components for a run. The returned
// closer releases the history store; it is a no-op when history is disabled.
func buildController(cmd *cobra.Command, cfg types.PipelineConfig) (*batch.Controller, func(), error) {
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
	if manual, _ := cmd.Flags().GetBool("manual"); manual {
		ctrl.Manual = stdinManual{}
	}

	closeHistory := func() {}
	if cfg.History.DBPath != "" {
		store, err := history.Open(cfg.History.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening history database: %w", err)
		}
		ctrl.History = store
		closeHistory = func() { store.Close() }
	}
	return ctrl, closeHistory, nil
}

// expandArgs resolves file and directory arguments to a deduplicated,
// ordered list of PDF paths. Directories expand non-recursively.
func expandArgs(args []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		key := filepath.Clean(path)
		if !seen[key] {
			seen[key] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading argument %q: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.pdf"))
		if err != nil {
			return nil, fmt.Errorf("listing %q: %w", arg, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return files, nil
}

// stdinManual prompts on stderr and reads one line from stdin. A blank line
// cancels the file.
type stdinManual struct{}

func (stdinManual) Request(ctx context.Context, file, defaultTitle string) (string, bool, error) {
	fmt.Fprintf(os.Stderr, "No usable title for %s.\n", file)
	if defaultTitle != "" {
		fmt.Fprintf(os.Stderr, "Best guess: %s\n", defaultTitle)
	}
	fmt.Fprint(os.Stderr, "Enter title (blank to skip): ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", false, fmt.Errorf("reading manual input: %w", err)
	}
	text := strings.TrimSpace(line)
	if text == "" {
		return "", false, nil
	}
	return text, true, nil
}

// outcomeCollector buffers outcomes for the results table. Progress already
// reaches stderr through the controller log.
type outcomeCollector struct {
	outcomes []types.RenameOutcome
}

func (c *outcomeCollector) Progress(current, total int) {}

func (c *outcomeCollector) Outcome(o types.RenameOutcome) {
	c.outcomes = append(c.outcomes, o)
}
