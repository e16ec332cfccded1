package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"OmicsExplore/pkg/pipeline"
)

// options holds the command line; zero values leave the config untouched.
type options struct {
	config    string
	outputDir string
	survGene  string
	expr      string
	clinical  string
	topN      int
	xlsx      bool
	webhook   string
	verbose   bool
}

func newRootCommand(stderr io.Writer) *cobra.Command {
	var opts = &options{}

	var cmd = &cobra.Command{
		Use:   "omicsExplore",
		Short: "Tumor vs. matched normal differential expression and survival analysis",
		Long: "omicsExplore finds genes differentially expressed between primary tumors and\n" +
			"matched normal tissue, renders an interactive heatmap of the top genes, and\n" +
			"plots Kaplan-Meier survival curves split at the median expression of one gene.",
		Version:       buildInfo(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var logger = newLogger(stderr, opts.verbose)
			var cfg, err = opts.load(cmd)
			if err != nil {
				return err
			}
			summary, err := pipeline.Run(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			for _, path := range summary.Outputs {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	var flags = cmd.Flags()
	flags.StringVar(&opts.outputDir, "outputdir", "", "Output path to heatmap and survival curve")
	flags.StringVar(&opts.survGene, "survgene", "", "Gene for which differential survival plots need to be generated")
	flags.StringVarP(&opts.config, "config", "c", "", "YAML config overlaid on the built-in defaults")
	flags.StringVar(&opts.expr, "expr", "", "expression matrix, genes x samples (.tsv or .tsv.gz)")
	flags.StringVar(&opts.clinical, "clinical", "", "clinical table keyed by patient")
	flags.IntVar(&opts.topN, "topn", 0, "genes in the heatmap")
	flags.BoolVar(&opts.xlsx, "xlsx", false, "also write dge_results.xlsx")
	flags.StringVar(&opts.webhook, "webhook", "", "chat webhook URL notified when the run ends")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	_ = cmd.MarkFlagRequired("outputdir")
	_ = cmd.MarkFlagRequired("survgene")

	return cmd
}

// load overlays changed flags on the config file on the built-in defaults.
func (o *options) load(cmd *cobra.Command) (*pipeline.Config, error) {
	var cfg, err = pipeline.LoadConfig(o.config)
	if err != nil {
		return nil, err
	}
	var flags = cmd.Flags()
	cfg.OutputDir = o.outputDir
	cfg.SurvGene = o.survGene
	if flags.Changed("expr") {
		cfg.ExpressionPath = o.expr
	}
	if flags.Changed("clinical") {
		cfg.ClinicalPath = o.clinical
	}
	if flags.Changed("topn") {
		cfg.TopN = o.topN
	}
	if flags.Changed("xlsx") {
		cfg.Workbook = o.xlsx
	}
	if flags.Changed("webhook") {
		cfg.Webhook = o.webhook
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	var level = slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func buildInfo() string {
	var info, ok = debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	var version, commit, modified = info.Main.Version, "", ""
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				modified = " (modified)"
			}
		}
	}
	if commit == "" {
		return fmt.Sprintf("%s %s", version, info.GoVersion)
	}
	return fmt.Sprintf("%s %s commit %s%s", version, info.GoVersion, commit, modified)
}

func main() {
	var cmd = newRootCommand(os.Stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("omicsExplore failed", "error", err)
		os.Exit(1)
	}
}
