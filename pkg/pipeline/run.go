// Package pipeline runs the differential expression and survival stages end
// to end and writes their outputs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"OmicsExplore/pkg/clinical"
	"OmicsExplore/pkg/dge"
	"OmicsExplore/pkg/matrix"
	"OmicsExplore/pkg/notify"
	"OmicsExplore/pkg/report"
	"OmicsExplore/pkg/survival"
)

const (
	DGEFile            = "dge_results.tsv"
	SurvivalDataFile   = "survival_data.tsv"
	SummaryFile        = "summary.txt"
	significanceAlpha  = 0.05
	summaryTopGenes    = 10
	survivalGroupsName = "_surv_groups.tsv"
)

// MissingInputFileError reports an input file that does not exist.
type MissingInputFileError struct {
	Path string
}

func (e *MissingInputFileError) Error() string {
	return fmt.Sprintf("input file not found: %s", e.Path)
}

// Summary collects the headline numbers of a run.
type Summary struct {
	Genes   int
	Samples int

	MatchedTumor  int
	MatchedNormal int
	Tested        int
	Dropped       int
	Significant   int
	TopGenes      []dge.Record

	SurvivalPatients int
	Deaths           int
	SurvGene         string
	Median           float64
	High             int
	Low              int
	Unassigned       int
	LogRankP         float64

	Outputs []string
}

// CheckInputs reports the first of paths that does not exist.
func CheckInputs(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return &MissingInputFileError{Path: p}
			}
			return err
		}
	}
	return nil
}

// Run executes every stage. Any stage error aborts the run; the webhook, when
// configured, is told either way and its own failures are only logged.
func Run(ctx context.Context, cfg *Config, logger *slog.Logger) (*Summary, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var sender = notify.NewSender(cfg.Webhook, logger)

	var summary, err = run(cfg, logger)
	if err != nil {
		if e := sender.SendText(ctx, fmt.Sprintf("OmicsExplore failed: %v", err)); e != nil {
			logger.Warn("notification failed", "error", e)
		}
		return nil, err
	}
	if e := sender.SendMarkdown(ctx, summary.Markdown()); e != nil {
		logger.Warn("notification failed", "error", e)
	}
	return summary, nil
}

func run(cfg *Config, logger *slog.Logger) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := CheckInputs(cfg.ExpressionPath, cfg.ClinicalPath); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	logger.Info("Loading Data")
	var m, err = matrix.Read(cfg.ExpressionPath)
	if err != nil {
		return nil, fmt.Errorf("load expression matrix: %w", err)
	}
	var summary = &Summary{SurvGene: cfg.SurvGene}
	summary.Genes, summary.Samples = m.Dims()
	logger.Info("loaded expression matrix", "path", cfg.ExpressionPath, "genes", summary.Genes, "samples", summary.Samples, "missing", m.Missing())

	var keyColumn = cfg.Clinical.Key
	if keyColumn == "" {
		keyColumn = clinical.DefaultKeyColumn
	}
	ct, err := clinical.Read(cfg.ClinicalPath, keyColumn, logger)
	if err != nil {
		return nil, fmt.Errorf("load clinical table: %w", err)
	}

	logger.Info("Running Step 1: DGE and Heatmap")
	if err := dgeStage(cfg, m, summary, logger); err != nil {
		return nil, err
	}

	logger.Info("Running Step 2: Survival Analysis")
	if err := survivalStage(cfg, m, ct, summary, logger); err != nil {
		return nil, err
	}

	var path = cfg.Path(SummaryFile)
	summary.Outputs = append(summary.Outputs, path)
	if err := writeTo(path, summary.Write); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}
	logger.Info("Summary", "genes", summary.Genes, "matched", summary.MatchedTumor, "significant", summary.Significant, "logrank_p", summary.LogRankP)
	return summary, nil
}

func dgeStage(cfg *Config, m *matrix.Matrix, summary *Summary, logger *slog.Logger) error {
	var result, err = dge.PerformDGE(m, logger)
	if err != nil {
		return fmt.Errorf("differential expression: %w", err)
	}
	summary.MatchedTumor = len(result.MatchedTumor)
	summary.MatchedNormal = len(result.MatchedNormal)
	summary.Tested = len(result.Records)
	summary.Dropped = result.Dropped
	summary.Significant = result.Significant(significanceAlpha)
	summary.TopGenes = result.Top(summaryTopGenes)

	logger.Info("Generating heat map", "genes", cfg.TopN)
	heatmap, err := report.WriteHeatmap(m, result, cfg.TopN, cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("heatmap: %w", err)
	}
	logger.Info("Interactive heatmap saved", "path", heatmap)
	summary.Outputs = append(summary.Outputs, heatmap)

	var tsv = cfg.Path(DGEFile)
	if err := result.SaveTSV(tsv); err != nil {
		return fmt.Errorf("write differential expression table: %w", err)
	}
	summary.Outputs = append(summary.Outputs, tsv)

	if cfg.Workbook {
		var xlsx = cfg.Path(report.DGEWorkbookFile)
		if err := report.WriteDGEWorkbook(result, xlsx); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		summary.Outputs = append(summary.Outputs, xlsx)
	}
	return nil
}

func survivalStage(cfg *Config, m *matrix.Matrix, ct *clinical.Table, summary *Summary, logger *slog.Logger) error {
	var opts = cfg.SurvivalOptions()
	opts.Logger = logger
	var table, err = survival.PrepareSurvivalData(m, ct, opts)
	if err != nil {
		return fmt.Errorf("prepare survival data: %w", err)
	}
	summary.SurvivalPatients = table.Len()
	summary.Deaths = table.Deaths()

	logger.Info("Plotting survival curve", "gene", cfg.SurvGene)
	sp, err := report.WriteSurvivalCurve(table, cfg.OutputDir, cfg.SurvGene)
	if err != nil {
		return fmt.Errorf("survival curve: %w", err)
	}
	logger.Info("Survival curve saved", "path", sp.Path)
	summary.Median = sp.Median
	summary.High = sp.Strata.Count(survival.High)
	summary.Low = sp.Strata.Count(survival.Low)
	summary.Unassigned = sp.Strata.Count(survival.Unassigned)
	summary.LogRankP = sp.LogRank.P
	summary.Outputs = append(summary.Outputs, sp.Path)

	var groups = cfg.Path(cfg.SurvGene + survivalGroupsName)
	if err := writeTo(groups, func(w io.Writer) error { return report.WriteSurvivalGroups(sp, w) }); err != nil {
		return fmt.Errorf("write survival groups: %w", err)
	}
	var data = cfg.Path(SurvivalDataFile)
	if err := writeTo(data, func(w io.Writer) error { return table.WriteTSV(w, cfg.SurvGene) }); err != nil {
		return fmt.Errorf("write survival data: %w", err)
	}
	summary.Outputs = append(summary.Outputs, groups, data)
	return nil
}

func writeTo(path string, write func(io.Writer) error) error {
	var f, err = os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write renders the summary as a tab-separated key/value report followed by
// the top genes.
func (s *Summary) Write(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "genes\t%d\n", s.Genes)
	fmt.Fprintf(&b, "samples\t%d\n", s.Samples)
	fmt.Fprintf(&b, "matched_tumor\t%d\n", s.MatchedTumor)
	fmt.Fprintf(&b, "matched_normal\t%d\n", s.MatchedNormal)
	fmt.Fprintf(&b, "tested_genes\t%d\n", s.Tested)
	fmt.Fprintf(&b, "dropped_genes\t%d\n", s.Dropped)
	fmt.Fprintf(&b, "significant_fdr_%g\t%d\n", significanceAlpha, s.Significant)
	fmt.Fprintf(&b, "survival_patients\t%d\n", s.SurvivalPatients)
	fmt.Fprintf(&b, "deaths\t%d\n", s.Deaths)
	fmt.Fprintf(&b, "survival_gene\t%s\n", s.SurvGene)
	fmt.Fprintf(&b, "median_expression\t%g\n", s.Median)
	fmt.Fprintf(&b, "high_low\t%d/%d\n", s.High, s.Low)
	fmt.Fprintf(&b, "unassigned\t%d\n", s.Unassigned)
	fmt.Fprintf(&b, "logrank_p\t%.3g\n", s.LogRankP)

	b.WriteString("\ngene\tlog2fc\tp_value\tfdr\n")
	for _, rec := range s.TopGenes {
		fmt.Fprintf(&b, "%s\t%.4f\t%.3g\t%.3g\n", rec.Gene, rec.Log2FC, rec.PValue, rec.FDR)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Markdown renders the summary for the webhook.
func (s *Summary) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**OmicsExplore finished**\n")
	fmt.Fprintf(&b, "> matched pairs: %d tumor / %d normal\n", s.MatchedTumor, s.MatchedNormal)
	fmt.Fprintf(&b, "> genes tested: %d, FDR<=%g: %d\n", s.Tested, significanceAlpha, s.Significant)
	fmt.Fprintf(&b, "> %s survival: %d patients, log-rank p=%.3g\n", s.SurvGene, s.SurvivalPatients, s.LogRankP)
	return b.String()
}
