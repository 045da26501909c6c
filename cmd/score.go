package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leadforge/leadscore-cli/internal/model"
	"github.com/leadforge/leadscore-cli/internal/scoring"
	"github.com/leadforge/leadscore-cli/internal/store"
	"github.com/leadforge/leadscore-cli/pkg/notion"
)

var (
	scoreRequirementsPath string
	scoreCompaniesPath    string
	scoreTopN             int
	scoreOutputPath       string
	scoreFormat           string
	scoreSave             bool
	scorePushNotion       bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score and rank companies against a requirement document",
	Long:  "Loads a buyer requirement JSON and an enriched company list, scores every company, and emits the ranked results.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := scoring.ValidateConfig(cfg.Scorer); err != nil {
			return err
		}

		req, err := model.LoadRequirement(scoreRequirementsPath)
		if err != nil {
			return err
		}
		companies, err := model.LoadCompanies(scoreCompaniesPath)
		if err != nil {
			return err
		}

		topN := scoreTopN
		if topN == 0 {
			topN = cfg.Scorer.TopN
		}

		engine := newSimilarityEngine()
		scorer := scoring.New(*req, engine, cfg.Scorer, zap.L())
		scorer.Prime(ctx)

		results, err := scorer.Rank(ctx, companies, topN)
		if err != nil {
			return err
		}

		out := os.Stdout
		if scoreOutputPath != "" && scoreFormat != "xlsx" {
			f, err := os.Create(scoreOutputPath)
			if err != nil {
				return eris.Wrapf(err, "score: create output file %s", scoreOutputPath)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		switch scoreFormat {
		case "json":
			err = writeJSON(out, results)
		case "table":
			err = writeTable(out, results)
		case "csv":
			err = writeCSV(out, results)
		case "xlsx":
			if scoreOutputPath == "" {
				return eris.New("score: xlsx format requires --output")
			}
			err = writeXLSX(scoreOutputPath, results)
		default:
			return eris.Errorf("score: unknown format %q", scoreFormat)
		}
		if err != nil {
			return err
		}

		if scoreSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			run := store.NewRun(*req, store.ConfigHash(cfg.Scorer), len(results))
			if err := st.SaveRun(ctx, run, results); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Saved run %s\n", run.ID)
		}

		if scorePushNotion {
			if cfg.Notion.Token == "" || cfg.Notion.LeadDB == "" {
				return eris.New("score: notion token and lead_db must be configured for --push-notion")
			}
			client := notion.NewClient(cfg.Notion.Token)
			pushed, err := notion.PushScores(ctx, client, cfg.Notion.LeadDB, results)
			if err != nil {
				return err
			}
			zap.L().Info("pushed leads to notion", zap.Int("count", pushed))
		}

		return nil
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreRequirementsPath, "requirements", "", "path to requirement JSON (required)")
	scoreCmd.Flags().StringVar(&scoreCompaniesPath, "companies", "", "path to companies JSON array (required)")
	scoreCmd.Flags().IntVar(&scoreTopN, "top", 0, "return only the top N leads (default from config)")
	scoreCmd.Flags().StringVar(&scoreOutputPath, "output", "", "write results to a file instead of stdout")
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "json", "output format: json, table, csv, or xlsx")
	scoreCmd.Flags().BoolVar(&scoreSave, "save", false, "persist the run to the configured store")
	scoreCmd.Flags().BoolVar(&scorePushNotion, "push-notion", false, "push ranked leads to the Notion CRM database")
	_ = scoreCmd.MarkFlagRequired("requirements")
	_ = scoreCmd.MarkFlagRequired("companies")
	rootCmd.AddCommand(scoreCmd)
}
