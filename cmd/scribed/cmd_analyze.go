package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scribed/internal/analyzer"
)

var analyzeOffline bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Analyze a single transcript and print the record",
	Long: `Analyze reads one transcript file, runs it through the analysis
pipeline, and prints the resulting record as JSON. The input queue is
not involved. With --offline the heuristic summarizer is used instead
of the Gemini API.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read transcript: %w", err)
		}
		transcript := strings.ToValidUTF8(string(data), "�")

		rec, err := func() (any, error) {
			if analyzeOffline {
				return analyzer.OfflineSummarize(transcript), nil
			}

			gemini := analyzer.NewGeminiClient(analyzer.GeminiConfig{
				APIKey:  cfg.LLM.APIKey,
				BaseURL: cfg.LLM.BaseURL,
				Model:   cfg.LLM.Model,
				Timeout: cfg.GetLLMTimeout(),
			}, logger)

			record, err := analyzer.New(gemini, logger).Analyze(cmd.Context(), transcript)
			if err != nil {
				logger.Warn("analysis failed, using offline fallback", zap.Error(err))
				return analyzer.OfflineSummarize(transcript), nil
			}
			return record, nil
		}()
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeOffline, "offline", false, "use the heuristic summarizer, no API call")
}
