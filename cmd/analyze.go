package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/analysis"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a transcript file and print the preparedness report",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("file", "f", "", "transcript file: an /analyze request body or a bare message array")
	analyzeCmd.Flags().StringP("role", "r", "", "role to score keywords for, overrides the file")
	analyzeCmd.Flags().String("difficulty", "", "interview difficulty, overrides the file")
	analyzeCmd.Flags().Bool("raw", false, "print the report as JSON")
	analyzeCmd.MarkFlagRequired("file")
}

func analyze(cmd *cobra.Command) {
	logger, err := logger.Quiet(viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	path, _ := cmd.Flags().GetString("file")
	req, err := readTranscript(path)
	if err != nil {
		logger.Fatal("reading transcript", zap.Error(err))
	}
	if role, _ := cmd.Flags().GetString("role"); role != "" {
		req.Role = role
	}
	if difficulty, _ := cmd.Flags().GetString("difficulty"); difficulty != "" {
		req.Difficulty = difficulty
	}

	analyzer, err := newAnalyzer(config.Analysis, logger)
	if err != nil {
		logger.Fatal("preparing analyzer", zap.Error(err))
	}

	result := analyzer.Analyze(req)

	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		pretty, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
		return
	}

	fmt.Fprintln(cmd.OutOrStdout(), report.Render(result))
}

// readTranscript accepts either {"transcript": [...], "role": ...} or a bare message array.
func readTranscript(path string) (analysis.Request, error) {
	var req analysis.Request

	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("read file: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return req, errors.New("transcript file is empty")
	}

	if data[0] == '[' {
		err = json.Unmarshal(data, &req.Transcript)
	} else {
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		return req, fmt.Errorf("decode transcript: %w", err)
	}

	return req, nil
}
