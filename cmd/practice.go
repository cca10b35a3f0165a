package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/analysis"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/report"
	"github.com/spigell/hh-interviewer/internal/store"
)

const (
	PromptOtherRole = "Other"
	endCommand      = "/end"
)

var difficulties = []string{"easy", "medium", "hard"}

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run an interview in the terminal and score it at the end",
	Run: func(cmd *cobra.Command, _ []string) {
		practice(cmd)
	},
}

func init() {
	rootCmd.AddCommand(practiceCmd)

	practiceCmd.Flags().StringP("name", "n", "", "candidate name, asked interactively when empty")
}

func practice(cmd *cobra.Command) {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	logger, err := logger.Quiet(viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	analyzer, err := newAnalyzer(config.Analysis, logger)
	if err != nil {
		logger.Fatal("preparing analyzer", zap.Error(err))
	}
	keywords, err := analysis.LoadKeywords(config.Analysis.KeywordsFile)
	if err != nil {
		logger.Fatal("loading keywords", zap.Error(err))
	}

	generator, _ := newGenerator(ctx, config.AI, logger)
	engine := interview.NewEngine(store.NewMemory(), generator, logger)

	req, err := askSetup(cmd, keywords.RoleNames())
	if err != nil {
		if isPromptExit(err) {
			return
		}
		logger.Fatal("reading interview setup", zap.Error(err))
	}

	fmt.Fprintln(out, report.Notice(fmt.Sprintf("Type %s to finish early.", endCommand)))

	started, err := engine.Start(ctx, req)
	if err != nil {
		logger.Fatal("starting interview", zap.Error(err))
	}
	fmt.Fprintln(out, report.Interviewer(started.Message))

	if err := converse(ctx, out, engine, started.SessionID); err != nil && !isPromptExit(err) {
		logger.Fatal("running interview", zap.Error(err))
	}

	session, err := engine.Session(ctx, started.SessionID)
	if err != nil {
		logger.Fatal("reading session", zap.Error(err))
	}

	result := analyzer.Analyze(analysis.Request{
		Transcript: session.AnalysisTranscript(),
		Difficulty: session.Difficulty,
		Role:       session.Role,
	})
	fmt.Fprintln(out, report.Render(result))
}

func askSetup(cmd *cobra.Command, roles []string) (interview.StartRequest, error) {
	var req interview.StartRequest

	name, _ := cmd.Flags().GetString("name")
	if strings.TrimSpace(name) == "" {
		namePrompt := promptui.Prompt{
			Label: "Your name",
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("name is required")
				}
				return nil
			},
		}
		var err error
		if name, err = namePrompt.Run(); err != nil {
			return req, err
		}
	}
	req.CandidateName = strings.TrimSpace(name)

	rolePrompt := promptui.Select{
		Label: "Role",
		Items: append(roles, PromptOtherRole),
	}
	_, role, err := rolePrompt.Run()
	if err != nil {
		return req, err
	}
	if role == PromptOtherRole {
		custom := promptui.Prompt{Label: "Role title"}
		if role, err = custom.Run(); err != nil {
			return req, err
		}
	}
	req.Role = strings.TrimSpace(role)

	difficultyPrompt := promptui.Select{
		Label:     "Difficulty",
		Items:     difficulties,
		CursorPos: 1,
	}
	if _, req.Difficulty, err = difficultyPrompt.Run(); err != nil {
		return req, err
	}

	return req, nil
}

func converse(ctx context.Context, out io.Writer, engine *interview.Engine, id string) error {
	for {
		answer := promptui.Prompt{Label: "You"}
		input, err := answer.Run()
		if err != nil {
			if isPromptExit(err) {
				_, endErr := engine.End(ctx, id)
				return endErr
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == endCommand {
			res, err := engine.End(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, report.Notice(res.Message))
			return nil
		}

		res, err := engine.Respond(ctx, id, input)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, report.Interviewer(res.Message))

		if res.Final {
			if res.ClosingMessage != "" {
				fmt.Fprintln(out, report.Interviewer(res.ClosingMessage))
			}
			if res.Summary != "" {
				fmt.Fprintln(out, report.Summary(res.Summary))
			}
			return nil
		}
	}
}

func isPromptExit(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort)
}
