package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/company-matcher/internal/assessment"
	"github.com/spigell/company-matcher/internal/catalog"
	"github.com/spigell/company-matcher/internal/session"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank companies for answers read from a file",
	Run: func(cmd *cobra.Command, _ []string) {
		answersFile, _ := cmd.Flags().GetString("answers")
		output, _ := cmd.Flags().GetString("output")
		match(answersFile, output)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("answers", "a", "", "file mapping question ids to option ids (yaml or json)")
	matchCmd.Flags().StringP("output", "o", "", "write the report to this file instead of a temporary one")

	matchCmd.MarkFlagRequired("answers")
}

func match(answersFile, output string) {
	ctx := context.Background()

	a := newApplication(ctx)
	defer a.finish()

	questions, companies, err := a.loadCatalog()
	if err != nil {
		a.logger.Fatal("loading catalog", zap.Error(err))
	}

	answers, err := a.loader.LoadAnswers(answersFile)
	if err != nil {
		a.logger.Fatal("loading answers", zap.Error(err))
	}

	s, err := a.newSession(questions, companies)
	if err != nil {
		a.logger.Fatal("starting a session", zap.Error(err))
	}

	if err := answerAll(s, answers); err != nil {
		a.logger.Fatal("answering the questionnaire", zap.Error(err), zap.String("file", answersFile))
	}

	m, err := s.Match()
	if err != nil {
		a.logger.Fatal("matching companies", zap.Error(err))
	}

	_, r, err := a.present(ctx, s, m)
	if err != nil {
		a.logger.Fatal("presenting matches", zap.Error(err))
	}

	a.logger.Info("strongest preferences", zap.Strings("categories", r.TopCategories(3)))
	a.logMatches(r)

	if output == "" {
		output, err = r.DumpToTmpFile()
	} else {
		err = r.ToFile(output)
	}
	if err != nil {
		a.logger.Fatal("writing report", zap.Error(err))
	}

	a.logger.Info("report written", zap.String("filename", output), zap.Int("matches", len(r.Matches)))
}

// answerAll submits the recorded answers in questionnaire order.
func answerAll(s *session.Session, answers catalog.Answers) error {
	for !s.Assessment.IsComplete() {
		q, err := s.Assessment.CurrentQuestion()
		if err != nil {
			return err
		}

		optionID, ok := answers[q.ID]
		if !ok {
			return fmt.Errorf("no answer for question %q: %w", q.ID, assessment.ErrInvalidAnswer)
		}

		if err := s.Answer(optionID); err != nil {
			return err
		}
	}

	return nil
}
