package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/company-matcher/internal/logger"
	"github.com/spigell/company-matcher/internal/matching"
	"github.com/spigell/company-matcher/internal/report"
	"github.com/spigell/company-matcher/internal/session"
)

const (
	PromptShowMatches         = "Show matches"
	PromptReportByIndustry    = "Report by industry"
	PromptBrowse              = "Browse companies"
	PromptReportToFile        = "Dump report to file"
	PromptAppendToExcludeFile = "Append all shown companies to exclude file"
	PromptRestart             = "Restart questionnaire"
	PromptExit                = "Exit"
	PromptBack                = "back"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Answer the questionnaire interactively and browse matching companies",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	rootCmd.PersistentFlags().StringP("exclude-file", "e", "", "special file with companies to exclude. Default is unset.")
	rootCmd.PersistentFlags().IntP("top", "t", 0, "show only the given number of best matches (0 shows all)")

	viper.BindPFlag("exclude-file", rootCmd.PersistentFlags().Lookup("exclude-file"))
	viper.BindPFlag("results.top", rootCmd.PersistentFlags().Lookup("top"))
}

func run() {
	ctx := context.Background()

	a := newApplication(ctx)
	defer a.finish()

	questions, companies, err := a.loadCatalog()
	if err != nil {
		a.logger.Fatal("loading catalog", zap.Error(err))
	}

	s, err := a.newSession(questions, companies)
	if err != nil {
		a.logger.Fatal("starting a session", zap.Error(err))
	}

	for {
		err := interactive(ctx, a, s)
		if err == nil {
			s.Restart()
			a.logger.Info("restarting the questionnaire", zap.String("session", s.ID))
			continue
		}
		if errors.Is(err, errExit) {
			a.logger.Info("exiting", zap.String("reason", "exit requested"))
			return
		}
		a.logger.Fatal("exiting", zap.Error(err))
	}
}

// interactive runs one questionnaire and the action menu. It returns nil when
// a restart is requested.
func interactive(ctx context.Context, a *application, s *session.Session) error {
	if err := askQuestions(a, s); err != nil {
		return err
	}

	match, err := s.Match()
	if err != nil {
		return err
	}

	results, r, err := a.present(ctx, s, match)
	if err != nil {
		return err
	}

	a.logger.Info("strongest preferences", zap.Strings("categories", r.TopCategories(3)))

	if results.Len() == 0 {
		a.logger.Info("no companies left after filters")
	} else {
		a.logMatches(r)
	}

	menu := promptui.Select{
		Label: "What next?",
		Items: []string{PromptShowMatches, PromptReportByIndustry, PromptBrowse, PromptReportToFile, PromptAppendToExcludeFile, PromptRestart, PromptExit},
	}

	for {
		_, action, err := menu.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) {
				return errExit
			}
			return err
		}

		if action == PromptRestart {
			return nil
		}

		if err := handleAction(action, a, results, r); err != nil {
			return err
		}
	}
}

func askQuestions(a *application, s *session.Session) error {
	for !s.Assessment.IsComplete() {
		q, err := s.Assessment.CurrentQuestion()
		if err != nil {
			return err
		}

		selector := promptui.Select{
			Label: fmt.Sprintf("[%d/%d] %s", s.Assessment.Index()+1, s.Assessment.Total(), q.Prompt),
			Items: q.OptionTexts(),
			Size:  len(q.Options),
		}

		idx, _, err := selector.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) {
				return errExit
			}
			return err
		}

		if err := s.Answer(q.Options[idx].ID); err != nil {
			return err
		}

		preview, err := s.Preview()
		if err != nil {
			return err
		}

		a.logger.Info("current preferences",
			append([]zap.Field{zap.String("progress", fmt.Sprintf("%.0f%%", s.Assessment.Progress()))}, logger.VectorFields(preview)...)...,
		)
	}

	return nil
}

func handleAction(action string, a *application, results *matching.Results, r *report.Report) error {
	switch action {
	case PromptExit:
		return errExit
	case PromptShowMatches:
		a.logMatches(r)
		return nil
	case PromptReportByIndustry:
		pretty, _ := json.MarshalIndent(r.ByIndustry(), "", "  ")
		a.logger.Info(string(pretty), zap.Int("companies count", len(r.Matches)))
		return nil
	case PromptBrowse:
		return browse(a, r)
	case PromptReportToFile:
		filename, err := r.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump report to file: %w", err)
		}
		a.logger.Info("dumping report to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		if err := a.appendToExcludeFile(results); err != nil {
			a.logger.Warn("appending to exclude file", zap.Error(err))
		}
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func browse(a *application, r *report.Report) error {
	items := make([]string, 0, len(r.Matches)+1)
	for _, m := range r.Matches {
		items = append(items, fmt.Sprintf("%s %s / %.1f%%", m.CompanyID, m.Name, m.Score*100))
	}

	companyPrompt := promptui.Select{
		Label: "Choose a company and press ENTER",
		Items: append(items, PromptBack),
	}

	for {
		_, selected, err := companyPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		id := strings.Split(selected, " ")[0]
		for _, m := range r.Matches {
			if m.CompanyID != id {
				continue
			}
			pretty, _ := json.MarshalIndent(m, "", "  ")
			a.logger.Info(string(pretty), zap.String("company", m.Name))
		}
	}
}
