package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mydehq/metamatch"
)

var (
	flagMatchYear int
	flagMatchKind string
)

var matchCmd = &cobra.Command{
	Use:   "match <title>",
	Short: "Score provider candidates for a title",
	Long: `Search the provider for a title and print every candidate with its score
breakdown. The cache is neither read nor written.`,
	Example: `  metamatch match Inception --year 2010
  metamatch match "Hades" --kind game --year 2020`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := metamatch.ParseMediaKind(flagMatchKind)
		if err != nil {
			return err
		}
		q := metamatch.Query{Title: strings.Join(args, " "), Year: flagMatchYear, Kind: kind}

		result, err := metamatch.Match(cmd.Context(), q, baseOptions()...)
		if err != nil {
			return err
		}

		if len(result.Ranked) == 0 {
			logger.Info("No candidate cleared the title floor", "provider", result.Provider, "candidates", result.Candidates)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderMatch(result))

		if result.Best == nil {
			logger.Warn("No confident match", "provider", result.Provider)
			return nil
		}
		logger.Success(fmt.Sprintf("Best match: %s", result.Best.Candidate.Title),
			"id", result.Best.Candidate.ProviderID, "total", result.Best.TotalScore)
		return nil
	},
}

func init() {
	matchCmd.Flags().IntVarP(&flagMatchYear, "year", "y", 0, "Release year (0 if unknown)")
	matchCmd.Flags().StringVarP(&flagMatchKind, "kind", "k", "movie", "Media kind: movie, tv or game")
	RootCmd.AddCommand(matchCmd)
}

func renderMatch(result *metamatch.MatchResult) string {
	headers := []string{"", "ID", "Title", "Date", "Title pts", "Year pts", "Pop pts", "Total"}
	aligns := []columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}

	rows := make([][]string, 0, len(result.Ranked))
	for _, s := range result.Ranked {
		marker := ""
		if result.Best != nil && s.Candidate.ProviderID == result.Best.Candidate.ProviderID {
			marker = "*"
		}
		rows = append(rows, []string{
			marker,
			s.Candidate.ProviderID,
			s.Candidate.Title,
			s.Candidate.Date,
			strconv.Itoa(s.TitleScore),
			strconv.Itoa(s.YearScore),
			strconv.Itoa(s.PopularityScore),
			strconv.Itoa(s.TotalScore),
		})
	}
	return renderTable(headers, rows, aligns)
}
