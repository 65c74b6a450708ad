package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/mkuleshov/pgdbot/internal/adapters/engine"
	"github.com/mkuleshov/pgdbot/pkg/domain"
)

var previewCmd = &cobra.Command{
	Use:   "preview <name> <DD.MM.YYYY>",
	Short: "Preview a mock analysis in the terminal",
	Long:  `Runs the built-in mock engine for the given person and renders the analysis as styled markdown. Useful for checking section content without a chat client.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := domain.ParseBirthDate(args[1])
		if err != nil {
			return err
		}

		genderFlag, _ := cmd.Flags().GetString("gender")
		gender, err := domain.ParseGender(strings.ToUpper(genderFlag))
		if err != nil {
			return err
		}
		person := domain.Person{Name: args[0], BirthDate: date, Gender: gender}

		calc := engine.NewMock()
		var result *domain.Result

		partnerName, _ := cmd.Flags().GetString("partner-name")
		partnerDate, _ := cmd.Flags().GetString("partner-date")
		if partnerName != "" || partnerDate != "" {
			if partnerName == "" || partnerDate == "" {
				return fmt.Errorf("both --partner-name and --partner-date are required for a pair preview")
			}
			pd, err := domain.ParseBirthDate(partnerDate)
			if err != nil {
				return err
			}
			result, err = calc.ComputePair(cmd.Context(), person, domain.Person{Name: partnerName, BirthDate: pd})
			if err != nil {
				return err
			}
		} else {
			result, err = calc.ComputeSingle(cmd.Context(), person)
			if err != nil {
				return err
			}
		}

		var b strings.Builder
		for _, table := range result.Tables {
			b.WriteString("## " + table.Title + "\n\n")
			for _, row := range table.Rows {
				value := row.Value
				if value == "" {
					value = "-"
				}
				b.WriteString(fmt.Sprintf("- **%s**: %s\n", row.Label, value))
			}
			b.WriteString("\n")
		}
		for _, sec := range result.Sections {
			b.WriteString("## " + sec.Title + "\n\n")
			b.WriteString(sec.Body + "\n\n")
		}

		renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
		if err != nil {
			return err
		}
		out, err := renderer.Render(b.String())
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, out)
		return nil
	},
}

func init() {
	previewCmd.Flags().String("gender", "F", "Gender for the single analysis (F or M)")
	previewCmd.Flags().String("partner-name", "", "Second person's name for a pair preview")
	previewCmd.Flags().String("partner-date", "", "Second person's birth date for a pair preview")
	rootCmd.AddCommand(previewCmd)
}
