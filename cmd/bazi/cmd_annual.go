package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var annualBirth birthFlags

var annualFlags struct {
	from  int
	years int
}

var annualCmd = &cobra.Command{
	Use:   "annual",
	Short: "Project year-by-year cycles for a birth chart",
	Long: `Compute the chart for a birth moment and evaluate each year of the
requested window against it: annual pillar, relation to the useful and
unfavorable elements, branch clashes and a verdict with score.`,
	RunE: runAnnual,
}

func init() {
	addBirthFlags(annualCmd, &annualBirth)
	f := annualCmd.Flags()
	f.IntVar(&annualFlags.from, "from", 0, "First year to evaluate (default: current year)")
	f.IntVar(&annualFlags.years, "years", 0, "Number of years (default: ANNUAL_YEARS)")
}

func runAnnual(cmd *cobra.Command, _ []string) error {
	application, err := newCLIApp()
	if err != nil {
		return err
	}

	input, err := annualBirth.toInput(cmd)
	if err != nil {
		return err
	}

	result, err := application.Service.Analyze(cmd.Context(), input)
	if err != nil {
		return err
	}

	cycles := application.Service.Annual(&result.Chart, result.Favorable, annualFlags.from, annualFlags.years)

	c := result.Chart
	fmt.Printf("四柱：%s %s %s %s  用神：%s\n\n", c.Year.Label(), c.Month.Label(), c.Day.Label(), c.Hour.Label(), joinElements(result.Favorable.Useful))

	for _, cy := range cycles {
		line := fmt.Sprintf("%d年 %s  %s（%.1f）  %s", cy.Year, cy.Pillar.Label(), cy.Verdict, cy.VerdictScore, cy.UsefulRelation.Label)
		if len(cy.Clashes) > 0 {
			line += fmt.Sprintf("  冲%d处", len(cy.Clashes))
		}
		fmt.Println(line)
	}

	return nil
}
