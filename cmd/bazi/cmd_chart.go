package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mingshi/bazi-engine/internal/report"
)

var chartBirth birthFlags

var chartFlags struct {
	report string
	output string
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Compute a four-pillar chart with the full analysis",
	Long: `Compute the four pillars for a birth moment and run the complete
analysis: elements, day-master strength, ten gods, pattern, spirit
markers, decade cycles, annual cycles and the derived insights.

The result prints as a summary and saves as JSON, either to the path
given with -o or into the configured output directory.`,
	RunE: runChart,
}

func init() {
	addBirthFlags(chartCmd, &chartBirth)
	f := chartCmd.Flags()
	f.StringVar(&chartFlags.report, "report", "", "Generate report text (simple, normal, detailed, comprehensive)")
	f.StringVarP(&chartFlags.output, "output", "o", "", "Write the result JSON to this path")
}

func runChart(cmd *cobra.Command, _ []string) error {
	application, err := newCLIApp()
	if err != nil {
		return err
	}

	input, err := chartBirth.toInput(cmd)
	if err != nil {
		return err
	}

	var level report.Level
	if chartFlags.report != "" {
		level, err = report.ParseLevel(chartFlags.report)
		if err != nil {
			return fmt.Errorf("invalid --report %q (simple, normal, detailed or comprehensive)", chartFlags.report)
		}
		if application.Reports == nil {
			return fmt.Errorf("report generation requires GEMINI_API_KEY")
		}
	}

	result, err := application.Service.Analyze(cmd.Context(), input)
	if err != nil {
		return err
	}

	if level != "" {
		text, err := application.Reports.Generate(cmd.Context(), result, level)
		if err != nil {
			return fmt.Errorf("report generation failed: %w", err)
		}
		result.Report = text
	}

	printSummary(result)

	path := chartFlags.output
	if path == "" {
		path, err = application.Writer.Write(result)
	} else {
		err = writeResultFile(path, result)
	}
	if err != nil {
		return err
	}

	fmt.Printf("\n结果已保存：%s\n", path)

	if result.Report != "" {
		fmt.Printf("\n%s\n", result.Report)
	}

	return nil
}
