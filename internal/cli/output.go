package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/MikeSquared-Agency/Compass/internal/scoring"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRanking(w io.Writer, format string, result scoring.RankedResult) error {
	if format == formatJSON {
		return writeJSON(w, result)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCOUNTRY\tSCORE\tPERCENT")
	for _, e := range result {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%.1f%%\n", e.Rank, e.Country, e.Score, e.Percentage)
	}
	return tw.Flush()
}

func writeSensitivity(w io.Writer, format string, report *scoring.SensitivityReport) error {
	if format == formatJSON {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "Baseline top: %s\n", report.Baseline.TopCountry)
	fmt.Fprintf(w, "Overall stability: %.1f\n", report.Overall.OverallStabilityScore)
	fmt.Fprintf(w, "Most sensitive: %s\n", report.Overall.MostSensitiveCriterion)
	fmt.Fprintf(w, "Least sensitive: %s\n\n", report.Overall.LeastSensitiveCriterion)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CRITERION\tWEIGHT\tSTABILITY\tTOP CHANGE\tAVG RANK CHANGES")
	for _, c := range report.Criteria {
		m := c.Metrics
		fmt.Fprintf(tw, "%s\t%.2f\t%.1f\t%.2f\t%.2f\n",
			c.Criterion, c.BaselineWeight, m.StabilityScore, m.TopCountryChangeFrequency, m.AverageRankingChanges)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintln(w)
		for _, r := range report.Recommendations {
			fmt.Fprintf(w, "- %s\n", r.Message)
		}
	}
	return nil
}

func writeCriteria(w io.Writer, format string, spec *scoring.CriteriaSpec) error {
	if format == formatJSON {
		return writeJSON(w, spec.Criteria())
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tPOLARITY\tRANGE")
	for _, c := range spec.Criteria() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%g-%g\n", c.ID, c.Label, c.Polarity, c.Min, c.Max)
	}
	return tw.Flush()
}
