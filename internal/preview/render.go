package preview

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/goccy/go-json"
)

func renderRows(w io.Writer, asJSON bool, rows []Row) error {
	if asJSON {
		return writeJSON(w, rows)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RIDER\t#\tLISTING\tHORSE\tOWNER\tLOCATION\tSCORE\tDISTANCE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
			r.Rider, r.Rank, r.ListingID, r.HorseName, r.OwnerName, r.Location, r.MatchScore, formatKm(r.DistanceKm))
	}
	return tw.Flush()
}

func renderExplanations(w io.Writer, asJSON bool, exps []Explanation) error {
	if asJSON {
		return writeJSON(w, exps)
	}
	for _, e := range exps {
		fmt.Fprintf(w, "%s -> %s (distance %s)\n", e.Rider, e.ListingID, formatKm(e.DistanceKm))
		if !e.Eligible {
			fmt.Fprintf(w, "  filtered by %s: %s\n", e.Rule, e.Reason)
			continue
		}
		fmt.Fprintf(w, "  %s score %.2f\n", e.Strategy, e.Score)
		names := make([]string, 0, len(e.Components))
		for name := range e.Components {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(w, "    %-14s %6.2f\n", name, e.Components[name])
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatKm(km *float64) string {
	if km == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f km", *km)
}
