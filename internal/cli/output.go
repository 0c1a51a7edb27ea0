package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/lu-zhengda/mailstate/internal/app"
)

// fprintJSON encodes v as indented JSON to w.
func fprintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// printReport writes a per-entity summary of an upgrade report.
func printReport(out io.Writer, r *app.Report) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if r.DryRun {
		fmt.Fprintf(w, "Pending upgrade to %s (dry run)\n", r.AppVersion)
	} else {
		fmt.Fprintf(w, "Upgraded to %s\n", r.AppVersion)
	}
	fmt.Fprintf(w, "config\t%s\trev %d\n", documentState(r.Config), r.Config.Revision)
	fmt.Fprintf(w, "settings\t%s\trev %d\n", documentState(r.Settings), r.Settings.Revision)
	fmt.Fprintf(w, "database\t%s\t%s\n", databaseState(r.Database), databaseDetail(r.Database))
	return w.Flush()
}

func documentState(d app.DocumentReport) string {
	switch {
	case d.Created:
		return "created"
	case d.Changed:
		return "upgraded"
	default:
		return "up to date"
	}
}

func databaseState(d app.DatabaseReport) string {
	switch {
	case d.Created:
		return "created"
	case d.Reset:
		return "reset"
	case d.Changed:
		return "upgraded"
	default:
		return "up to date"
	}
}

func databaseDetail(d app.DatabaseReport) string {
	var b strings.Builder
	if d.VersionBefore != "" && d.VersionBefore != d.VersionAfter {
		fmt.Fprintf(&b, "version %s -> %s", d.VersionBefore, d.VersionAfter)
	} else {
		fmt.Fprintf(&b, "version %s", d.VersionAfter)
	}
	fmt.Fprintf(&b, ", %d partition(s)", d.Partitions)
	if len(d.Pruned) > 0 {
		fmt.Fprintf(&b, ", pruned %s", strings.Join(d.Pruned, " "))
	}
	return b.String()
}
