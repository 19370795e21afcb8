package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"rmfile/internal/config"
	"rmfile/internal/exitcodes"
	"rmfile/internal/history"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rmfile-history", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", config.DefaultPath, "Path to configuration file")
	dbPath := fs.String("db", "", "Path to history database (overrides config)")
	recent := fs.Int("recent", 0, "Show N most recent invocations")
	outcome := fs.String("outcome", "", "Filter by outcome (DELETE, ERROR, BLOCKED, USAGE)")
	pathPattern := fs.String("path", "", "Filter by path pattern (SQL LIKE syntax)")
	stats := fs.Bool("stats", false, "Show removal statistics")
	days := fs.Int("days", 30, "Number of days for statistics")
	prune := fs.Int("prune", 0, "Delete records older than N days")
	jsonOutput := fs.Bool("json", false, "Output in JSON format")
	if err := fs.Parse(args); err != nil {
		return exitcodes.InvalidConfig
	}

	if *prune <= 0 && !*stats && *recent <= 0 && *outcome == "" && *pathPattern == "" {
		fs.Usage()
		fmt.Fprintln(stderr, "\nExamples:")
		fmt.Fprintln(stderr, "  rmfile-history -recent 10            # Show 10 most recent invocations")
		fmt.Fprintln(stderr, "  rmfile-history -stats -days 7        # Show statistics for the last week")
		fmt.Fprintln(stderr, "  rmfile-history -outcome ERROR        # Show failed removals")
		fmt.Fprintln(stderr, "  rmfile-history -path '/var/log/%'    # Show removals under /var/log")
		fmt.Fprintln(stderr, "  rmfile-history -prune 90             # Drop records older than 90 days")
		return exitcodes.InvalidConfig
	}

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: Failed to load config: %v\n", err)
		return exitcodes.InvalidConfig
	}
	if *dbPath == "" {
		*dbPath = cfg.History.DatabasePath
	}

	db, err := history.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: Failed to open database %s: %v\n", *dbPath, err)
		return exitcodes.RuntimeError
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(stderr, "ERROR: Failed to close database: %v\n", err)
		}
	}()

	p := printer{out: stdout, json: *jsonOutput}

	switch {
	case *prune > 0:
		n, err := db.PruneOlderThan(*prune)
		if err != nil {
			return fail(stderr, "prune history", err)
		}
		fmt.Fprintf(stdout, "Pruned %d records older than %d days\n", n, *prune)
	case *stats:
		s, err := db.Stats(*days)
		if err != nil {
			return fail(stderr, "get statistics", err)
		}
		if err := p.stats(s, *days); err != nil {
			return fail(stderr, "encode statistics", err)
		}
	case *recent > 0:
		records, err := db.Recent(*recent)
		if err != nil {
			return fail(stderr, "get recent invocations", err)
		}
		if err := p.records(records); err != nil {
			return fail(stderr, "encode records", err)
		}
	case *outcome != "":
		records, err := db.ByOutcome(*outcome)
		if err != nil {
			return fail(stderr, "query by outcome", err)
		}
		if err := p.records(records); err != nil {
			return fail(stderr, "encode records", err)
		}
	default:
		records, err := db.ByPath(*pathPattern)
		if err != nil {
			return fail(stderr, "query by path", err)
		}
		if err := p.records(records); err != nil {
			return fail(stderr, "encode records", err)
		}
	}

	return exitcodes.Success
}

func fail(stderr io.Writer, what string, err error) int {
	fmt.Fprintf(stderr, "ERROR: Failed to %s: %v\n", what, err)
	return exitcodes.RuntimeError
}

type printer struct {
	out  io.Writer
	json bool
}

func (p printer) encode(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(p.out, string(data))
	return err
}

func (p printer) stats(s *history.Stats, days int) error {
	if p.json {
		return p.encode(s)
	}

	fmt.Fprintf(p.out, "Removal Statistics (Last %d days)\n", days)
	fmt.Fprintf(p.out, "Period: %s to %s\n\n", s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"))
	fmt.Fprintf(p.out, "Deleted:      %d\n", s.TotalDeleted)
	fmt.Fprintf(p.out, "Failed:       %d\n", s.TotalErrors)
	fmt.Fprintf(p.out, "Blocked:      %d\n", s.TotalBlocked)
	fmt.Fprintf(p.out, "Usage errors: %d\n", s.TotalUsage)
	fmt.Fprintf(p.out, "Space Freed:  %s\n", formatBytes(s.BytesFreed))

	if len(s.ByObjectType) > 0 {
		fmt.Fprintln(p.out, "\nDeleted by object type:")
		types := make([]string, 0, len(s.ByObjectType))
		for t := range s.ByObjectType {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Fprintf(p.out, "  %-15s %d\n", t, s.ByObjectType[t])
		}
	}
	return nil
}

func (p printer) records(records []history.Record) error {
	if p.json {
		if records == nil {
			records = []history.Record{}
		}
		return p.encode(records)
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(p.out, "No records found")
		return err
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTimestamp\tOutcome\tObject\tSize\tPath")
	_, _ = fmt.Fprintln(w, "--\t---------\t-------\t------\t----\t----")

	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.Outcome, r.ObjectType, formatBytes(r.Size), r.Path)
	}
	return w.Flush()
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
