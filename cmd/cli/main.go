package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"cloud.google.com/go/civil"
	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/dvloznov/ai-accountant/internal/approval"
	"github.com/dvloznov/ai-accountant/internal/domain"
	"github.com/dvloznov/ai-accountant/internal/extraction"
	"github.com/dvloznov/ai-accountant/internal/ledger"
	"github.com/dvloznov/ai-accountant/internal/logger"
)

const defaultSnapshot = "ledger.db"

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "extract":
		runExtract(log)
	case "confirm":
		runConfirm(log)
	case "pending":
		runPending(log)
	case "approve":
		runReview(log, "approve")
	case "reject":
		runReview(log, "reject")
	case "report":
		runReport(log)
	case "dashboard":
		runDashboard(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("AI Accountant CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  extract    Show the draft extracted from a sentence")
	fmt.Println("  confirm    Extract a sentence and store it as a pending entry")
	fmt.Println("  pending    List entries waiting for review")
	fmt.Println("  approve    Approve an entry by ID")
	fmt.Println("  reject     Reject and delete an entry by ID")
	fmt.Println("  report     Print income, expense and category totals")
	fmt.Println("  dashboard  Print the dashboard summary")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runExtract(log zerolog.Logger) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	text := fs.String("text", "", "Arabic sentence describing a transaction")
	rulesFile := fs.String("rules", "", "YAML keyword rules file")
	fs.Parse(os.Args[2:])

	if *text == "" {
		oerr(fs, "-text is required")
		os.Exit(1)
	}

	draft := newExtractor(log, *rulesFile).Parse(*text)
	printDraft(draft)
}

func runConfirm(log zerolog.Logger) {
	fs := flag.NewFlagSet("confirm", flag.ExitOnError)
	text := fs.String("text", "", "Arabic sentence describing a transaction")
	rulesFile := fs.String("rules", "", "YAML keyword rules file")
	snapshot := fs.String("snapshot", defaultSnapshot, "Bolt snapshot file")
	fs.Parse(os.Args[2:])

	if *text == "" {
		oerr(fs, "-text is required")
		os.Exit(1)
	}

	store := openStore(log, *snapshot)
	defer store.Close()

	draft := newExtractor(log, *rulesFile).Parse(*text)
	printDraft(draft)

	outcome, err := approval.New(store, log).Confirm(context.Background(), draft, domain.SourceManual)
	checkf(log, err, "Unable to confirm draft")

	color.New(color.BgGreen, color.FgBlack).Printf(" PENDING ")
	fmt.Printf(" entry %s, transaction %s\n", outcome.Entry.ID, outcome.Transaction.ID)
}

func runPending(log zerolog.Logger) {
	fs := flag.NewFlagSet("pending", flag.ExitOnError)
	snapshot := fs.String("snapshot", defaultSnapshot, "Bolt snapshot file")
	fs.Parse(os.Args[2:])

	store := openStore(log, *snapshot)
	defer store.Close()

	entries, err := store.ListEntries(context.Background(), ledger.EntryFilter{Status: domain.EntryStatusPending})
	checkf(log, err, "Unable to list pending entries")

	if len(entries) == 0 {
		fmt.Println("No entries waiting for review.")
		return
	}
	for _, e := range entries {
		printEntry(e)
	}
}

func runReview(log zerolog.Logger, action string) {
	fs := flag.NewFlagSet(action, flag.ExitOnError)
	id := fs.String("id", "", "Entry ID")
	snapshot := fs.String("snapshot", defaultSnapshot, "Bolt snapshot file")
	fs.Parse(os.Args[2:])

	if *id == "" {
		oerr(fs, "-id is required")
		os.Exit(1)
	}

	store := openStore(log, *snapshot)
	defer store.Close()

	wf := approval.New(store, log)
	ctx := context.Background()

	var outcome approval.Outcome
	var err error
	if action == "approve" {
		outcome, err = wf.Approve(ctx, *id)
	} else {
		outcome, err = wf.Reject(ctx, *id)
	}
	checkf(log, err, "Unable to %s entry %s", action, *id)

	if action == "approve" {
		color.New(color.BgGreen, color.FgBlack).Printf(" APPROVED ")
	} else {
		color.New(color.BgRed, color.FgWhite).Printf(" REJECTED ")
	}
	fmt.Printf(" %s %s\n", outcome.Entry.ID, outcome.Entry.Description)
	if outcome.Transaction != nil {
		fmt.Printf("  transaction %s is now %s\n", outcome.Transaction.ID, outcome.Transaction.Status)
	}
	printStats(outcome.Stats)
}

func runReport(log zerolog.Logger) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	from := fs.String("from", "", "Start date, YYYY-MM-DD (inclusive)")
	to := fs.String("to", "", "End date, YYYY-MM-DD (inclusive)")
	typ := fs.String("type", string(domain.ReportTypeAll), "all, income or expense")
	category := fs.String("category", "", "Only this category")
	snapshot := fs.String("snapshot", defaultSnapshot, "Bolt snapshot file")
	fs.Parse(os.Args[2:])

	filters := domain.ReportFilters{Type: domain.ReportType(*typ), Category: *category}
	var err error
	if *from != "" {
		filters.StartDate, err = civil.ParseDate(*from)
		checkf(log, err, "Invalid -from date %q", *from)
	}
	if *to != "" {
		filters.EndDate, err = civil.ParseDate(*to)
		checkf(log, err, "Invalid -to date %q", *to)
	}

	store := openStore(log, *snapshot)
	defer store.Close()

	report, err := store.GenerateReport(context.Background(), filters)
	checkf(log, err, "Unable to generate report")

	color.New(color.BgBlue, color.FgWhite).Printf(" %d transactions ", report.TransactionCount)
	fmt.Println()
	fmt.Printf("  income  %12s\n", report.TotalIncome.StringFixed(2))
	fmt.Printf("  expense %12s\n", report.TotalExpense.StringFixed(2))
	fmt.Printf("  net     %12s\n", report.NetAmount.StringFixed(2))
	fmt.Println()
	for _, c := range report.CategoryBreakdown {
		color.New(color.FgYellow).Printf("  %-20s", c.Category)
		fmt.Printf(" %12s %6.2f%% (%d)\n", c.Amount.StringFixed(2), c.Percentage, c.Count)
	}
}

func runDashboard(log zerolog.Logger) {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	snapshot := fs.String("snapshot", defaultSnapshot, "Bolt snapshot file")
	fs.Parse(os.Args[2:])

	store := openStore(log, *snapshot)
	defer store.Close()

	stats, err := store.DashboardStats(context.Background())
	checkf(log, err, "Unable to compute dashboard")

	printStats(stats)
	fmt.Println()
	for _, tx := range stats.RecentTransactions {
		printTransaction(tx)
	}
	fmt.Println()
	color.New(color.BgCyan, color.FgBlack).Printf(" %s ", ledger.Insight(stats))
	fmt.Println()
}

func openStore(log zerolog.Logger, snapshot string) *ledger.Store {
	store, err := ledger.NewStore(ledger.WithSnapshot(snapshot), ledger.WithLogger(log))
	checkf(log, err, "Unable to open ledger snapshot %s", snapshot)
	return store
}

func newExtractor(log zerolog.Logger, rulesFile string) *extraction.RuleExtractor {
	rules := extraction.DefaultRules()
	if rulesFile != "" {
		var err error
		rules, err = extraction.LoadRules(rulesFile)
		checkf(log, err, "Unable to load rules from %s", rulesFile)
	}
	return extraction.NewRuleExtractor(rules)
}

func printDraft(d domain.ExtractedTransactionData) {
	color.New(color.BgYellow, color.FgBlack).Printf(" %10s ", d.Date)
	color.New(color.BgWhite, color.FgBlack).Printf(" %-40s", d.Description)
	color.New(color.BgRed, color.FgWhite).Printf(" %12s ", d.Amount.StringFixed(2))
	color.New(color.BgGreen, color.FgBlack).Printf(" %s/%s ", d.Type, d.Category)
	fmt.Printf(" %.0f%%\n", d.Confidence*100)
	for _, l := range d.Entries {
		printLine(l)
	}
}

func printEntry(e domain.AccountingEntry) {
	color.New(color.BgBlue, color.FgWhite).Printf(" %s ", e.ID)
	color.New(color.BgYellow, color.FgBlack).Printf(" %10s ", e.Date)
	color.New(color.BgWhite, color.FgBlack).Printf(" %-40s", e.Description)
	fmt.Printf(" [%s]\n", e.Source)
	for _, l := range e.Lines {
		printLine(l)
	}
}

func printLine(l domain.TransactionEntry) {
	if l.Debit.IsPositive() {
		fmt.Printf("    %-30s %12s\n", l.Account, l.Debit.StringFixed(2))
		return
	}
	fmt.Printf("    %-30s %12s %12s\n", l.Account, "", l.Credit.StringFixed(2))
}

func printTransaction(tx domain.Transaction) {
	color.New(color.BgYellow, color.FgBlack).Printf(" %10s ", tx.Date)
	color.New(color.BgWhite, color.FgBlack).Printf(" %-40s", tx.Description)
	if tx.Type == domain.TransactionTypeIncome {
		color.New(color.FgGreen).Printf(" +%s", tx.Amount.StringFixed(2))
	} else {
		color.New(color.FgRed).Printf(" -%s", tx.Amount.StringFixed(2))
	}
	fmt.Printf(" %s\n", tx.Status)
}

func printStats(s domain.DashboardStats) {
	color.New(color.BgGreen, color.FgBlack).Printf(" income %s ", s.TotalIncome.StringFixed(2))
	color.New(color.BgRed, color.FgWhite).Printf(" expense %s ", s.TotalExpense.StringFixed(2))
	color.New(color.BgBlue, color.FgWhite).Printf(" net %s ", s.NetBalance.StringFixed(2))
	fmt.Printf(" %d approved, %d pending\n", s.TransactionCount, s.PendingReviewCount)
}
