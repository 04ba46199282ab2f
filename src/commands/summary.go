package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/google/subcommands"
	"github.com/username/finboard/src/models"
)

type summaryCmd struct {
	user    string
	refresh bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print a user's dashboard in the terminal" }
func (*summaryCmd) Usage() string {
	return `finboard summary -user <id> [-refresh]

  Prints net worth, holdings, allocation and goal progress for a user.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "User id whose dashboard to print (required)")
	f.BoolVar(&c.refresh, "refresh", false, "Refresh quotes before printing")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		return subcommands.ExitUsageError
	}
	cfg := loadConfig()

	a, err := newApp(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.close()

	var d *models.DashboardData
	if c.refresh {
		d, err = a.dashboard.RefreshQuotes(ctx, c.user, nil)
	} else {
		d, err = a.dashboard.Get(ctx, c.user)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dashboard for %q: %v\n", c.user, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderSummary(d))
	return subcommands.ExitSuccess
}

func displayAmount(v float64, currency string) string {
	if money.GetCurrency(currency) == nil {
		currency = money.USD
	}
	return money.NewFromFloat(v, currency).Display()
}

// renderSummary formats the dashboard as markdown.
func renderSummary(d *models.DashboardData) string {
	currency := d.Profile.Currency
	var b strings.Builder

	title := "Portfolio"
	if d.Profile.DisplayName != "" {
		title = d.Profile.DisplayName + "'s portfolio"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "**Net worth:** %s\n\n", displayAmount(d.NetWorth, currency))

	if len(d.Holdings) == 0 {
		b.WriteString("No holdings yet.\n")
	} else {
		b.WriteString("## Holdings\n\n")
		b.WriteString("| Ticker | Shares | Price | Value | Gain |\n")
		b.WriteString("|---|---:|---:|---:|---:|\n")
		for _, h := range d.Holdings {
			fmt.Fprintf(&b, "| %s | %.4g | %s | %s | %s (%.2f%%) |\n",
				h.Ticker, h.Shares,
				displayAmount(h.CurrentPrice, currency),
				displayAmount(h.TotalValue, currency),
				displayAmount(h.UnrealizedGain, currency), h.UnrealizedGainPercent)
		}
		b.WriteString("\n")
	}

	if len(d.Allocation) > 0 {
		b.WriteString("## Allocation\n\n")
		for _, a := range d.Allocation {
			fmt.Fprintf(&b, "- %s: %.1f%%\n", a.Name, a.Value)
		}
		b.WriteString("\n")
	}

	if d.Goal.Target > 0 {
		progress := d.NetWorth / d.Goal.Target * 100
		fmt.Fprintf(&b, "## Goal\n\n%s of %s (%.1f%%)", displayAmount(d.NetWorth, currency), displayAmount(d.Goal.Target, currency), progress)
		if d.Goal.TargetDate != "" {
			fmt.Fprintf(&b, " by %s", d.Goal.TargetDate)
		}
		b.WriteString("\n\n")
	}

	if d.Score != nil {
		fmt.Fprintf(&b, "## Score: %d/100\n\n%s\n", d.Score.Score, d.Score.Explanation)
	}
	return b.String()
}
