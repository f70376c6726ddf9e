package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"github.com/simaogato/portfolio-backend/internal/domain"
)

// Commands lists every subcommand of portfolioctl
var Commands = []subcommands.Command{
	&bucketsCmd{},
	&createBucketCmd{},
	&deleteBucketCmd{},
	&orderCmd{},
	&addToBucketsCmd{},
	&removeFromBucketsCmd{},
	&positionCmd{},
	&bucketPositionCmd{},
	&datesCmd{},
}

var stdout io.Writer = os.Stdout

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}

// oneArg extracts the single positional argument a command requires
func oneArg(f *flag.FlagSet, what string) (string, bool) {
	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "expected exactly one %s\n", what)
		return "", false
	}
	return f.Arg(0), true
}

type bucketsCmd struct{}

func (*bucketsCmd) Name() string             { return "buckets" }
func (*bucketsCmd) Synopsis() string         { return "list buckets and their members" }
func (*bucketsCmd) Usage() string            { return "portfolioctl buckets\n" }
func (*bucketsCmd) SetFlags(f *flag.FlagSet) {}

func (*bucketsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var buckets map[string][]string
	if err := newAPIClient(serverURL).call(ctx, http.MethodGet, "/buckets", nil, &buckets); err != nil {
		return fail(err)
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BUCKET\tSYMBOLS")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%s\n", name, strings.Join(buckets[name], ","))
	}
	w.Flush()
	return subcommands.ExitSuccess
}

type createBucketCmd struct{}

func (*createBucketCmd) Name() string             { return "create-bucket" }
func (*createBucketCmd) Synopsis() string         { return "create an empty bucket" }
func (*createBucketCmd) Usage() string            { return "portfolioctl create-bucket <name>\n" }
func (*createBucketCmd) SetFlags(f *flag.FlagSet) {}

func (*createBucketCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name, ok := oneArg(f, "bucket name")
	if !ok {
		return subcommands.ExitUsageError
	}
	if err := newAPIClient(serverURL).call(ctx, http.MethodPost, "/buckets/"+escape(name), nil, nil); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "bucket %s created\n", name)
	return subcommands.ExitSuccess
}

type deleteBucketCmd struct{}

func (*deleteBucketCmd) Name() string             { return "delete-bucket" }
func (*deleteBucketCmd) Synopsis() string         { return "delete a bucket and its memberships" }
func (*deleteBucketCmd) Usage() string            { return "portfolioctl delete-bucket <name>\n" }
func (*deleteBucketCmd) SetFlags(f *flag.FlagSet) {}

func (*deleteBucketCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name, ok := oneArg(f, "bucket name")
	if !ok {
		return subcommands.ExitUsageError
	}
	if err := newAPIClient(serverURL).call(ctx, http.MethodDelete, "/buckets/"+escape(name), nil, nil); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "bucket %s deleted\n", name)
	return subcommands.ExitSuccess
}

type orderCmd struct {
	direction string
	symbol    string
	date      string
	quantity  int64
	buckets   string
}

func (*orderCmd) Name() string     { return "order" }
func (*orderCmd) Synopsis() string { return "record a buy or sell order at the close of its trade date" }
func (*orderCmd) Usage() string {
	return `portfolioctl order -t <BUY|SELL> -s <symbol> -q <quantity> [-d <date>] [-b <bucket,...>]

  Folds the order into the position on <symbol>. The execution price is the
  close on the trade date. Buckets are created as needed.
`
}

func (c *orderCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.direction, "t", "BUY", "Order direction: BUY/LONG or SELL/SHORT.")
	f.StringVar(&c.symbol, "s", "", "Ticker symbol.")
	f.StringVar(&c.date, "d", time.Now().UTC().Format(time.DateOnly), "Trade date (YYYY-MM-DD).")
	f.Int64Var(&c.quantity, "q", 0, "Number of shares.")
	f.StringVar(&c.buckets, "b", "", "Comma separated buckets to tag the symbol with.")
}

func (c *orderCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprintln(os.Stderr, "-s is required")
		return subcommands.ExitUsageError
	}
	if _, err := domain.ParseDirection(c.direction); err != nil {
		return fail(err)
	}

	req := map[string]any{
		"type":     c.direction,
		"symbol":   c.symbol,
		"date":     c.date,
		"quantity": c.quantity,
		"buckets":  splitList(c.buckets),
	}
	if err := newAPIClient(serverURL).call(ctx, http.MethodPost, "/positions/orders", req, nil); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "%s %d %s on %s recorded\n", strings.ToUpper(c.direction), c.quantity, c.symbol, c.date)
	return subcommands.ExitSuccess
}

type addToBucketsCmd struct {
	symbol string
}

func (*addToBucketsCmd) Name() string     { return "add-to-buckets" }
func (*addToBucketsCmd) Synopsis() string { return "tag a held symbol with buckets" }
func (*addToBucketsCmd) Usage() string {
	return "portfolioctl add-to-buckets -s <symbol> <bucket>...\n"
}
func (c *addToBucketsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Ticker symbol.")
}

func (c *addToBucketsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return updateBuckets(ctx, "/positions/buckets/add", c.symbol, f.Args())
}

type removeFromBucketsCmd struct {
	symbol string
}

func (*removeFromBucketsCmd) Name() string     { return "remove-from-buckets" }
func (*removeFromBucketsCmd) Synopsis() string { return "untag a held symbol from buckets" }
func (*removeFromBucketsCmd) Usage() string {
	return "portfolioctl remove-from-buckets -s <symbol> <bucket>...\n"
}
func (c *removeFromBucketsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Ticker symbol.")
}

func (c *removeFromBucketsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return updateBuckets(ctx, "/positions/buckets/remove", c.symbol, f.Args())
}

func updateBuckets(ctx context.Context, p, symbol string, buckets []string) subcommands.ExitStatus {
	if symbol == "" {
		fmt.Fprintln(os.Stderr, "-s is required")
		return subcommands.ExitUsageError
	}
	req := map[string]any{"symbol": symbol, "buckets": buckets}
	if err := newAPIClient(serverURL).call(ctx, http.MethodPost, p, req, nil); err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "%s updated\n", symbol)
	return subcommands.ExitSuccess
}

type positionCmd struct{}

func (*positionCmd) Name() string             { return "position" }
func (*positionCmd) Synopsis() string         { return "value the open position in a symbol" }
func (*positionCmd) Usage() string            { return "portfolioctl position <symbol>\n" }
func (*positionCmd) SetFlags(f *flag.FlagSet) {}

func (*positionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbol, ok := oneArg(f, "symbol")
	if !ok {
		return subcommands.ExitUsageError
	}
	var pos domain.StockPosition
	if err := newAPIClient(serverURL).call(ctx, http.MethodGet, "/positions/symbols/"+escape(symbol), nil, &pos); err != nil {
		return fail(err)
	}
	writePosition(stdout, pos)
	return subcommands.ExitSuccess
}

func writePosition(out io.Writer, pos domain.StockPosition) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Symbol\t%s\n", pos.Symbol)
	fmt.Fprintf(w, "Direction\t%s\n", pos.TradeType)
	fmt.Fprintf(w, "Quantity\t%d\n", pos.Quantity)
	fmt.Fprintf(w, "Average cost\t%s\n", formatMoney(pos.AvgCostPerShare))
	fmt.Fprintf(w, "Purchase cost\t%s\n", formatMoney(pos.TotalPurchaseCost))
	fmt.Fprintf(w, "Market value\t%s\n", formatMoney(pos.TotalMarketValue))
	fmt.Fprintf(w, "P&L\t%s (%s)\n", formatMoney(pos.ProfitLossAmount), formatPercent(pos.ProfitLossPercent))
	fmt.Fprintf(w, "Buckets\t%s\n", strings.Join(pos.Buckets, ","))
	w.Flush()
}

type bucketPositionCmd struct{}

func (*bucketPositionCmd) Name() string             { return "bucket-position" }
func (*bucketPositionCmd) Synopsis() string         { return "value every position in a bucket" }
func (*bucketPositionCmd) Usage() string            { return "portfolioctl bucket-position <name>\n" }
func (*bucketPositionCmd) SetFlags(f *flag.FlagSet) {}

func (*bucketPositionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name, ok := oneArg(f, "bucket name")
	if !ok {
		return subcommands.ExitUsageError
	}
	var report domain.BucketPosition
	if err := newAPIClient(serverURL).call(ctx, http.MethodGet, "/positions/buckets/"+escape(name), nil, &report); err != nil {
		return fail(err)
	}
	writeBucketPosition(stdout, report)
	return subcommands.ExitSuccess
}

func writeBucketPosition(out io.Writer, report domain.BucketPosition) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Bucket\t%s\n", report.Name)
	fmt.Fprintf(w, "Positions\t%d\n", report.NumberOfPositions)
	fmt.Fprintf(w, "Shares long/short\t%d/%d\n", report.TotalNumberOfSharesLong, report.TotalNumberOfSharesShort)
	fmt.Fprintf(w, "Purchase cost\t%s\n", formatMoney(report.TotalPurchaseCost))
	fmt.Fprintf(w, "Market value\t%s\n", formatMoney(report.TotalMarketValue))
	fmt.Fprintf(w, "P&L\t%s (%s)\n", formatMoney(report.ProfitLossAmount), formatPercent(report.ProfitLossPercent))
	for _, line := range report.BucketBreakdown {
		fmt.Fprintf(w, "  %s\t%s (%s)\n", line.Symbol, formatMoney(line.ProfitLossAmount), formatPercent(line.ProfitLossPercent))
	}
	w.Flush()
}

type datesCmd struct{}

func (*datesCmd) Name() string             { return "dates" }
func (*datesCmd) Synopsis() string         { return "list the trade dates with market data for a symbol" }
func (*datesCmd) Usage() string            { return "portfolioctl dates <symbol>\n" }
func (*datesCmd) SetFlags(f *flag.FlagSet) {}

func (*datesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbol, ok := oneArg(f, "symbol")
	if !ok {
		return subcommands.ExitUsageError
	}
	var dates []time.Time
	if err := newAPIClient(serverURL).call(ctx, http.MethodGet, "/dates/"+escape(symbol), nil, &dates); err != nil {
		return fail(err)
	}
	for _, d := range dates {
		fmt.Fprintln(stdout, d.UTC().Format(time.DateOnly))
	}
	return subcommands.ExitSuccess
}

// splitList turns "a, b,,c" into [a b c]
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
