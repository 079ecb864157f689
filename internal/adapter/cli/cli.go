// Package cli implements the storectl subcommands. Each command opens the
// file-backed store, runs one operation and prints the outcome.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/rl1809/store-manager/internal/adapter/storage"
	"github.com/rl1809/store-manager/internal/core/domain"
	"github.com/rl1809/store-manager/internal/currency"
	"github.com/rl1809/store-manager/internal/core/service"
)

// Register adds every storectl command to cdr. Output goes to out.
func Register(cdr *subcommands.Commander, out io.Writer) {
	for _, c := range Commands(out) {
		cdr.Register(c, "store")
	}
}

func Commands(out io.Writer) []subcommands.Command {
	return []subcommands.Command{
		&balanceCmd{storeFlags: storeFlags{out: out}},
		&lineCmd{storeFlags: storeFlags{out: out}, sale: true},
		&lineCmd{storeFlags: storeFlags{out: out}},
		&inventoryCmd{storeFlags: storeFlags{out: out}},
		&historyCmd{storeFlags: storeFlags{out: out}},
	}
}

type storeFlags struct {
	out      io.Writer
	data     string
	currency string
}

func (s *storeFlags) setFlags(f *flag.FlagSet) {
	f.StringVar(&s.data, "data", storage.DefaultDataFile, "Path to the store data file.")
	f.StringVar(&s.currency, "currency", "USD", "ISO 4217 currency used to display amounts.")
}

func (s *storeFlags) open(ctx context.Context) (*service.StoreService, error) {
	return service.NewStoreService(ctx, storage.NewFileStore(s.data))
}

func (s *storeFlags) money(d decimal.Decimal) string {
	return currency.Format(d, s.currency)
}

// fail prints err and maps it to an exit status. Rejections by the store are
// reported as failures, bad arguments as usage errors.
func (s *storeFlags) fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(s.out, "Error:", domain.Message(err))
	if isUsage(err) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func isUsage(err error) bool {
	_, ok := err.(usageError)
	return ok
}

type balanceCmd struct {
	storeFlags
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "show or adjust the account balance" }
func (*balanceCmd) Usage() string {
	return `storectl balance [-data <file>] [add|subtract <amount>]

  Without arguments prints the current balance. With a command and a whole
  amount, adds to or subtracts from the balance.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *balanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) != 0 && len(args) != 2 {
		return c.fail(usageError{"expected no arguments or <command> <amount>"})
	}

	store, err := c.open(ctx)
	if err != nil {
		return c.fail(err)
	}

	if len(args) == 0 {
		fmt.Fprintf(c.out, "Balance: %s\n", c.money(store.Balance()))
		return subcommands.ExitSuccess
	}

	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return c.fail(usageError{fmt.Sprintf("amount %q is not a whole number", args[1])})
	}
	balance, err := store.AdjustBalance(ctx, args[0], amount)
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprintf(c.out, "Balance: %s\n", c.money(balance))
	return subcommands.ExitSuccess
}

// lineCmd is either "sell" or "purchase".
type lineCmd struct {
	storeFlags
	sale bool
}

func (c *lineCmd) Name() string {
	if c.sale {
		return "sell"
	}
	return "purchase"
}

func (c *lineCmd) Synopsis() string {
	if c.sale {
		return "record a sale from the inventory"
	}
	return "record a purchase into the inventory"
}

func (c *lineCmd) Usage() string {
	return fmt.Sprintf(`storectl %s [-data <file>] <item> <price> <quantity>

  %s.
`, c.Name(), c.Synopsis())
}

func (c *lineCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *lineCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) != 3 {
		return c.fail(usageError{"expected <item> <price> <quantity>"})
	}
	price, err := decimal.NewFromString(args[1])
	if err != nil {
		return c.fail(usageError{fmt.Sprintf("price %q is not a number", args[1])})
	}
	quantity, err := strconv.Atoi(args[2])
	if err != nil {
		return c.fail(usageError{fmt.Sprintf("quantity %q is not a whole number", args[2])})
	}

	store, err := c.open(ctx)
	if err != nil {
		return c.fail(err)
	}

	record, verb := store.RecordPurchase, "Purchased"
	if c.sale {
		record, verb = store.RecordSale, "Sold"
	}
	tx, err := record(ctx, args[0], price, quantity)
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprintf(c.out, "%s %d %s for %s. Balance: %s\n",
		verb, tx.Quantity, tx.Item, c.money(tx.Total), c.money(store.Balance()))
	return subcommands.ExitSuccess
}

type inventoryCmd struct {
	storeFlags
}

func (*inventoryCmd) Name() string     { return "inventory" }
func (*inventoryCmd) Synopsis() string { return "list items in stock" }
func (*inventoryCmd) Usage() string {
	return `storectl inventory [-data <file>]
`
}

func (c *inventoryCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *inventoryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := c.open(ctx)
	if err != nil {
		return c.fail(err)
	}

	inv := domain.NewInventory(store.Inventory())
	if inv.Len() == 0 {
		fmt.Fprintln(c.out, "Inventory is empty.")
		return subcommands.ExitSuccess
	}
	for _, name := range inv.Names() {
		item, _ := inv.Get(name)
		fmt.Fprintf(c.out, "%-20s %6d x %s\n", name, item.Quantity, c.money(item.Price))
	}
	return subcommands.ExitSuccess
}

type historyCmd struct {
	storeFlags
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "print the sales and purchase logs" }
func (*historyCmd) Usage() string {
	return `storectl history [-data <file>]
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := c.open(ctx)
	if err != nil {
		return c.fail(err)
	}

	sales, purchases := store.History()
	c.printLog("Sales", sales)
	c.printLog("Purchases", purchases)
	return subcommands.ExitSuccess
}

func (c *historyCmd) printLog(title string, txs []domain.Transaction) {
	fmt.Fprintf(c.out, "%s (%d)\n", title, len(txs))
	for _, tx := range txs {
		fmt.Fprintf(c.out, "  %s  %-20s %6d x %s = %s\n",
			tx.Time, tx.Item, tx.Quantity, c.money(tx.Price), c.money(tx.Total))
	}
}
