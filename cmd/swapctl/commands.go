package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kjannette/trahn-swap/internal/catalog"
	"github.com/kjannette/trahn-swap/internal/config"
	"github.com/kjannette/trahn-swap/internal/external"
	"github.com/kjannette/trahn-swap/internal/logging"
	"github.com/kjannette/trahn-swap/internal/models"
	"github.com/kjannette/trahn-swap/internal/pricestore"
	"github.com/kjannette/trahn-swap/internal/rate"
	"github.com/kjannette/trahn-swap/internal/swap"
	"github.com/kjannette/trahn-swap/internal/wallet"
)

type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func loadEnv(cmd *cli.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if feed := cmd.String("feed"); feed != "" {
		cfg.PriceFeedURL = feed
	}
	logger, err := logging.New(cmd.String("log-level"))
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger}, nil
}

func (e *env) fetchCatalog(ctx context.Context) (*catalog.Catalog, error) {
	client := external.NewPriceFeedClient(external.PriceFeedOptions{
		URL:         e.cfg.PriceFeedURL,
		Timeout:     e.cfg.PriceFeedTimeout,
		MaxAttempts: e.cfg.PriceFeedMaxAttempts,
		Logger:      e.logger,
	})
	store := pricestore.New(client, e.logger)
	if err := store.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	return store.Current(), nil
}

func runTokens(ctx context.Context, cmd *cli.Command) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	cat, err := e.fetchCatalog(ctx)
	if err != nil {
		return err
	}

	listings := catalog.Listings(catalog.Search(cat, cmd.String("search")), e.cfg.IconURLTemplate)
	fmt.Println(headerStyle.Render(fmt.Sprintf("TOKENS (%d)", len(listings))))
	for _, l := range listings {
		fmt.Println(symbolStyle.Render(l.Symbol) + valueStyle.Render(rate.FormatAmount(l.Price)) + "  " + mutedStyle.Render(l.IconURL))
	}
	return nil
}

func runQuote(ctx context.Context, cmd *cli.Command) error {
	amount, err := rate.ParseAmount(cmd.String("amount"))
	if err != nil {
		return errors.New(swap.Message(err))
	}
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	cat, err := e.fetchCatalog(ctx)
	if err != nil {
		return err
	}

	from := strings.TrimSpace(cmd.String("from"))
	to := strings.TrimSpace(cmd.String("to"))
	value, err := rate.Convert(cat, from, to, amount)
	if err != nil {
		return errors.New(swap.Message(err))
	}
	fmt.Printf("%s %s = %s\n", rate.FormatAmount(amount), from,
		valueStyle.UnsetWidth().Render(rate.FormatAmount(value)+" "+to))
	return nil
}

func runBalances(ctx context.Context, cmd *cli.Command) error {
	balances, err := parseBalances(cmd.StringSlice("balance"))
	if err != nil {
		return err
	}
	if len(balances) == 0 {
		return errors.New("at least one --balance chain:symbol:amount is required")
	}
	prices, err := parsePrices(cmd.StringSlice("price"))
	if err != nil {
		return err
	}

	table := wallet.DefaultPriorityTable()
	if path := cmd.String("priority-file"); path != "" {
		if table, err = wallet.LoadPriorityTable(path); err != nil {
			return err
		}
	}

	if prices == nil {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		cat, err := e.fetchCatalog(ctx)
		if err != nil {
			return err
		}
		prices = make(map[string]float64, cat.Len())
		for _, sym := range cat.Symbols() {
			prices[sym], _ = cat.Lookup(sym)
		}
	}

	rows := wallet.Rows(wallet.Prioritize(balances, table), prices)
	fmt.Println(headerStyle.Render("WALLET"))
	for _, r := range rows {
		usd := mutedStyle.Render("n/a")
		if r.Priced {
			usd = "$" + wallet.DisplayAmount(r.USDValue)
		}
		fmt.Printf("%-22s %s %s\n", r.Key, valueStyle.Render(r.DisplayAmount), usd)
	}
	return nil
}

// parseBalances reads chain:symbol:amount triples.
func parseBalances(raw []string) ([]models.BalanceRecord, error) {
	out := make([]models.BalanceRecord, 0, len(raw))
	for _, s := range raw {
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("balance %q: want chain:symbol:amount", s)
		}
		amount, err := rate.ParseAmount(parts[2])
		if err != nil {
			return nil, fmt.Errorf("balance %q: %w", s, err)
		}
		out = append(out, models.BalanceRecord{
			Chain:  strings.TrimSpace(parts[0]),
			Symbol: strings.TrimSpace(parts[1]),
			Amount: amount,
		})
	}
	return out, nil
}

// parsePrices reads symbol:usd pairs. No pairs yields nil.
func parsePrices(raw []string) (map[string]float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(raw))
	for _, s := range raw {
		sym, val, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("price %q: want symbol:usd", s)
		}
		p, err := rate.ParseAmount(val)
		if err != nil {
			return nil, fmt.Errorf("price %q: %w", s, err)
		}
		out[strings.TrimSpace(sym)] = p
	}
	return out, nil
}

func runSwap(ctx context.Context, cmd *cli.Command) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	cat, err := e.fetchCatalog(ctx)
	if err != nil {
		return err
	}

	exec := swap.NewPaperExecutor(swap.PaperOptions{
		Latency:  e.cfg.PaperSwapLatency,
		Balances: e.cfg.PaperBalances,
	}, e.logger)
	sess := swap.NewSession(cat, e.cfg.PaperBalances, exec, e.logger)

	type outcome struct {
		receipt models.SwapReceipt
		err     error
	}
	done := make(chan outcome, 1)
	sess.OnComplete(func(r models.SwapReceipt, err error) { done <- outcome{r, err} })

	updates := make(chan struct{}, 1)
	picker := swap.NewPicker(sess, func() *catalog.Catalog { return cat }, e.cfg.SearchDebounce,
		func([]models.PriceRecord) {
			select {
			case updates <- struct{}{}:
			default:
			}
		})

	fmt.Println(headerStyle.Render("PAPER SWAP"))
	fmt.Println(mutedStyle.Render("Balances: " + formatBalances(sess.State().Balances)))

	if err := pickToken(ctx, picker, updates, swap.SideSource, "Token to send"); err != nil {
		return err
	}
	if err := pickToken(ctx, picker, updates, swap.SideDestination, "Token to receive"); err != nil {
		return err
	}

	var amount string
	err = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Amount to send").
			Description("Held: " + rate.FormatAmount(sess.State().Balance(sess.State().SourceSymbol))).
			Value(&amount).
			Validate(func(s string) error {
				sess.SetAmount(s)
				if err := sess.Err(); err != nil {
					return errors.New(swap.Message(err))
				}
				if err := swap.Validate(sess.State()); err != nil {
					return errors.New(swap.Message(err))
				}
				return nil
			}),
	)).Run()
	if err != nil {
		return err
	}
	sess.SetAmount(amount)

	state := sess.State()
	confirm := false
	err = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Swap %s %s for %s %s?", state.SourceAmount, state.SourceSymbol,
				state.DestinationAmount, state.DestinationSymbol)).
			Value(&confirm),
	)).Run()
	if err != nil {
		return err
	}
	if !confirm {
		fmt.Println(mutedStyle.Render("cancelled"))
		return nil
	}

	id, err := sess.Submit(ctx)
	if err != nil {
		return errors.New(swap.Message(err))
	}
	fmt.Println(mutedStyle.Render("Swapping... " + id))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case out := <-done:
		if out.err != nil {
			return errors.New(swap.Message(out.err))
		}
		fmt.Println(valueStyle.UnsetWidth().Render("Swap complete"))
		fmt.Println(mutedStyle.Render("Balances: " + formatBalances(out.receipt.BalanceAfter)))
	}
	return nil
}

// pickToken asks for an optional filter, waits for the debounced results
// and lets the user choose one of them.
func pickToken(ctx context.Context, picker *swap.Picker, updates <-chan struct{}, side swap.Side, title string) error {
	picker.Open(side)
	select {
	case <-updates:
	default:
	}

	var term string
	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title(title).Description("Filter by symbol, empty for all").Value(&term),
	)).Run(); err != nil {
		return err
	}
	if strings.TrimSpace(term) != "" {
		picker.Type(term)
		select {
		case <-updates:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	results := picker.Results()
	if len(results) == 0 {
		picker.Close()
		return fmt.Errorf("no tokens match %q", term)
	}
	opts := make([]huh.Option[string], len(results))
	for i, r := range results {
		opts[i] = huh.NewOption(fmt.Sprintf("%-8s %s", r.Symbol, rate.FormatAmount(r.Price)), r.Symbol)
	}

	var symbol string
	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title(title).Options(opts...).Height(12).Value(&symbol),
	)).Run(); err != nil {
		return err
	}
	picker.Select(symbol)
	return nil
}

func formatBalances(b map[string]float64) string {
	if len(b) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + rate.FormatAmount(b[k])
	}
	return strings.Join(parts, ", ")
}
