package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/visitors"
	"github.com/light-bringer/procat-changeset/internal/app/product/domain"
	"github.com/light-bringer/procat-changeset/internal/app/product/usecases/edit_product"
	"github.com/light-bringer/procat-changeset/internal/config"
	"github.com/light-bringer/procat-changeset/internal/services"
)

type options struct {
	configPath    string
	productID     string
	name          string
	price         string
	stock         int64
	active        bool
	addDiscounts  []string
	dropDiscounts []string
	reason        string
	commit        bool
}

// report is the YAML document printed by the command.
type report struct {
	Product string            `yaml:"product"`
	Changes []visitors.Change `yaml:"changes"`
}

func newRootCommand(out io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "changereport",
		Short: "Preview the changes an edit would make to a catalog product",
		Long: "Loads a product from the catalog, applies the edits given as flags in memory " +
			"and prints the resulting change set as YAML. The edits are saved only with --commit.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, opts, out)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to config file (default ./config.yaml)")
	flags.StringVar(&opts.productID, "product", "", "product ID (default: first product, seeding a demo catalog)")
	flags.StringVar(&opts.name, "name", "", "new product name")
	flags.StringVar(&opts.price, "price", "", "new price, e.g. 39.90")
	flags.Int64Var(&opts.stock, "stock", 0, "new stock level")
	flags.BoolVar(&opts.active, "active", false, "set the product active flag")
	flags.StringSliceVar(&opts.addDiscounts, "add-discount", nil, "discount to add as CODE:PERCENT (repeatable)")
	flags.StringSliceVar(&opts.dropDiscounts, "drop-discounts", nil, "discount codes to remove")
	flags.StringVar(&opts.reason, "reason", "manual edit", "reason recorded in the price history")
	flags.BoolVar(&opts.commit, "commit", false, "save the edits after reporting them")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, opts *options, out io.Writer) error {
	// 1. Load configuration
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	// 2. Initialize service dependencies
	svc, err := services.NewServiceOptions(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close()

	// 3. Resolve the product
	productID := opts.productID
	if productID == "" {
		if productID, err = svc.SeedCatalog.Execute(ctx); err != nil {
			return err
		}
	}

	// 4. Build the edit request from the flags that were set
	req, err := buildRequest(cmd, opts, productID)
	if err != nil {
		return err
	}

	// 5. Apply edits and collect changes
	changes, err := svc.EditProduct.Execute(ctx, req)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "change report ready", "product", productID, "changes", len(changes))

	// 6. Print report
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(report{Product: productID, Changes: changes}); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

func buildRequest(cmd *cobra.Command, opts *options, productID string) (*edit_product.Request, error) {
	flags := cmd.Flags()
	req := &edit_product.Request{
		ProductID:     productID,
		DropDiscounts: opts.dropDiscounts,
		ChangedReason: opts.reason,
		Commit:        opts.commit,
	}

	if flags.Changed("name") {
		req.Name = &opts.name
	}
	if flags.Changed("stock") {
		req.Stock = &opts.stock
	}
	if flags.Changed("active") {
		req.Active = &opts.active
	}
	if flags.Changed("price") {
		price, err := domain.ParseMoney(opts.price)
		if err != nil {
			return nil, err
		}
		req.Price = price
	}

	for _, raw := range opts.addDiscounts {
		discount, err := parseDiscount(raw)
		if err != nil {
			return nil, err
		}
		req.AddDiscounts = append(req.AddDiscounts, discount)
	}

	return req, nil
}

// parseDiscount reads a CODE:PERCENT flag value.
func parseDiscount(raw string) (edit_product.DiscountRequest, error) {
	code, percent, ok := strings.Cut(raw, ":")
	if !ok {
		return edit_product.DiscountRequest{}, fmt.Errorf("discount %q: expected CODE:PERCENT", raw)
	}

	value, err := cast.ToFloat64E(strings.TrimSuffix(strings.TrimSpace(percent), "%"))
	if err != nil {
		return edit_product.DiscountRequest{}, fmt.Errorf("discount %q: %w", raw, domain.ErrInvalidDiscountPercent)
	}

	return edit_product.DiscountRequest{Code: strings.TrimSpace(code), Percent: value}, nil
}
