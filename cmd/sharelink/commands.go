package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	"github.com/caffeinepub/saree-catalogue-portal/internal/sharelink"
)

type options struct {
	baseURL      string
	identity     string
	customerType string
	all          bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "sharelink",
		Short:         "Build and inspect saree catalog share links",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", os.Getenv("PUBLIC_APP_URL"), "public app URL links point at (env PUBLIC_APP_URL)")
	root.PersistentFlags().StringVar(&opts.identity, "identity", "principal", "weaver identity format: principal or opaque")

	root.AddCommand(
		newCatalogCmd(opts),
		newProductCmd(opts),
		newParseCmd(opts),
		newPriceCmd(opts),
	)
	return root
}

func newCatalogCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog <weaver>",
		Short: "Print the catalog link of a weaver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, parser, err := opts.tools()
			if err != nil {
				return err
			}
			weaver := args[0]
			if err := parser.ValidateIdentity(weaver); err != nil {
				return fmt.Errorf("weaver %q: %w", weaver, err)
			}
			return opts.printLinks(cmd.OutOrStdout(), func(ct domain.CustomerType) string {
				return builder.CatalogURL(weaver, ct)
			})
		},
	}
	addTypeFlags(cmd, opts)
	return cmd
}

func newProductCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product <weaver> <id>",
		Short: "Print the link of one product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, parser, err := opts.tools()
			if err != nil {
				return err
			}
			weaver := args[0]
			if err := parser.ValidateIdentity(weaver); err != nil {
				return fmt.Errorf("weaver %q: %w", weaver, err)
			}
			id, err := sharelink.ParseProductID(args[1])
			if err != nil {
				return fmt.Errorf("product %q: %w", args[1], err)
			}
			return opts.printLinks(cmd.OutOrStdout(), func(ct domain.CustomerType) string {
				return builder.ProductURL(weaver, id, ct)
			})
		},
	}
	addTypeFlags(cmd, opts)
	return cmd
}

func newParseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <url>",
		Short: "Show the route a share link resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := opts.parser()
			if err != nil {
				return err
			}
			route, err := parser.ParseLink(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "kind:          %s\n", route.Kind)
			fmt.Fprintf(out, "weaver:        %s\n", route.Weaver)
			if route.Kind == sharelink.KindProduct && route.Valid() {
				fmt.Fprintf(out, "product id:    %d\n", route.ProductID)
			}
			ct := route.CustomerType
			if ct.Defaulted {
				fmt.Fprintf(out, "customer type: %s (unrecognised %q)\n", ct.Type.Token(), ct.Raw)
			} else {
				fmt.Fprintf(out, "customer type: %s\n", ct.Type.Token())
			}
			if !route.Valid() {
				return fmt.Errorf("invalid %s link: %w", route.Kind, route.Err)
			}
			return nil
		},
	}
}

func newPriceCmd(opts *options) *cobra.Command {
	var prices domain.PriceSet

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Show the price a customer type sees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if prices.Retail < 0 || prices.Wholesale < 0 || prices.Direct < 0 {
				return errors.New("prices must not be negative")
			}
			return opts.printLinks(cmd.OutOrStdout(), func(ct domain.CustomerType) string {
				return domain.FormatPrice(domain.ResolvePrice(prices, ct))
			})
		},
	}
	cmd.Flags().Int64Var(&prices.Retail, "retail", 0, "retail price in rupees")
	cmd.Flags().Int64Var(&prices.Wholesale, "wholesale", 0, "wholesale price in rupees")
	cmd.Flags().Int64Var(&prices.Direct, "direct", 0, "direct price in rupees")
	addTypeFlags(cmd, opts)
	return cmd
}

func addTypeFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVarP(&opts.customerType, "type", "t", domain.TokenRetail, "customer type: retail, wholesale or direct")
	cmd.Flags().BoolVar(&opts.all, "all", false, "print one line per customer type")
}

// printLinks writes render(ct) for the selected type, or for every type with
// a label when --all is set.
func (o *options) printLinks(out io.Writer, render func(domain.CustomerType) string) error {
	if o.all {
		for _, ct := range domain.CustomerTypes() {
			fmt.Fprintf(out, "%-10s %s\n", ct.Label(), render(ct))
		}
		return nil
	}

	ct, err := domain.ParseCustomerTypeStrict(o.customerType)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, render(ct))
	return nil
}

func (o *options) tools() (*sharelink.Builder, *sharelink.Parser, error) {
	if o.baseURL == "" {
		return nil, nil, errors.New("--base-url or PUBLIC_APP_URL is required")
	}
	builder, err := sharelink.NewBuilder(o.baseURL)
	if err != nil {
		return nil, nil, err
	}
	parser, err := o.parser()
	if err != nil {
		return nil, nil, err
	}
	return builder, parser, nil
}

func (o *options) parser() (*sharelink.Parser, error) {
	switch o.identity {
	case "principal":
		return sharelink.NewParser(nil), nil
	case "opaque":
		return sharelink.NewParser(sharelink.OpaqueIdentity), nil
	default:
		return nil, fmt.Errorf("unknown identity format %q", o.identity)
	}
}
