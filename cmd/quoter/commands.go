package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/volari/license-quoter/internal/catalog"
	"github.com/volari/license-quoter/internal/errors"
	"github.com/volari/license-quoter/internal/logger"
	"github.com/volari/license-quoter/internal/pricing"
)

func newRootCmd(open opener) *cobra.Command {
	var a *app

	root := &cobra.Command{
		Use:           "quoter",
		Short:         "Build license quotes with quantity discounts and resale pricing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			a, err = open(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "error:", describe(err))
			}
			return err
		},
	}

	current := func() *app { return a }
	root.AddCommand(
		newCatalogCmd(current),
		newAddCmd(current),
		newRemoveCmd(current),
		newClearCmd(current),
		newShowCmd(current),
		newCurrencyCmd(current),
		newSaveCmd(current),
		newHistoryCmd(current),
		newLoadCmd(current),
		newDeleteCmd(current),
		newExportCmd(current),
	)

	// report failures once, with the error code when there is one
	for _, c := range root.Commands() {
		run := c.RunE
		c.RunE = func(cmd *cobra.Command, args []string) error {
			defer func() {
				if cerr := a.close(); cerr != nil {
					logger.Warn("Failed to close storage", logger.Fields{"error": cerr.Error()})
				}
			}()
			err := run(cmd, args)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "error:", describe(err))
			}
			return err
		}
	}
	return root
}

func describe(err error) string {
	if appErr, ok := errors.As(err); ok {
		return appErr.Message + " (" + appErr.Code + ")"
	}
	return err.Error()
}

func newCatalogCmd(a func() *app) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List licenses, add-ons, contract durations and discount tiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asYAML {
				data, err := a().catalog.Marshal()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			renderCatalog(cmd.OutOrStdout(), a().catalog)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the catalog as a YAML file QUOTER_CATALOG accepts")
	return cmd
}

func newAddCmd(a func() *app) *cobra.Command {
	var req pricing.ItemRequest
	var kind string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Price a product selection and add it to the quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Kind = catalog.Kind(strings.ToLower(kind))
			if req.DurationID == "" {
				req.DurationID = a().catalog.DefaultDuration().ID
			}
			item, err := a().session.AddItem(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Added #%d %s x%d (%s): %s\n", item.ID, item.Name, item.Quantity, item.Contract.Name,
				pricing.FormatMoney(item.Total, displayCurrency(a().catalog, item.Currency)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", string(catalog.KindLicense), "product type (license|addon)")
	cmd.Flags().StringVarP(&req.ProductID, "product", "p", "", "product id")
	cmd.Flags().IntVarP(&req.Quantity, "quantity", "q", 1, "number of users")
	cmd.Flags().StringVarP(&req.DurationID, "duration", "d", "", "contract duration id (default: the catalog's first)")
	cmd.Flags().Float64Var(&req.DiscountPercent, "discount", 0, "commercial discount percent (0-100)")
	return cmd
}

func newRemoveCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove an item from the quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.ErrValidation("item-id", "must be an integer")
			}
			return a().session.RemoveItem(cmd.Context(), id)
		},
	}
}

func newClearCmd(a func() *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every item from the quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.ErrInvalidRequest("pass --yes to clear the quote", nil)
			}
			if err := a().session.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Quote cleared")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm clearing the quote")
	return cmd
}

func newShowCmd(a func() *app) *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			renderQuote(cmd.OutOrStdout(), a().catalog, a().session.Snapshot(), detailed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&detailed, "resale", false, "include the resale tax breakdown per item")
	return cmd
}

func newCurrencyCmd(a func() *app) *cobra.Command {
	var rate float64

	cmd := &cobra.Command{
		Use:   "currency [USD|BRL]",
		Short: "Show or change the quote currency; changing it re-prices every item",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a().session
			if len(args) == 1 {
				if err := s.ChangeCurrency(cmd.Context(), args[0], rate); err != nil {
					return err
				}
			}
			cc := s.Currency()
			if cc.Mode == pricing.ModeResale {
				fmt.Fprintf(cmd.OutOrStdout(), "Currency: %s (exchange rate %s)\n", cc.Mode,
					strconv.FormatFloat(cc.ExchangeRate, 'f', -1, 64))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Currency: %s\n", cc.Mode)
			}
			return nil
		},
	}
	cmd.Flags().Float64VarP(&rate, "rate", "r", 0, "BRL per USD; required for BRL")
	return cmd
}

func newSaveCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save [name]",
		Short: "Save the current quote to history",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := a().session.SaveToHistory(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %q as %d (%d items)\n", saved.Name, saved.ID, saved.ItemCount)
			return nil
		},
	}
}

func newHistoryCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List saved quotes, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := a().session.History(cmd.Context())
			if err != nil {
				return err
			}
			renderHistory(cmd.OutOrStdout(), a().catalog, history)
			return nil
		},
	}
}

func historyID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, errors.ErrValidation("quote-id", "must be an integer")
	}
	return id, nil
}

func newLoadCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load <quote-id>",
		Short: "Replace the current quote with a saved one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := historyID(args[0])
			if err != nil {
				return err
			}
			if err := a().session.LoadFromHistory(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded quote %d\n", id)
			return nil
		},
	}
}

func newDeleteCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <quote-id>",
		Short: "Delete a saved quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := historyID(args[0])
			if err != nil {
				return err
			}
			return a().session.DeleteFromHistory(cmd.Context(), id)
		},
	}
}

func newExportCmd(a func() *app) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current quote as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := a().session.Snapshot()
			doc := exportDocument{
				Company:  a().catalog.Company,
				Currency: q.Currency,
				Items:    q.Items,
				Subtotal: q.Subtotal(),
				Total:    q.Total(),
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return errors.ErrInternalServer("failed to encode quote", err)
			}
			data = append(data, '\n')

			if path == "" || path == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(path, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&path, "output", "o", "", "file to write; stdout when empty")
	return cmd
}

type exportDocument struct {
	Company  catalog.Company         `json:"company"`
	Currency pricing.CurrencyContext `json:"currency"`
	Items    []pricing.LineItem      `json:"items"`
	Subtotal float64                 `json:"subtotal"`
	Total    float64                 `json:"total"`
}
