package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/volari/license-quoter/internal/catalog"
	"github.com/volari/license-quoter/internal/persistence"
	"github.com/volari/license-quoter/internal/pricing"
	"github.com/volari/license-quoter/internal/quotes"
)

func displayCurrency(cat *catalog.Catalog, mode pricing.CurrencyMode) catalog.Currency {
	if mode == pricing.ModeResale {
		return cat.Currency.Resale
	}
	return cat.Currency.Origin
}

func percent(v float64) string {
	return strconv.FormatFloat(pricing.RoundCents(v), 'f', -1, 64) + "%"
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetBorder(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func renderCatalog(w io.Writer, cat *catalog.Catalog) {
	usd := cat.Currency.Origin

	fmt.Fprintf(w, "%s - %s\n\n", cat.Company.Name, cat.Company.Tagline)

	products := newTable(w, "Type", "ID", "Name", "Price/user/month", "Description")
	for _, p := range cat.Licenses {
		products.Append([]string{string(catalog.KindLicense), p.ID, p.Name, pricing.FormatMoney(p.UnitPrice, usd), p.Description})
	}
	for _, p := range cat.Addons {
		products.Append([]string{string(catalog.KindAddon), p.ID, p.Name, pricing.FormatMoney(p.UnitPrice, usd), p.Description})
	}
	products.Render()
	fmt.Fprintln(w)

	durations := newTable(w, "Duration", "Name", "Months", "Multiplier", "Discount")
	for _, d := range cat.ContractDurations {
		durations.Append([]string{d.ID, d.Name, strconv.Itoa(d.Months), strconv.FormatFloat(d.Multiplier, 'f', -1, 64), percent(d.DiscountPercent)})
	}
	durations.Render()
	fmt.Fprintln(w)

	tiers := newTable(w, "Users", "Quantity discount")
	for _, t := range cat.QuantityDiscounts {
		users := fmt.Sprintf("%d-%d", t.Min, t.Max)
		if t.Max == 0 {
			users = fmt.Sprintf("%d+", t.Min)
		}
		tiers.Append([]string{users, percent(t.DiscountPercent)})
	}
	tiers.Render()
}

func renderQuote(w io.Writer, cat *catalog.Catalog, q quotes.Quote, detailed bool) {
	if len(q.Items) == 0 {
		fmt.Fprintln(w, "The quote is empty")
		return
	}
	cur := displayCurrency(cat, q.Currency.Mode)
	usd := cat.Currency.Origin

	items := newTable(w, "#", "Product", "Contract", "Users", "Discount", "Total", "Monthly", "User/month")
	for _, it := range q.Items {
		itemCur := displayCurrency(cat, it.Currency)
		items.Append([]string{
			strconv.Itoa(it.ID),
			it.Name,
			it.Contract.Name,
			strconv.Itoa(it.Quantity),
			percent(it.TotalDiscountRate),
			pricing.FormatMoney(it.Total, itemCur),
			pricing.FormatMoney(it.MonthlyAverage, itemCur),
			pricing.FormatMoney(it.PerUserPerMonth, itemCur),
		})
	}
	items.Render()

	fmt.Fprintf(w, "\nSubtotal (list, USD): %s\n", pricing.FormatMoney(q.Subtotal(), usd))
	fmt.Fprintf(w, "Total (%s): %s\n", q.Currency.Mode, pricing.FormatMoney(q.Total(), cur))

	if !detailed {
		return
	}
	for _, it := range q.Items {
		if it.Resale != nil {
			fmt.Fprintf(w, "\n#%d %s\n", it.ID, it.Name)
			renderResale(w, cat, it.Resale)
		}
	}
}

func renderResale(w io.Writer, cat *catalog.Catalog, r *pricing.ResaleBreakdown) {
	brl := cat.Currency.Resale
	t := newTable(w, "Step", "Amount")
	t.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	t.AppendBulk([][]string{
		{"Cost (USD)", pricing.FormatMoney(r.OriginUSD, cat.Currency.Origin)},
		{"Exchange rate", strconv.FormatFloat(r.ExchangeRate, 'f', -1, 64)},
		{"Cost", pricing.FormatMoney(r.CostLocal, brl)},
		{"Income tax (" + percent(cat.Tax.Import.IncomeTaxRate) + ")", pricing.FormatMoney(r.IncomeTaxAmount, brl)},
		{"Financial tax (" + percent(cat.Tax.Import.FinancialTaxRate) + ")", pricing.FormatMoney(r.FinancialTaxAmount, brl)},
		{"Fixed fee", pricing.FormatMoney(r.FixedFeeLocal, brl)},
		{"Cost with import taxes", pricing.FormatMoney(r.CostWithImportTaxes, brl)},
		{"Commercialization taxes (" + percent(r.CommercializationRate) + ")", pricing.FormatMoney(r.CommercializationAmount, brl)},
		{"Margin (" + percent(r.MarginPercent) + ", target " + percent(r.TargetMargin) + ")", pricing.FormatMoney(r.MarginAmount, brl)},
		{"Selling price", pricing.FormatMoney(r.SellingPrice, brl)},
	})
	t.Render()
}

func renderHistory(w io.Writer, cat *catalog.Catalog, history []persistence.SavedQuote) {
	if len(history) == 0 {
		fmt.Fprintln(w, "No saved quotes")
		return
	}

	t := newTable(w, "ID", "Name", "Items", "Total", "Saved")
	for _, h := range history {
		mode := pricing.ModeOrigin
		if len(h.Items) > 0 {
			mode = h.Items[0].Currency
		}
		t.Append([]string{
			strconv.FormatInt(h.ID, 10),
			h.Name,
			strconv.Itoa(h.ItemCount),
			pricing.FormatMoney(h.Total, displayCurrency(cat, mode)),
			h.Timestamp.Local().Format(time.DateTime),
		})
	}
	t.Render()
}
