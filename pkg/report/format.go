package report

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"ppa/pkg/models"
)

var printer = message.NewPrinter(language.English)

// round2 rounds half away from zero.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func money(currency string, v float64) string {
	return currency + printer.Sprintf("%.2f", round2(v))
}

func percent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1) + "%"
}

func bps(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	if d.IsPositive() {
		return "+" + d.String()
	}
	return d.String()
}

func ppw(n models.NullFloat) string {
	if !n.Valid {
		return "n/a"
	}
	return decimal.NewFromFloat(n.Float64).StringFixed(3)
}

func ppwRange(r models.Range) string {
	if !r.Valid {
		return "n/a"
	}
	return decimal.NewFromFloat(r.Min).StringFixed(3) + " – " + decimal.NewFromFloat(r.Max).StringFixed(3)
}

func index(n models.NullFloat) string {
	if !n.Valid {
		return "n/a"
	}
	return decimal.NewFromFloat(n.Float64).StringFixed(2)
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

func cell(s string) string {
	return cellEscaper.Replace(s)
}
