package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"tally/internal/core"
	"tally/internal/report"
)

// formatAmount formats cents as a rupee string with thousands grouping
// (e.g., "₹1,234.56").
func formatAmount(m core.Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	var grouped strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		grouped.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if grouped.Len() > 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteString(whole[i : i+3])
	}
	s := fmt.Sprintf("%s.%02d", grouped.String(), cents%100)
	if neg {
		return "-₹" + s
	}
	return "₹" + s
}

// sanitizeInput removes potentially dangerous characters and trims
// whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// cleanCategoryLabel strips leading display decoration (emoji and
// spacing) from a submitted category value. The stored label always
// starts with a letter; anything a client prepends for presentation is
// dropped before the value reaches the taxonomy.
func cleanCategoryLabel(s string) string {
	s = strings.TrimSpace(s)
	start := len(s)
	for i, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			start = i
			break
		}
	}
	return s[start:]
}

// categoryIcons decorates the closed taxonomy for display. Stored
// values never carry these.
var categoryIcons = map[core.Category]string{
	core.CategoryFood:          "🍕",
	core.CategoryTransport:     "🚗",
	core.CategoryUtilities:     "🏠",
	core.CategoryEntertainment: "🎬",
	core.CategoryShopping:      "🛍️",
	core.CategoryHealthcare:    "🏥",
	core.CategoryEducation:     "📚",
	core.CategoryBusiness:      "💼",
	core.CategoryGifts:         "🎁",
	core.CategoryTechnology:    "📱",
	core.CategoryFitness:       "🏋️",
	core.CategoryTravel:        "✈️",
	core.CategoryOther:         "📋",
}

func categoryIcon(c core.Category) string {
	return categoryIcons[c]
}

// categoryOption pairs a stored category value with its decorated
// display label for select widgets.
type categoryOption struct {
	Value string
	Label string
}

func categoryOptions() []categoryOption {
	opts := make([]categoryOption, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		opts = append(opts, categoryOption{
			Value: c.String(),
			Label: categoryIcon(c) + " " + c.String(),
		})
	}
	return opts
}

// parseFilter builds the record filter from query parameters, widening
// every absent bound to the extremes of the data. A query with no
// category values is read two ways: a bare view load admits every
// category, while a submitted filter form (marked by filtered=1)
// admits none, which is the defined result of deselecting everything.
func parseFilter(query url.Values, records []core.Record) (report.Filter, error) {
	bounds, ok := report.DataBounds(records)
	if !ok {
		bounds = report.Bounds{}
	}

	f := report.Filter{
		Start:    bounds.MinDate,
		End:      bounds.MaxDate,
		MinCents: bounds.MinAmount.Cents,
		MaxCents: bounds.MaxAmount.Cents,
	}

	if v := strings.TrimSpace(query.Get("start")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return report.Filter{}, fmt.Errorf("start date: %w", err)
		}
		f.Start = d
	}
	if v := strings.TrimSpace(query.Get("end")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return report.Filter{}, fmt.Errorf("end date: %w", err)
		}
		f.End = d
	}
	if v := strings.TrimSpace(query.Get("min")); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return report.Filter{}, fmt.Errorf("minimum amount: %w", err)
		}
		f.MinCents = cents
	}
	if v := strings.TrimSpace(query.Get("max")); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return report.Filter{}, fmt.Errorf("maximum amount: %w", err)
		}
		f.MaxCents = cents
	}

	if values, present := query["category"]; present {
		for _, v := range values {
			c, err := core.ParseCategory(cleanCategoryLabel(sanitizeInput(v)))
			if err != nil {
				return report.Filter{}, fmt.Errorf("category %q: %w", v, err)
			}
			f.Categories = append(f.Categories, c)
		}
	} else if query.Get("filtered") == "" {
		f.Categories = core.Categories()
	}

	return f, nil
}
