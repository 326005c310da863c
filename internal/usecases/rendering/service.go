package rendering

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/temirlan/finance-dashboard-api/internal/domain"
)

const htmlContentType = "text/html; charset=utf-8"

var templateFuncs = template.FuncMap{
	"money":    formatMoney,
	"percent":  formatPercent,
	"date":     func(t time.Time) string { return t.Format("02.01.2006") },
	"datetime": func(t time.Time) string { return t.UTC().Format("02.01.2006 15:04") },
	"wrap": func(doc *domain.AnalyticsDocument, title string) map[string]interface{} {
		return map[string]interface{}{"Doc": doc, "Title": title}
	},
}

var reportTemplates = template.Must(
	template.New("report").Funcs(templateFuncs).Parse(reportTemplateText),
)

type htmlService struct{}

// NewHTMLRenderer builds the html/template backed renderer. Templates are
// parsed once at package init, so construction cannot fail.
func NewHTMLRenderer() Renderer {
	return &htmlService{}
}

func (s *htmlService) Render(document *domain.AnalyticsDocument) (*Artifact, error) {
	name, err := templateName(document)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := reportTemplates.ExecuteTemplate(&buf, name, document); err != nil {
		return nil, fmt.Errorf("rendering %s report: %w", document.Kind, err)
	}

	return &Artifact{
		Bytes:       buf.Bytes(),
		ContentType: htmlContentType,
		Extension:   "html",
	}, nil
}

// templateName maps the document kind to its body template, checking that the
// matching view is actually populated.
func templateName(document *domain.AnalyticsDocument) (string, error) {
	switch document.Kind {
	case domain.ReportKindLiquidity:
		if document.Liquidity == nil {
			return "", fmt.Errorf("liquidity document has no liquidity view")
		}
		return "liquidity", nil
	case domain.ReportKindRisk:
		if document.Risk == nil {
			return "", fmt.Errorf("risk document has no risk view")
		}
		return "risk", nil
	case domain.ReportKindCashflow:
		if document.Cashflow == nil {
			return "", fmt.Errorf("cashflow document has no cashflow view")
		}
		return "cashflow", nil
	}
	return "", fmt.Errorf("unknown report kind: %q", document.Kind)
}

// formatMoney renders a decimal with two fraction digits and spaces grouping
// the integer part, e.g. "48 000 000.00".
func formatMoney(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(' ')
		}
		grouped.WriteRune(digit)
	}

	return sign + grouped.String() + "." + fracPart
}

func formatPercent(value decimal.Decimal) string {
	return value.StringFixed(1) + "%"
}
