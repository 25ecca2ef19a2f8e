package pooppdf

import (
	"html"
	"strings"
)

// Fixed print layout. Pagination stays the same whatever the page content.
const (
	MarginTopPx    = 80
	MarginBottomPx = 80
	PrintScale     = 0.8
	PrintWidthPx   = 1080
)

// headerFooterCSS styles the header and footer templates.
const headerFooterCSS = "<style>h1 { font-size:10px; width: 100%; }</style>"

// Chrome substitutes these classes with the current page and the page count.
const (
	pageNumberPlaceholder = `<span class="pageNumber"></span>`
	totalPagesPlaceholder = `<span class="totalPages"></span>`
)

// BuildPrintOptions derives the print layout for a request.
// It is pure: the same request always yields the same options.
func BuildPrintOptions(req CaptureRequest) PrintOptions {
	opts := PrintOptions{
		OutputPath:          req.OutputPath,
		DisplayHeaderFooter: true,
		Margins:             Margins{Top: MarginTopPx, Bottom: MarginBottomPx},
		Scale:               PrintScale,
		WidthPx:             PrintWidthPx,
	}

	if req.Title != "" {
		opts.HeaderTemplate = buildHeaderTemplate(req.Title)
	}
	if req.ShowPageNumbers {
		opts.FooterTemplate = buildFooterTemplate()
	}

	return opts
}

// buildHeaderTemplate centers the escaped title in a small h1.
func buildHeaderTemplate(title string) string {
	return centeredHeading(html.EscapeString(title))
}

// buildFooterTemplate renders "Page N of M".
func buildFooterTemplate() string {
	return centeredHeading("Page " + pageNumberPlaceholder + " of " + totalPagesPlaceholder)
}

func centeredHeading(content string) string {
	var b strings.Builder
	b.WriteString(headerFooterCSS)
	b.WriteString(`<h1 align="center">`)
	b.WriteString(content)
	b.WriteString("</h1>")
	return b.String()
}
