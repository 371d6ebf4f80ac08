package htmlprep

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// styleID marks the injected style block so repeated normalization does not
// accumulate duplicates.
const styleID = "tenk2pdf-print-css"

// printCSS forces Chromium's print pipeline to honor the page-break hints
// filings carry as inline styles, and keeps table rows whole across page
// boundaries.
const printCSS = `
@media print {
    [style*="page-break-after"] {
        page-break-after: always !important;
        break-after: always !important;
        display: block !important;
        height: 0 !important;
        border: none !important;
        margin: 0 !important;
        padding: 0 !important;
    }

    [style*="page-break-before"] {
        page-break-before: always !important;
        break-before: always !important;
    }

    tr {
        page-break-inside: avoid !important;
        break-inside: avoid !important;
    }
}
`

// NormalizeLayout injects the print CSS block into the document. The block
// goes in as the head's first child; a head is synthesized under the root
// element when missing; documents with no recognizable structure get the
// block prepended to the raw content. Idempotent: a document already
// carrying the block is returned unchanged apart from reserialization.
func NormalizeLayout(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		// No recognizable structure at all; fall back to a raw prepend.
		return styleTag() + htmlContent, nil //nolint:nilerr // fallback is the contract
	}

	if doc.Find("#" + styleID).Length() > 0 {
		return doc.Html()
	}

	if head := doc.Find("head"); head.Length() > 0 {
		head.First().PrependHtml(styleTag())
		return doc.Html()
	}

	if root := doc.Find("html"); root.Length() > 0 {
		root.First().PrependHtml("<head>" + styleTag() + "</head>")
		return doc.Html()
	}

	return styleTag() + htmlContent, nil
}

func styleTag() string {
	return fmt.Sprintf(`<style id=%q>%s</style>`, styleID, printCSS)
}
