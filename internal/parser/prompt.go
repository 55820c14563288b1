package parser

import "strconv"

// BuildBillExtractionPrompt returns the page-wise line item extraction prompt
// for a bill of pageCount pages. A pageCount of zero means unknown.
func BuildBillExtractionPrompt(pageCount int) string {
	pages := "every page"
	if pageCount > 0 {
		pages = "each of the " + strconv.Itoa(pageCount) + " pages"
	}
	return `You are a medical and retail bill extraction assistant. Read ` + pages + ` of the provided bill and extract every charged line item, page by page.

IMPORTANT INSTRUCTIONS:
- Report one entry per physical page, in document order, even when a page has no line items (use an empty "bill_items" array).
- Classify each page with exactly one "page_type":
  - "Final Bill": the summary or final invoice page that carries the grand total.
  - "Bill Detail": itemised detail or breakup pages.
  - "Pharmacy": pharmacy or medicine issue pages.
- Extract items exactly as printed on that page. If the same charge is printed on several pages, report it on every page where it appears.
- Do not include subtotals, taxes summaries, discounts summaries, grand totals, or payment lines as items.
- "item_amount" is the net amount charged for the line. "item_rate" is the unit price. "item_quantity" defaults to 1 when not printed.
- Numbers must be plain JSON numbers without currency symbols or thousands separators. Use null for a value that is not printed.
- If a Final Bill page prints a grand total, report it in "printed_total"; otherwise use null.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation, just the raw JSON object:
{
  "pagewise_line_items": [
    {
      "page_no": "1",
      "page_type": "Bill Detail",
      "bill_items": [
        {"item_name": "", "item_amount": 0, "item_rate": 0, "item_quantity": 1}
      ]
    }
  ],
  "printed_total": null
}`
}
