package reconcile

import "billrecon/internal/domain"

// occurrence locates the retained copy of a charge.
type occurrence struct {
	page int
	item int
	rank int
}

// Deduplicate collapses charges repeated across pages. Items are matched by
// value (normalized name plus amount), never by similarity, so two differently
// priced items with the same name both survive.
//
// For each repeated key exactly one occurrence is kept: the one on the page
// type with the best rank under prec, ties going to the earliest page and then
// the earliest item. Every input page is returned in its original order, with
// an empty item list when nothing on it survived. The input is not modified.
func Deduplicate(pages []domain.Page, prec Precedence) []domain.Page {
	keys := make([][]Key, len(pages))
	kept := make(map[Key]occurrence)

	for pi := range pages {
		page := &pages[pi]
		rank := prec.Rank(page.PageType)
		keys[pi] = make([]Key, len(page.Items))
		for ii := range page.Items {
			key := Normalize(page.Items[ii])
			keys[pi][ii] = key
			if !key.Dedupable() {
				continue
			}
			cur, seen := kept[key]
			if !seen || rank < cur.rank {
				kept[key] = occurrence{page: pi, item: ii, rank: rank}
			}
		}
	}

	out := make([]domain.Page, 0, len(pages))
	for pi := range pages {
		page := &pages[pi]
		items := make([]domain.BillItem, 0, len(page.Items))
		for ii, item := range page.Items {
			key := keys[pi][ii]
			if key.Dedupable() {
				if occ := kept[key]; occ.page != pi || occ.item != ii {
					continue
				}
			}
			items = append(items, item)
		}
		out = append(out, domain.Page{
			PageNo:   page.PageNo,
			PageType: page.PageType,
			Items:    items,
		})
	}
	return out
}

// CountItems returns the number of items across all pages.
func CountItems(pages []domain.Page) int {
	n := 0
	for i := range pages {
		n += len(pages[i].Items)
	}
	return n
}
