package view

import "fmt"

// Pager describes the position of the current page. PageSize 0 means the
// page size is unknown.
type Pager struct {
	Page       int
	PageSize   int
	TotalItems int
}

func (p Pager) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a further page exists. With an unknown page size
// it cannot be ruled out.
func (p Pager) HasNext() bool {
	if p.PageSize <= 0 {
		return true
	}
	return p.Page*p.PageSize < p.TotalItems
}

// TotalPages is 0 when the page size is unknown.
func (p Pager) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return max(1, (p.TotalItems+p.PageSize-1)/p.PageSize)
}

// Pagination renders the page indicator, e.g. "Page 2 of 3 (250 items)".
func Pagination(p Pager) string {
	if n := p.TotalPages(); n > 0 {
		return fmt.Sprintf("Page %d of %d (%d items)", p.Page, n, p.TotalItems)
	}
	return fmt.Sprintf("Page %d (%d items)", p.Page, p.TotalItems)
}

// PagerControls renders the prev/next controls, dimming disabled ones.
func PagerControls(p Pager) string {
	styles := DefaultStyles()

	prev, next := styles.Disabled.Render("‹ prev"), styles.Disabled.Render("next ›")
	if p.HasPrev() {
		prev = styles.Active.Render("‹ prev")
	}
	if p.HasNext() {
		next = styles.Active.Render("next ›")
	}

	return prev + "  " + styles.Body.Render(Pagination(p)) + "  " + next
}
