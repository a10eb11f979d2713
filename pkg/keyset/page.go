package keyset

// Page describes one fetched page: where it started, how many rows were asked
// for and returned, and the keysets of its first and last rows in display order.
type Page struct {
	FirstResult int
	MaxResults  int
	Size        int
	Lowest      Keyset
	Highest     Keyset
}

// Next links to the page after this one, or nil for an empty page.
func (p *Page) Next() *Link {
	if p.Size == 0 {
		return nil
	}
	return finalizedLink(Next, p.Highest)
}

// Previous links to the page before this one, or nil for an empty page.
func (p *Page) Previous() *Link {
	if p.Size == 0 {
		return nil
	}
	return finalizedLink(Previous, p.Lowest)
}

// Same links to this page again, starting at its first row.
func (p *Page) Same() *Link {
	if p.Size == 0 {
		return nil
	}
	return finalizedLink(Same, p.Lowest)
}

// NextCursor encodes Next. It returns "" for an empty page.
func (p *Page) NextCursor() (string, error) {
	return cursorOf(p.Next())
}

// PreviousCursor encodes Previous. It returns "" for an empty page.
func (p *Page) PreviousCursor() (string, error) {
	return cursorOf(p.Previous())
}

func finalizedLink(mode Mode, ks Keyset) *Link {
	return &Link{mode: mode, state: finalized, values: ks}
}

func cursorOf(l *Link) (string, error) {
	if l == nil {
		return "", nil
	}
	return EncodeCursor(l)
}
