package layout

// Paginate walks the block top to bottom and starts a new page whenever the
// next unit would cross the bottom margin. Units marked KeepWithNext move to
// the next page together with their follower. A unit taller than a whole
// page is placed alone at the top of a page and marked Clipped.
func Paginate(block *Block, page Page) ([]PageDescriptor, error) {
	if block == nil || len(block.Units) == 0 {
		return nil, ErrMissingRenderTarget
	}
	p := &paginator{block: block, page: page}
	p.newPage()

	units := block.Units
	for i := 0; i < len(units); {
		end := groupEnd(units, i)
		if !p.atTop() && p.cursor+p.groupHeight(units[i:end]) > p.bottom() {
			p.newPage()
		}
		for j := i; j < end; j++ {
			p.place(units[j])
		}
		i = end
	}
	return p.pages, nil
}

// groupEnd returns the exclusive end of the keep-with-next chain starting at i.
func groupEnd(units []Unit, i int) int {
	end := i + 1
	for end < len(units) && units[end-1].KeepWithNext {
		end++
	}
	return end
}

type paginator struct {
	block      *Block
	page       Page
	pages      []PageDescriptor
	cursor     float64
	lastMargin float64
}

func (p *paginator) newPage() {
	p.pages = append(p.pages, PageDescriptor{
		Number: len(p.pages) + 1,
		Page:   p.page,
		Styles: p.block.Styles,
	})
	p.cursor = p.page.MarginTop
	p.lastMargin = 0
}

func (p *paginator) current() *PageDescriptor { return &p.pages[len(p.pages)-1] }

func (p *paginator) atTop() bool { return len(p.current().Items) == 0 }

func (p *paginator) bottom() float64 { return p.page.HeightPx - p.page.MarginBottom }

// gap collapses adjacent margins the way CSS block margins do. Margins are
// dropped at the top of a page.
func (p *paginator) gap(u Unit) float64 {
	if p.atTop() {
		return 0
	}
	return max(p.lastMargin, u.MarginTop)
}

func (p *paginator) groupHeight(units []Unit) float64 {
	total := 0.0
	last := p.lastMargin
	for i, u := range units {
		if i == 0 {
			total += p.gap(u)
		} else {
			total += max(last, u.MarginTop)
		}
		total += u.Height
		last = u.MarginBottom
	}
	return total
}

func (p *paginator) place(u Unit) {
	y := p.cursor + p.gap(u)
	if !p.atTop() && y+u.Height > p.bottom() {
		p.newPage()
		y = p.cursor
	}
	clipped := y+u.Height > p.bottom()
	pg := p.current()
	pg.Items = append(pg.Items, Placed{Unit: u, X: p.page.MarginLeft, Y: y, Clipped: clipped})
	p.cursor = y + u.Height
	p.lastMargin = u.MarginBottom
}
