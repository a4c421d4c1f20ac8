package report

import (
	"strings"
	"unicode/utf8"
)

// A4 portrait in millimetres.
const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	Margin       = 10.0
	ContentWidth = PageWidth - 2*Margin
	BodyHeight   = PageHeight - 2*Margin

	epsilon = 1e-6
)

type Color struct{ R, G, B uint8 }

var (
	Black = Color{0, 0, 0}
	Navy  = Color{25, 55, 109}
	Grey  = Color{100, 100, 100}
	Dim   = Color{60, 60, 60}
)

// FontStyle uses the core font style letters: "", "B", "I" or "BI".
type FontStyle string

const (
	Regular    FontStyle = ""
	Bold       FontStyle = "B"
	Italic     FontStyle = "I"
	BoldItalic FontStyle = "BI"
)

type Font struct {
	Style FontStyle
	Size  float64
}

// LineHeight is the vertical advance for one line set in f.
func (f Font) LineHeight() float64 {
	return f.Size * 0.45
}

// Measurer reports the printed width of text in millimetres.
type Measurer interface {
	Width(text string, f Font) float64
}

type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
)

type OpKind int

const (
	OpText OpKind = iota
	OpRule
)

// Op is one drawing instruction. For text, (X, Y) is the top-left of a line
// box W wide and H tall; for a rule it is the start of a horizontal line W
// long and H thick.
type Op struct {
	Kind  OpKind
	X, Y  float64
	W, H  float64
	Text  string
	Font  Font
	Color Color
	Align Align
}

type Page struct {
	Ops []Op
}

type Document struct {
	Title string
	Pages []Page
}

type span struct {
	text  string
	font  Font
	color Color
}

// line is one row of a block. A line without spans is vertical space.
type line struct {
	spans  []span
	indent float64
	height float64
	align  Align
	rule   *Color
}

func (l line) isGap() bool { return len(l.spans) == 0 && l.rule == nil }

// block is a unit that stays on one page when it can.
type block struct {
	lines        []line
	breakBefore  bool
	keepWithNext bool
}

func (b block) height() float64 {
	var h float64
	for _, l := range b.lines {
		h += l.height
	}
	return h
}

// leadHeight is the height up to and including the first printed line.
func (b block) leadHeight() float64 {
	var h float64
	for _, l := range b.lines {
		h += l.height
		if !l.isGap() {
			break
		}
	}
	return h
}

// builder accumulates the lines of one block.
type builder struct {
	m Measurer
	b block
}

func newBuilder(m Measurer) *builder {
	return &builder{m: m}
}

func (bl *builder) gap(h float64) *builder {
	bl.b.lines = append(bl.b.lines, line{height: h})
	return bl
}

func (bl *builder) rule(c Color, h float64) *builder {
	bl.b.lines = append(bl.b.lines, line{height: h, rule: &c})
	return bl
}

// text wraps s to the width left after indent.
func (bl *builder) text(indent float64, f Font, c Color, s string) *builder {
	for _, w := range wrap(bl.m, s, ContentWidth-indent, f) {
		bl.b.lines = append(bl.b.lines, line{
			spans:  []span{{text: w, font: f, color: c}},
			indent: indent,
			height: f.LineHeight(),
			align:  AlignLeft,
		})
	}
	return bl
}

func (bl *builder) centered(f Font, c Color, s string) *builder {
	for _, w := range wrap(bl.m, s, ContentWidth, f) {
		bl.b.lines = append(bl.b.lines, line{
			spans:  []span{{text: w, font: f, color: c}},
			height: f.LineHeight(),
			align:  AlignCenter,
		})
	}
	return bl
}

// labelled prints label then value on the same line, continuing the value
// with a hanging indent under itself.
func (bl *builder) labelled(indent float64, lf Font, label string, vf Font, vc Color, value string) *builder {
	lw := bl.m.Width(label, lf)
	avail := ContentWidth - indent - lw
	if avail < ContentWidth/4 {
		// Label too wide to hang from; put the value underneath.
		bl.text(indent, lf, Black, label)
		return bl.text(indent, vf, vc, value)
	}
	h := max(lf.LineHeight(), vf.LineHeight())
	for i, w := range wrap(bl.m, value, avail, vf) {
		l := line{indent: indent + lw, height: h, align: AlignLeft}
		if i == 0 {
			l.indent = indent
			l.spans = append(l.spans, span{text: label, font: lf, color: Black})
		}
		l.spans = append(l.spans, span{text: w, font: vf, color: vc})
		bl.b.lines = append(bl.b.lines, l)
	}
	return bl
}

func (bl *builder) breakBefore() *builder {
	bl.b.breakBefore = true
	return bl
}

func (bl *builder) keepWithNext() *builder {
	bl.b.keepWithNext = true
	return bl
}

func (bl *builder) done() block {
	return bl.b
}

// wrap breaks s into lines no wider than width. Explicit newlines start a
// new line and words wider than the line are split between runes.
func wrap(m Measurer, s string, width float64, f Font) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var out []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		cur := ""
		for _, w := range words {
			candidate := w
			if cur != "" {
				candidate = cur + " " + w
			}
			if m.Width(candidate, f) <= width+epsilon {
				cur = candidate
				continue
			}
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
			for m.Width(w, f) > width+epsilon {
				head, tail := splitRunes(m, w, width, f)
				out = append(out, head)
				w = tail
			}
			cur = w
		}
		out = append(out, cur)
	}
	// Trailing blank lines add nothing to the page.
	for len(out) > 1 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// splitRunes returns the longest prefix of w that fits, never empty.
func splitRunes(m Measurer, w string, width float64, f Font) (string, string) {
	cut := 0
	for i := range w {
		if i == 0 {
			continue
		}
		if m.Width(w[:i], f) > width+epsilon {
			break
		}
		cut = i
	}
	if cut == 0 {
		_, size := utf8.DecodeRuneInString(w)
		cut = size
	}
	return w[:cut], w[cut:]
}

// paginate places blocks top to bottom. A block moves to a fresh page when
// it does not fit in the space left; a block taller than a whole page flows,
// breaking only between its lines.
func paginate(m Measurer, title string, blocks []block) *Document {
	p := &pager{m: m, doc: &Document{Title: title}}
	p.newPage()
	for i, b := range blocks {
		if b.breakBefore && !p.pageEmpty() {
			p.newPage()
		}

		need := b.height()
		if b.keepWithNext && i+1 < len(blocks) && !blocks[i+1].breakBefore {
			need += blocks[i+1].leadHeight()
		}

		switch {
		case need <= p.remaining()+epsilon:
			p.emitAll(b)
		case need <= BodyHeight+epsilon:
			if !p.pageEmpty() {
				p.newPage()
			}
			p.emitAll(b)
		default:
			p.flow(b)
		}
	}
	return p.doc
}

type pager struct {
	m   Measurer
	doc *Document
	y   float64
}

func (p *pager) newPage() {
	p.doc.Pages = append(p.doc.Pages, Page{})
	p.y = Margin
}

func (p *pager) pageEmpty() bool {
	return len(p.doc.Pages[len(p.doc.Pages)-1].Ops) == 0
}

func (p *pager) remaining() float64 {
	return PageHeight - Margin - p.y
}

func (p *pager) emitAll(b block) {
	for _, l := range b.lines {
		if l.height > p.remaining()+epsilon {
			// Only trailing spacing can overrun here; drop it.
			if l.isGap() {
				continue
			}
			p.newPage()
		}
		p.emit(l)
	}
}

func (p *pager) flow(b block) {
	for _, l := range b.lines {
		if l.height > p.remaining()+epsilon {
			p.newPage()
			if l.isGap() {
				continue
			}
		}
		p.emit(l)
	}
}

func (p *pager) emit(l line) {
	page := &p.doc.Pages[len(p.doc.Pages)-1]
	switch {
	case l.rule != nil:
		page.Ops = append(page.Ops, Op{
			Kind:  OpRule,
			X:     Margin,
			Y:     p.y + l.height/2,
			W:     ContentWidth,
			H:     0.5,
			Color: *l.rule,
		})
	case l.align == AlignCenter:
		for _, s := range l.spans {
			page.Ops = append(page.Ops, Op{
				Kind: OpText, X: Margin, Y: p.y, W: ContentWidth, H: l.height,
				Text: s.text, Font: s.font, Color: s.color, Align: AlignCenter,
			})
		}
	default:
		x := Margin + l.indent
		for _, s := range l.spans {
			w := p.m.Width(s.text, s.font)
			page.Ops = append(page.Ops, Op{
				Kind: OpText, X: x, Y: p.y, W: w, H: l.height,
				Text: s.text, Font: s.font, Color: s.color, Align: AlignLeft,
			})
			x += w
		}
	}
	p.y += l.height
}
