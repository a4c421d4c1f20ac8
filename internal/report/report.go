// Package report lays the tracker data out as a paginated CPD report and
// writes it as PDF.
package report

import (
	"bytes"
	"io"
	"time"

	"github.com/khoahotran/cpd-tracker/internal/domain/competency"
	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
)

const DefaultTitle = "CPD Report"

type Options struct {
	Now      time.Time
	Taxonomy *competency.Taxonomy
	Measurer Measurer
}

func (o Options) withDefaults() Options {
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Taxonomy == nil {
		o.Taxonomy = competency.Default()
	}
	if o.Measurer == nil {
		o.Measurer = NewFontMeasurer()
	}
	return o
}

// Layout computes the pages without drawing them. It always returns at
// least the cover page and the three phase sections.
func Layout(data tracker.Data, opts Options) *Document {
	opts = opts.withDefaults()
	return paginate(opts.Measurer, DefaultTitle, compose(opts.Measurer, opts.Taxonomy, opts.Now, data))
}

// Render lays out data and writes the PDF to w.
func Render(w io.Writer, data tracker.Data, opts Options) (*Document, error) {
	opts = opts.withDefaults()
	doc := Layout(data, opts)
	if err := WritePDF(w, doc, opts.Now); err != nil {
		return nil, err
	}
	return doc, nil
}

func RenderBytes(data tracker.Data, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := Render(&buf, data, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
