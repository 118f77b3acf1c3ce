// Package linker builds the IBES to Compustat link table.
//
// Identifier joins ignore the link date windows on purpose: CUSIP matching
// between IBES and CRSP is stable enough that date-range matching adds
// little, so every historical CUSIP is used.
package linker

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ibeslink/internal/frame"
	"github.com/sells-group/ibeslink/internal/wrds"
)

// TableRef names a source table and the columns fetched from it.
type TableRef struct {
	Library string
	Table   string
	Columns []string
}

// Source tables on WRDS.
var (
	IBESNames = TableRef{Library: "ibes", Table: "idsum", Columns: []string{"ticker", "cusip", "cname"}}
	CRSPNames = TableRef{Library: "crsp", Table: "stocknames", Columns: []string{"permno", "ncusip"}}
	LinkHist  = TableRef{Library: "crsp", Table: "ccmxpf_lnkhist", Columns: []string{"gvkey", "lpermno", "lpermco", "linktype", "linkprim"}}
	Security  = TableRef{Library: "comp", Table: "security", Columns: []string{"gvkey", "ibtic"}}
)

// Link history codes kept by the filter. LC/LU are links researched by
// CRSP (LU unconfirmed); P/C mark the primary or primary-when-alone issue.
var (
	LinkTypes = []string{"LC", "LU"}
	LinkPrims = []string{"P", "C"}
)

// Output column orders.
var (
	TransitiveColumns = []string{"gvkey", "lpermno", "lpermco", "ticker", "cusip", "cname", "permno", "ncusip"}
	DirectColumns     = []string{"gvkey", "ibtic", "ticker", "cusip", "cname"}
)

// Stats records row counts at each stage of a build.
type Stats struct {
	IBES     int `json:"ibes"`
	CRSP     int `json:"crsp,omitempty"`
	Matched  int `json:"matched,omitempty"`
	LinkHist int `json:"link_hist,omitempty"`
	Linked   int `json:"linked,omitempty"`
	Security int `json:"security,omitempty"`
	Output   int `json:"output"`
}

// Result is the final link table plus per-stage counts.
type Result struct {
	Strategy Strategy
	Table    *frame.Table
	Stats    Stats
}

// Linker fetches the source tables and joins them.
type Linker struct {
	src wrds.Source
}

// New creates a Linker reading from src.
func New(src wrds.Source) *Linker {
	return &Linker{src: src}
}

// Build produces the link table for s. An empty table is a valid result.
func (l *Linker) Build(ctx context.Context, s Strategy) (*Result, error) {
	var (
		res *Result
		err error
	)
	switch s {
	case Transitive:
		res, err = l.buildTransitive(ctx)
	case Direct:
		res, err = l.buildDirect(ctx)
	default:
		return nil, eris.Errorf("linker: unsupported strategy %d", int(s))
	}
	if err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("component", "linker"), zap.Stringer("method", s))
	if res.Table.Len() == 0 {
		log.Warn("link table is empty", zap.Any("stats", res.Stats))
	} else {
		log.Info("link table built", zap.Any("stats", res.Stats))
	}
	return res, nil
}

func (l *Linker) buildTransitive(ctx context.Context) (*Result, error) {
	res := &Result{Strategy: Transitive}

	ibes, err := l.fetchDistinct(ctx, IBESNames)
	if err != nil {
		return nil, err
	}
	res.Stats.IBES = ibes.Len()

	crsp, err := l.fetchDistinct(ctx, CRSPNames)
	if err != nil {
		return nil, err
	}
	res.Stats.CRSP = crsp.Len()

	matched, err := frame.InnerJoin(ibes, crsp, "cusip", "ncusip")
	if err != nil {
		return nil, eris.Wrap(err, "linker: join ibes to crsp")
	}
	res.Stats.Matched = matched.Len()

	hist, err := l.fetch(ctx, LinkHist)
	if err != nil {
		return nil, err
	}
	links, err := FilterLinks(hist)
	if err != nil {
		return nil, err
	}
	res.Stats.LinkHist = links.Len()

	joined, err := frame.InnerJoin(links, matched, "lpermno", "permno")
	if err != nil {
		return nil, eris.Wrap(err, "linker: join link history")
	}
	res.Stats.Linked = joined.Len()

	out, err := joined.Distinct().Select(TransitiveColumns...)
	if err != nil {
		return nil, eris.Wrap(err, "linker: project output")
	}
	res.Table = out
	res.Stats.Output = out.Len()
	return res, nil
}

func (l *Linker) buildDirect(ctx context.Context) (*Result, error) {
	res := &Result{Strategy: Direct}

	ibes, err := l.fetchDistinct(ctx, IBESNames)
	if err != nil {
		return nil, err
	}
	res.Stats.IBES = ibes.Len()

	sec, err := l.fetchDistinct(ctx, Security)
	if err != nil {
		return nil, err
	}
	res.Stats.Security = sec.Len()

	joined, err := frame.InnerJoin(ibes, sec, "ticker", "ibtic")
	if err != nil {
		return nil, eris.Wrap(err, "linker: join ibes to security")
	}
	res.Stats.Linked = joined.Len()

	out, err := joined.Distinct().Select(DirectColumns...)
	if err != nil {
		return nil, eris.Wrap(err, "linker: project output")
	}
	res.Table = out
	res.Stats.Output = out.Len()
	return res, nil
}

// FilterLinks keeps link history rows with an allowed link type and link
// priority, then drops the two code columns.
func FilterLinks(hist *frame.Table) (*frame.Table, error) {
	kept, err := hist.In("linktype", LinkTypes...)
	if err != nil {
		return nil, eris.Wrap(err, "linker: filter link type")
	}
	kept, err = kept.In("linkprim", LinkPrims...)
	if err != nil {
		return nil, eris.Wrap(err, "linker: filter link priority")
	}
	out, err := kept.Drop("linktype", "linkprim")
	if err != nil {
		return nil, eris.Wrap(err, "linker: drop link codes")
	}
	return out, nil
}

func (l *Linker) fetch(ctx context.Context, ref TableRef) (*frame.Table, error) {
	t, err := l.src.Fetch(ctx, ref.Library, ref.Table, ref.Columns)
	if err != nil {
		return nil, eris.Wrapf(err, "linker: fetch %s.%s", ref.Library, ref.Table)
	}
	return t, nil
}

func (l *Linker) fetchDistinct(ctx context.Context, ref TableRef) (*frame.Table, error) {
	t, err := l.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return t.Distinct(), nil
}
