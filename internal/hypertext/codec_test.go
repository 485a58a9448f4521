package hypertext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layout-hypertext/internal/design"
	"layout-hypertext/pkg/geometry"
)

func TestParseFormat_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"plain", "hello world"},
		{"escaped semicolon", "a(||sc||)b(||sc||)"},
		{"node", "R=(||1:10 20||) ohm"},
		{"branch", "(||2:-5 7||)"},
		{"device", "x(||4:5 5||)y(||2:3 3||)z"},
		{"proxy pairs", "(||1:0 0 100 100 200 200||)"},
		{"adjacent refs", "(||1:1 2||)(||1:3 4||)"},
		{"long text", "(||text||)line one\nline two(||sc||) end"},
		{"long text after prefix", "title: (||text||)body"},
		{"unknown kind", "(||9:1 2||)"},
		{"odd coordinates", "(||2:1 2 3||)"},
		{"not a number", "(||1:a b||)"},
		{"unknown token", "(||future||)"},
		{"unterminated", "tail (||1:1 2"},
		{"late text token", "(||1:1 1||)(||text||)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			l := f.eng.Parse(f.inv, tc.text)
			assert.Equal(t, tc.text, l.Format(true))
		})
	}
}

func TestParse_SemicolonNormalization(t *testing.T) {
	f := newFixture(t)
	l := f.eng.Parse(f.inv, "a;b")
	assert.Equal(t, "a;b", l.String(ConvPlain, true))
	assert.Equal(t, "a(||sc||)b", l.Format(true))
}

func TestParse_Segments(t *testing.T) {
	f := newFixture(t)
	l := f.eng.Parse(f.inv, "I(||sc||)=(||2:50 10||) at (||1:20 0||)")

	segs := l.Segments()
	require.Len(t, segs, 4)
	assert.Equal(t, SegText, segs[0].Kind)
	assert.Equal(t, "I;=", segs[0].Text)
	assert.Equal(t, SegBranch, segs[1].Kind)
	assert.Equal(t, SegText, segs[2].Kind)
	assert.Equal(t, " at ", segs[2].Text)
	assert.Equal(t, SegNode, segs[3].Kind)

	for _, ent := range l.Refs() {
		assert.True(t, ent.IsLinked())
		assert.True(t, ent.NeedsProxyFixup())
		assert.Nil(t, ent.ParentPath())
		assert.True(t, f.eng.Registry(f.inv).Contains(ent))
	}
	assert.Equal(t, geometry.Pt(50, 10), segs[1].Ref.Point())
}

func TestParse_LongText(t *testing.T) {
	f := newFixture(t)
	l := f.eng.Parse(f.inv, "(||text||)a(||sc||)b\n(||1:1 1||)")

	require.True(t, l.IsLongText())
	assert.Equal(t, "a;b\n(||1:1 1||)", l.LongText())
	assert.Empty(t, l.Refs())
	assert.Equal(t, "(||text||)"+LongTextOmitted, l.Format(false))
}

func TestParse_MaxCallDepth(t *testing.T) {
	f := newFixture(t)

	pairs := func(n int) string {
		s := ""
		for i := 0; i < n; i++ {
			if i > 0 {
				s += " "
			}
			s += "0 0"
		}
		return s
	}
	ok := f.eng.Parse(f.inv, "(||1:"+pairs(MaxCallDepth+1)+"||)")
	assert.Len(t, ok.Refs(), 1)

	tooDeep := f.eng.Parse(f.inv, "(||1:"+pairs(MaxCallDepth+2)+"||)")
	assert.Empty(t, tooDeep.Refs())
}

func TestFormat_ResolvedReference(t *testing.T) {
	f := newFixture(t)
	l := f.eng.Parse(f.top, "n=(||1:1020 0||)")
	require.Equal(t, "n=vin", l.String(ConvPlain, false))

	// Re-resolution moved the point into x1, the token carries the top
	// level point.
	ent := l.Refs()[0]
	assert.Equal(t, geometry.Pt(20, 0), ent.Point())
	assert.Equal(t, "n=(||1:1020 0||)", l.Format(true))
}

// proxyFixture places a text cell "lab" inside "mid" inside "ptop" so that
// the instances sit at (100,100) and (0,0) in their parents.
func proxyFixture(t *testing.T, f *fixture) (lab, ptop *design.Cell, xm, xl *design.Instance) {
	t.Helper()
	lab = f.lib.NewCell("lab", design.Electrical)
	lab.Add(design.NewWire("metal1", 2, true, 3, geometry.Pt(190, 200), geometry.Pt(220, 200)))
	mid := f.lib.NewCell("mid", design.Electrical)
	xl = mid.Place("xl", lab, geometry.Identity())
	xl.Box = geometry.RectInt{X: 90, Y: 90, Width: 20, Height: 20}
	ptop = f.lib.NewCell("ptop", design.Electrical)
	xm = ptop.Place("xm", mid, geometry.Identity())
	xm.Box = geometry.RectInt{X: -10, Y: -10, Width: 20, Height: 20}
	return lab, ptop, xm, xl
}

func TestProxyFixup(t *testing.T) {
	f := newFixture(t)
	lab, ptop, xm, xl := proxyFixture(t, f)

	l := f.eng.Parse(lab, "(||1:0 0 100 100 200 200||)")
	ent := l.Refs()[0]
	require.True(t, ent.NeedsProxyFixup())
	require.True(t, f.eng.Registry(lab).Contains(ent))

	assert.Equal(t, "3.xl.xm", ent.StringUpdate(nil))
	assert.False(t, ent.NeedsProxyFixup())

	proxy := ent.ProxyPath()
	require.Equal(t, 2, proxy.Len())
	assert.Equal(t, xm, proxy.Links().Inst)
	assert.Equal(t, geometry.Pt(0, 0), proxy.Links().Point())
	assert.Equal(t, xl, proxy.Links().Next.Inst)
	assert.Equal(t, geometry.Pt(100, 100), proxy.Links().Next.Point())

	assert.Equal(t, ptop, ent.Owner())
	assert.True(t, f.eng.Registry(ptop).Contains(ent))
	assert.False(t, f.eng.Registry(lab).Contains(ent))

	assert.Equal(t, "(||1:0 0 100 100 200 200||)", l.Format(true))
}

func TestProxyFixup_FailureClears(t *testing.T) {
	f := newFixture(t)
	lab, _, _, _ := proxyFixture(t, f)

	l := f.eng.Parse(lab, "(||1:500 500 100 100 200 200||)")
	ent := l.Refs()[0]

	assert.Equal(t, "", ent.StringUpdate(nil))
	assert.Equal(t, KindNone, ent.Kind())
	assert.True(t, ent.ProxyPath().Empty())
	assert.Equal(t, UnknownRef, l.String(ConvPlain, false))
	assert.True(t, f.eng.Registry(lab).Contains(ent))
}

func TestProxyFixup_WithNamingModes(t *testing.T) {
	f := newFixture(t, WithNaming(NamingOptions{Mode: NamingWR, Separator: '/'}))
	lab, _, _, _ := proxyFixture(t, f)

	l := f.eng.Parse(lab, "(||1:0 0 100 100 200 200||)")
	assert.Equal(t, "xm/xl/3", l.String(ConvPlain, false))
	assert.Equal(t, "v(xm/xl/3)", l.String(ConvExpr, false))
}
