package hypertext

import (
	"strings"

	"layout-hypertext/internal/design"
)

const (
	// UnknownRef is shown for references that cannot be resolved.
	UnknownRef = "_UNKNOWN_"

	// LongTextPlaceholder stands in for long text in single-line contexts.
	LongTextPlaceholder = "[text]"

	// LongTextOmitted is written instead of long text when export is off.
	LongTextOmitted = "[text omitted]"

	// ScriptPrefix marks long text holding a script.
	ScriptPrefix = "!!script"
)

// SegmentKind is the kind of a list segment.
type SegmentKind int

const (
	SegText SegmentKind = iota
	SegLongText
	SegNode
	SegBranch
	SegDevice
)

func (k SegmentKind) String() string {
	switch k {
	case SegText:
		return "text"
	case SegLongText:
		return "longtext"
	default:
		return k.refKind().String()
	}
}

func (k SegmentKind) refKind() Kind {
	switch k {
	case SegNode:
		return KindNode
	case SegBranch:
		return KindBranch
	case SegDevice:
		return KindDevice
	}
	return KindNone
}

func segmentKindOf(k Kind) (SegmentKind, bool) {
	switch k {
	case KindNode:
		return SegNode, true
	case KindBranch:
		return SegBranch, true
	case KindDevice:
		return SegDevice, true
	}
	return SegText, false
}

// Segment is one element of a reference list: plain text, long text, or a
// reference.
type Segment struct {
	Kind SegmentKind
	Text string
	Ref  *Entity
}

// IsRef reports whether the segment holds a reference.
func (s *Segment) IsRef() bool {
	return s.Kind >= SegNode
}

// ConvMode selects how a list is rendered.
type ConvMode int

const (
	// ConvPlain renders references as bare names.
	ConvPlain ConvMode = iota

	// ConvExpr renders node references as v(name).
	ConvExpr

	// ConvASCII renders the token form used for persistence.
	ConvASCII
)

// List is an ordered sequence of segments forming one hypertext string.
// Segment order reproduces the original text.
type List struct {
	eng  *Engine
	segs []*Segment
}

// NewList creates an empty list.
func (e *Engine) NewList() *List {
	return &List{eng: e}
}

// PlainList creates a list holding text verbatim, without token parsing.
func (e *Engine) PlainList(text string) *List {
	l := e.NewList()
	if text != "" {
		l.AddText(text)
	}
	return l
}

// NewLongText creates a list holding one long text block.
func (e *Engine) NewLongText(text string) *List {
	l := e.NewList()
	l.segs = append(l.segs, &Segment{Kind: SegLongText, Text: text})
	return l
}

// AddText appends a plain text segment.
func (l *List) AddText(text string) {
	l.segs = append(l.segs, &Segment{Kind: SegText, Text: text})
}

// AddRef appends a reference segment. The entity kind must be Node, Branch
// or Device.
func (l *List) AddRef(ent *Entity) bool {
	kind, ok := segmentKindOf(ent.kind)
	if !ok {
		return false
	}
	l.segs = append(l.segs, &Segment{Kind: kind, Ref: ent})
	return true
}

// Segments returns the segments in display order.
func (l *List) Segments() []*Segment {
	return append([]*Segment(nil), l.segs...)
}

// Refs returns the referenced entities in display order.
func (l *List) Refs() []*Entity {
	var out []*Entity
	for _, s := range l.segs {
		if s.IsRef() && s.Ref != nil {
			out = append(out, s.Ref)
		}
	}
	return out
}

// IsLongText reports whether the list holds a long text block.
func (l *List) IsLongText() bool {
	for _, s := range l.segs {
		if s.Kind == SegLongText {
			return true
		}
	}
	return false
}

// LongText returns the content of the long text block.
func (l *List) LongText() string {
	for _, s := range l.segs {
		if s.Kind == SegLongText {
			return s.Text
		}
	}
	return ""
}

// SetLongText replaces the content of the long text block, or appends one.
func (l *List) SetLongText(text string) {
	for _, s := range l.segs {
		if s.Kind == SegLongText {
			s.Text = text
			return
		}
	}
	l.segs = append(l.segs, &Segment{Kind: SegLongText, Text: text})
}

// String renders the list. References are re-resolved against the current
// geometry. Long text is replaced by a placeholder unless allowLong is set.
func (l *List) String(mode ConvMode, allowLong bool) string {
	if mode == ConvASCII {
		return l.Format(allowLong)
	}
	if name, ok := l.scriptName(); ok {
		return name
	}
	var sb strings.Builder
	for _, s := range l.segs {
		switch s.Kind {
		case SegText:
			sb.WriteString(s.Text)
		case SegLongText:
			if allowLong {
				sb.WriteString(s.Text)
			} else {
				sb.WriteString(LongTextPlaceholder)
			}
		default:
			name := ""
			if s.Ref != nil {
				name = s.Ref.update(nil, mode == ConvExpr && s.Kind == SegNode)
			}
			if name == "" {
				name = UnknownRef
			}
			sb.WriteString(name)
		}
	}
	return sb.String()
}

// scriptName returns the declared name of a script long text.
func (l *List) scriptName() (string, bool) {
	if len(l.segs) != 1 || l.segs[0].Kind != SegLongText {
		return "", false
	}
	text := l.segs[0].Text
	if !strings.HasPrefix(text, ScriptPrefix) {
		return "", false
	}
	line := strings.TrimPrefix(text, ScriptPrefix)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	var name, path string
	for _, f := range strings.Fields(line) {
		switch {
		case strings.HasPrefix(f, "name="):
			name = strings.Trim(strings.TrimPrefix(f, "name="), `"`)
		case strings.HasPrefix(f, "path="):
			path = strings.Trim(strings.TrimPrefix(f, "path="), `"`)
		}
	}
	if name != "" {
		return name, true
	}
	if path != "" {
		if i := strings.LastIndexAny(path, `/\`); i >= 0 {
			path = path[i+1:]
		}
		return path, true
	}
	return "script", true
}

// Duplicate returns a deep copy. References are duplicated and long text
// joins the tracking group of the original.
func (l *List) Duplicate() *List {
	d := l.eng.NewList()
	for _, s := range l.segs {
		ns := &Segment{Kind: s.Kind, Text: s.Text}
		if s.Ref != nil {
			ns.Ref = s.Ref.Duplicate()
		}
		d.segs = append(d.segs, ns)
	}
	if l.IsLongText() {
		l.eng.tracker.DuplicateTracking(l, d)
	}
	return d
}

// Destroy destroys every reference and stops long-text tracking.
func (l *List) Destroy() {
	for _, s := range l.segs {
		if s.Ref != nil {
			s.Ref.Destroy()
		}
	}
	l.segs = nil
	l.eng.tracker.Untrack(l)
}

// ConvertProperty builds a list for a device property: the text followed by
// a reference of the given kind to dev in owner.
func (e *Engine) ConvertProperty(owner *design.Cell, text string, kind Kind, dev *design.Instance) (*List, error) {
	l := e.PlainList(text)
	ent := e.NewEntity(owner, kind, dev, dev.Bounds().Center())
	if kind == KindBranch && dev.Branch != nil {
		ent.x, ent.y = dev.Branch.At.X, dev.Branch.At.Y
		ent.orient = orientationOf(dev.Branch.Rot)
	}
	if !l.AddRef(ent) {
		return nil, ErrNoReference
	}
	if err := ent.Add(); err != nil {
		return nil, err
	}
	return l, nil
}
