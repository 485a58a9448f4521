package hypertext

import (
	"strconv"
	"strings"

	"layout-hypertext/internal/design"
	"layout-hypertext/pkg/geometry"
)

const (
	tokenOpen  = "(||"
	tokenClose = "||)"

	tokenSemicolon = "sc"
	tokenLongText  = "text"
)

// Parse builds a list from text carrying reference tokens. References are
// registered in owner with their proxy coordinates pending fixup. Tokens
// that cannot be decoded are kept as literal text.
func (e *Engine) Parse(owner *design.Cell, text string) *List {
	l := e.NewList()
	var pending strings.Builder
	flush := func() {
		if pending.Len() > 0 {
			l.AddText(pending.String())
			pending.Reset()
		}
	}

	first := true
	rest := text
	for {
		start := strings.Index(rest, tokenOpen)
		if start < 0 {
			pending.WriteString(rest)
			break
		}
		end := strings.Index(rest[start+len(tokenOpen):], tokenClose)
		if end < 0 {
			pending.WriteString(rest)
			break
		}
		pending.WriteString(rest[:start])
		body := rest[start+len(tokenOpen) : start+len(tokenOpen)+end]
		rest = rest[start+len(tokenOpen)+end+len(tokenClose):]

		switch {
		case body == tokenSemicolon:
			pending.WriteByte(';')
		case body == tokenLongText && first:
			flush()
			l.segs = append(l.segs, &Segment{Kind: SegLongText, Text: unescape(rest)})
			return l
		default:
			ent := e.parseRef(owner, body)
			if ent == nil {
				e.log.Debug("malformed reference token kept as text", "token", body)
				pending.WriteString(tokenOpen + body + tokenClose)
				break
			}
			flush()
			l.AddRef(ent)
			if err := ent.Add(); err != nil {
				e.log.Debug("parsed reference not registered", "id", ent.id, "error", err)
			}
		}
		first = false
	}
	flush()
	return l
}

// parseRef decodes "K:x y [x1 y1 ...]" into an unlinked entity, or returns
// nil.
func (e *Engine) parseRef(owner *design.Cell, body string) *Entity {
	code, coords, ok := strings.Cut(body, ":")
	if !ok {
		return nil
	}
	k, err := strconv.Atoi(code)
	if err != nil {
		return nil
	}
	kind := Kind(k)
	if _, ok := segmentKindOf(kind); !ok {
		return nil
	}
	fields := strings.Fields(coords)
	if len(fields) < 2 || len(fields)%2 != 0 || len(fields)/2 > MaxCallDepth+1 {
		return nil
	}
	pts := make([]geometry.PointInt, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil
		}
		y, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return nil
		}
		pts = append(pts, geometry.Pt(x, y))
	}

	ent := e.newEntity(owner, kind)
	ent.x, ent.y = pts[0].X, pts[0].Y
	ent.proxy = unresolvedProxy(pts)
	return ent
}

// Format renders the list in token form for persistence. Long text is
// replaced by a fixed placeholder unless exportLong is set.
func (l *List) Format(exportLong bool) string {
	var sb strings.Builder
	for _, s := range l.segs {
		switch s.Kind {
		case SegText:
			sb.WriteString(escape(s.Text))
		case SegLongText:
			sb.WriteString(tokenOpen + tokenLongText + tokenClose)
			if exportLong {
				sb.WriteString(escape(s.Text))
			} else {
				sb.WriteString(LongTextOmitted)
			}
		default:
			if s.Ref != nil {
				sb.WriteString(formatRef(s.Kind.refKind(), s.Ref))
			}
		}
	}
	return sb.String()
}

func formatRef(kind Kind, e *Entity) string {
	var pts []geometry.PointInt
	if e.proxy.Unresolved() {
		pts = e.proxy.raw
	} else {
		for l := e.proxy.head; l != nil; l = l.Next {
			pts = append(pts, l.Point())
		}
		pts = append(pts, e.TopLevelPoint())
	}

	var sb strings.Builder
	sb.WriteString(tokenOpen)
	sb.WriteString(strconv.Itoa(int(kind)))
	sb.WriteByte(':')
	for i, p := range pts {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(p.X))
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(p.Y))
	}
	sb.WriteString(tokenClose)
	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, ";", tokenOpen+tokenSemicolon+tokenClose)
}

func unescape(s string) string {
	return strings.ReplaceAll(s, tokenOpen+tokenSemicolon+tokenClose, ";")
}
