package hypertext

import (
	"log/slog"
	"slices"
)

// EditFunc is called after a tracked long text has been replaced.
type EditFunc func(l *List, arg any)

// Token identifies a tracking group.
type Token int

type trackedList struct {
	list *List
	fn   EditFunc
	arg  any
}

type trackGroup struct {
	token Token
	lists []trackedList
}

// Tracker maps long-text lists to the editors displaying them, so an edit in
// one editor reaches every duplicate of the text. A list belongs to at most
// one group.
type Tracker struct {
	groups []*trackGroup
	next   Token
	log    *slog.Logger
}

func newTracker(log *slog.Logger) *Tracker {
	return &Tracker{log: log}
}

// Register starts a new group for l. If l is already tracked, its existing
// group token is returned and fn is attached to it.
func (t *Tracker) Register(l *List, fn EditFunc, arg any) Token {
	if g, i := t.find(l); g != nil {
		g.lists[i].fn = fn
		g.lists[i].arg = arg
		return g.token
	}
	t.next++
	t.groups = append(t.groups, &trackGroup{
		token: t.next,
		lists: []trackedList{{list: l, fn: fn, arg: arg}},
	})
	return t.next
}

// UnregisterAll drops every group.
func (t *Tracker) UnregisterAll() {
	t.groups = nil
}

// PropagateEdit replaces the long text of every list in the group and calls
// each callback. It returns the number of lists updated.
func (t *Tracker) PropagateEdit(tok Token, text string) int {
	g := t.group(tok)
	if g == nil {
		t.log.Debug("long text edit for unknown group", "token", tok)
		return 0
	}
	for _, tl := range slices.Clone(g.lists) {
		tl.list.SetLongText(text)
		if tl.fn != nil {
			tl.fn(tl.list, tl.arg)
		}
	}
	return len(g.lists)
}

// DuplicateTracking adds dst to the group holding src. It reports false if
// src is not tracked.
func (t *Tracker) DuplicateTracking(src, dst *List) bool {
	g, i := t.find(src)
	if g == nil {
		return false
	}
	if og, _ := t.find(dst); og != nil {
		t.Untrack(dst)
	}
	g.lists = append(g.lists, trackedList{list: dst, fn: g.lists[i].fn, arg: g.lists[i].arg})
	return true
}

// Untrack removes l from its group. Empty groups are dropped.
func (t *Tracker) Untrack(l *List) bool {
	for gi, g := range t.groups {
		for i, tl := range g.lists {
			if tl.list != l {
				continue
			}
			g.lists = slices.Delete(g.lists, i, i+1)
			if len(g.lists) == 0 {
				t.groups = slices.Delete(t.groups, gi, gi+1)
			}
			return true
		}
	}
	return false
}

// TokenOf returns the group token of l.
func (t *Tracker) TokenOf(l *List) (Token, bool) {
	if g, _ := t.find(l); g != nil {
		return g.token, true
	}
	return 0, false
}

// Members returns the lists in the group.
func (t *Tracker) Members(tok Token) []*List {
	g := t.group(tok)
	if g == nil {
		return nil
	}
	out := make([]*List, len(g.lists))
	for i, tl := range g.lists {
		out[i] = tl.list
	}
	return out
}

func (t *Tracker) find(l *List) (*trackGroup, int) {
	for _, g := range t.groups {
		for i, tl := range g.lists {
			if tl.list == l {
				return g, i
			}
		}
	}
	return nil, -1
}

func (t *Tracker) group(tok Token) *trackGroup {
	for _, g := range t.groups {
		if g.token == tok {
			return g
		}
	}
	return nil
}
