package hypertext

// Registry is the set of references linked into one electrical cell. Order
// is not preserved across removals.
type Registry struct {
	refs []*Entity
}

func (r *Registry) add(e *Entity) {
	r.refs = append(r.refs, e)
}

func (r *Registry) remove(e *Entity) bool {
	for i, x := range r.refs {
		if x == e {
			last := len(r.refs) - 1
			r.refs[i] = r.refs[last]
			r.refs[last] = nil
			r.refs = r.refs[:last]
			return true
		}
	}
	return false
}

// Len returns the number of registered references.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.refs)
}

// Contains reports whether e is registered.
func (r *Registry) Contains(e *Entity) bool {
	if r == nil {
		return false
	}
	for _, x := range r.refs {
		if x == e {
			return true
		}
	}
	return false
}

// Entities returns a snapshot of the registered references.
func (r *Registry) Entities() []*Entity {
	if r == nil {
		return nil
	}
	return append([]*Entity(nil), r.refs...)
}
