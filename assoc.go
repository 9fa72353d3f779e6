// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

// TempAssoc is the identifier of the temporary association. Its content can be
// changed with SetTempAssoc and AugmentTempAssoc.
const TempAssoc = 0

// quantmark is the content of a slot for a variable that should be
// quantified. It is never a valid node since the node table never grows to
// 2^31 vertices.
const quantmark Node = Null - 1

// assoc is a variable association: for each variable (by identity) a slot
// that is either empty (Null), a quantification mark, or a replacement
// function.
type assoc struct {
	id    int
	slots []Node
	last  int32 // greatest level of a variable in the association, -1 if empty
	refs  int
}

// assocRegistry stores the registered associations; index 0 is the temporary
// association. Identifiers of freed associations are reused.
type assocRegistry struct {
	list []*assoc
}

func (r *assocRegistry) init() {
	r.list = []*assoc{{id: TempAssoc, last: -1}}
}

func (r *assocRegistry) newvar(level int32) {
	for _, a := range r.list {
		if a == nil {
			continue
		}
		a.slots = append(a.slots, Null)
		if a.last >= level {
			a.last++
		}
	}
}

// exchange updates the last field of associations after swapping the
// variables at levels l and l+1. Variable x was at level l and is now at l+1.
func (r *assocRegistry) exchange(l int32, x, y uint32) {
	for _, a := range r.list {
		if a == nil {
			continue
		}
		switch {
		case a.last == l && a.slots[x] != Null:
			a.last = l + 1
		case a.last == l+1 && a.slots[x] == Null:
			a.last = l
		}
	}
}

// ************************************************************

// NewAssoc registers an association between the variables in vars (given by
// their identity) and the functions in repls. When repls is nil, the
// association marks the variables for quantification (see Exists); otherwise
// it is used for substitutions (see Substitute) and should have the same
// length than vars. Registering an association with the same content than an
// existing one returns the same identifier and increases its reference count.
// We return -1, and log a warning, if the arguments are not valid.
func (b *BDD) NewAssoc(vars []int, repls []Node) int {
	a := b.mkassoc(vars, repls)
	if a == nil {
		return -1
	}
	for _, old := range b.assocs.list[1:] {
		if old != nil && old.equal(a) {
			old.refs++
			return old.id
		}
	}
	a.refs = 1
	for _, n := range a.slots {
		if n != Null && n != quantmark {
			b.Ref(n)
		}
	}
	for k := 1; k < len(b.assocs.list); k++ {
		if b.assocs.list[k] == nil {
			a.id = k
			b.assocs.list[k] = a
			return k
		}
	}
	if uint32(len(b.assocs.list)) > _MAXTAGID {
		b.warn("too many associations")
		return -1
	}
	a.id = len(b.assocs.list)
	b.assocs.list = append(b.assocs.list, a)
	return a.id
}

// mkassoc checks its arguments and returns a fresh (unregistered) association.
func (b *BDD) mkassoc(vars []int, repls []Node) *assoc {
	if repls != nil && len(repls) != len(vars) {
		b.warn("%d variables and %d functions in association", len(vars), len(repls))
		return nil
	}
	a := &assoc{slots: make([]Node, len(b.varset)), last: -1}
	for k := range a.slots {
		a.slots[k] = Null
	}
	if !b.fillassoc(a, vars, repls) {
		return nil
	}
	return a
}

func (b *BDD) fillassoc(a *assoc, vars []int, repls []Node) bool {
	for k, v := range vars {
		if v < 0 || v >= len(b.varset) {
			b.warn("unknown variable used (%d) in association", v)
			return false
		}
		if repls == nil {
			a.slots[v] = quantmark
		} else {
			if !b.checkptr(repls[k]) || !b.isbool(repls[k]) {
				b.warn("wrong function (%d) for variable %d in association", repls[k], v)
				return false
			}
			a.slots[v] = repls[k]
		}
		if l := b.var2level[v]; l > a.last {
			a.last = l
		}
	}
	return true
}

func (a *assoc) equal(c *assoc) bool {
	if a.last != c.last || len(a.slots) != len(c.slots) {
		return false
	}
	for k := range a.slots {
		if a.slots[k] != c.slots[k] {
			return false
		}
	}
	return true
}

// FreeAssoc decreases the reference count of association id. When the count
// reaches zero, the association is removed and the cache entries computed with
// it are flushed.
func (b *BDD) FreeAssoc(id int) {
	a := b.getassoc(id)
	if a == nil || id == TempAssoc {
		return
	}
	a.refs--
	if a.refs > 0 {
		return
	}
	b.releaseassoc(a)
	b.assocs.list[id] = nil
}

func (b *BDD) releaseassoc(a *assoc) {
	for _, n := range a.slots {
		if n != Null && n != quantmark {
			b.Free(n)
		}
	}
	id := uint32(a.id)
	b.cache.flush(func(e *cacheEntry) bool {
		return isassocop(e.tag&0xFF) && e.tag>>8 == id
	})
}

// SetTempAssoc replaces the content of the temporary association. It returns
// false if the arguments are not valid; the temporary association is then
// unchanged.
func (b *BDD) SetTempAssoc(vars []int, repls []Node) bool {
	a := b.mkassoc(vars, repls)
	if a == nil {
		return false
	}
	b.settemp(a)
	return true
}

// AugmentTempAssoc adds the content of (vars, repls) to the temporary
// association.
func (b *BDD) AugmentTempAssoc(vars []int, repls []Node) bool {
	if repls != nil && len(repls) != len(vars) {
		b.warn("%d variables and %d functions in association", len(vars), len(repls))
		return false
	}
	old := b.assocs.list[TempAssoc]
	a := &assoc{slots: make([]Node, len(b.varset)), last: old.last}
	copy(a.slots, old.slots)
	for k := len(old.slots); k < len(a.slots); k++ {
		a.slots[k] = Null
	}
	if !b.fillassoc(a, vars, repls) {
		return false
	}
	b.settemp(a)
	return true
}

func (b *BDD) settemp(a *assoc) {
	for _, n := range a.slots {
		if n != Null && n != quantmark {
			b.Ref(n)
		}
	}
	b.releaseassoc(b.assocs.list[TempAssoc])
	a.id = TempAssoc
	b.assocs.list[TempAssoc] = a
}

// getassoc returns the association with the given id, or nil (with a warning)
// if there is none.
func (b *BDD) getassoc(id int) *assoc {
	if id < 0 || id >= len(b.assocs.list) || b.assocs.list[id] == nil {
		b.warn("unknown association (%d)", id)
		return nil
	}
	return b.assocs.list[id]
}

// AssocRefs returns the reference count of association id (0 if the
// association does not exist).
func (b *BDD) AssocRefs(id int) int {
	if id <= 0 || id >= len(b.assocs.list) || b.assocs.list[id] == nil {
		return 0
	}
	return b.assocs.list[id].refs
}

func isassocop(op uint32) bool {
	switch op {
	case opExists, opRelProd, opSubst, opCProject:
		return true
	}
	return false
}
