package typesystem

// VarSource hands out type variables for one type-checking call. Each
// call allocates its own source, so variable identities never leak
// between independent checks; the zero value is ready to use.
//
// A VarSource is not safe for concurrent use. Concurrent checks each
// get their own.
type VarSource struct {
	next int
}

func NewVarSource() *VarSource { return &VarSource{} }

// Fresh returns a variable that no previous call on this source has
// returned.
func (f *VarSource) Fresh() TVar {
	f.next++
	return TVar{ID: f.next}
}

// Count reports how many variables have been handed out so far. The
// constraint solver uses it to bound fixpoint iteration.
func (f *VarSource) Count() int { return f.next }
