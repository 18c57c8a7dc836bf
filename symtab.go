package main

//
// SYMBOL TABLE
//

type binding struct {
	value Value
	seen  Kind // kind of the last value stored
}

type frame map[string]*binding

// SymbolTable is a stack of frames. frame 0 holds the globals.
type SymbolTable struct {
	frames []frame
}

func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{frames: make([]frame, 0, FRAME_CAP)}
	st.Push()
	return st
}

func (st *SymbolTable) Push() {
	st.frames = append(st.frames, make(frame, FRAME_SIZE))
}

func (st *SymbolTable) Pop() {
	if len(st.frames) > 1 {
		st.frames = st.frames[:len(st.frames)-1]
	}
}

func (st *SymbolTable) Depth() int { return len(st.frames) }

// Declare binds name in the current frame.
func (st *SymbolTable) Declare(name string, v Value) error {
	top := st.frames[len(st.frames)-1]
	if _, found := top[name]; found {
		return fef("variable '%s' already set", name)
	}
	top[name] = &binding{value: v, seen: v.kind}
	return nil
}

// Assign updates the innermost existing binding of name.
func (st *SymbolTable) Assign(name string, v Value) error {
	for i := len(st.frames) - 1; i >= 0; i-- {
		if b, found := st.frames[i][name]; found {
			b.value = v
			b.seen = v.kind
			return nil
		}
	}
	return fef("variable '%s' not defined", name)
}

func (st *SymbolTable) Lookup(name string) (Value, bool) {
	for i := len(st.frames) - 1; i >= 0; i-- {
		if b, found := st.frames[i][name]; found {
			return b.value, true
		}
	}
	return Null, false
}

// Smack removes every frame above the globals and hands them back so a
// called function sees only globals plus its own locals.
func (st *SymbolTable) Smack() []frame {
	saved := st.frames[1:len(st.frames):len(st.frames)]
	st.frames = st.frames[:1:1]
	return saved
}

// Restore undoes a Smack, discarding whatever the callee left above frame 0.
func (st *SymbolTable) Restore(saved []frame) {
	st.frames = append(st.frames[:1], saved...)
}

// Names lists bound names innermost first, for trace dumps.
func (st *SymbolTable) Names() []string {
	var names []string
	seen := make(map[string]bool)
	for i := len(st.frames) - 1; i >= 0; i-- {
		for n := range st.frames[i] {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}
