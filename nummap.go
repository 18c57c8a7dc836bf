package main

import (
	str "strings"

	. "github.com/puzpuzpuz/xsync"
)

// FunctionTable holds script function declarations keyed by lowercase
// name. reads far outnumber writes, which only happen during a pre-scan.
type FunctionTable struct {
	RBMutex
	fmap map[string]*ScriptFunction
}

func NewFunctionTable() *FunctionTable {
	return &FunctionTable{fmap: make(map[string]*ScriptFunction, FUNC_CAP)}
}

func (u *FunctionTable) Has(name string) bool {
	_, ok := u.Get(name)
	return ok
}

func (u *FunctionTable) Get(name string) (f *ScriptFunction, ok bool) {
	tk := u.RLock()
	f, ok = u.fmap[str.ToLower(name)]
	u.RUnlock(tk)
	return f, ok
}

// Add registers f unless the name is already taken, returning the holder.
func (u *FunctionTable) Add(f *ScriptFunction) (prev *ScriptFunction, added bool) {
	key := str.ToLower(f.Name)
	u.Lock()
	defer u.Unlock()
	if prev, found := u.fmap[key]; found {
		return prev, false
	}
	u.fmap[key] = f
	return nil, true
}

func (u *FunctionTable) Delete(name string) bool {
	key := str.ToLower(name)
	u.Lock()
	defer u.Unlock()
	if _, ok := u.fmap[key]; ok {
		delete(u.fmap, key)
		return true
	}
	return false
}

func (u *FunctionTable) Len() int {
	tk := u.RLock()
	defer u.RUnlock(tk)
	return len(u.fmap)
}
