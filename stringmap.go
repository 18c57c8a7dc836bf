package main

import (
	"sync"
)

// Lmap records which plugin module owns each exported function name.
type Lmap struct {
	m sync.Map // map[string]string
}

func lmcreate() *Lmap {
	return &Lmap{}
}

func (u *Lmap) lmexists(k string) bool {
	_, ok := u.m.Load(k)
	return ok
}

// lmclaim stores k for owner unless another owner already holds it.
func (u *Lmap) lmclaim(k, owner string) (holder string, ok bool) {
	v, loaded := u.m.LoadOrStore(k, owner)
	if !loaded {
		return owner, true
	}
	return v.(string), v.(string) == owner
}

func (u *Lmap) lmget(k string) (owner string, ok bool) {
	if v, ok := u.m.Load(k); ok {
		return v.(string), true
	}
	return "", false
}

func (u *Lmap) lmdelete(k string) bool {
	_, loaded := u.m.LoadAndDelete(k)
	return loaded
}

func (u *Lmap) lmkeys() []string {
	var keys []string
	u.m.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	return keys
}
