package effect

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrUnknownEffect = errors.New("unknown effect")

// Registry keeps effects in registration order, which is also the order
// Next cycles through.
type Registry struct {
	mu    sync.RWMutex
	order []string
	m     map[string]*Effect
}

func NewRegistry() *Registry { return &Registry{m: map[string]*Effect{}} }

func key(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

func (r *Registry) Register(e *Effect) {
	if e == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(e.Name())
	if _, ok := r.m[k]; !ok {
		r.order = append(r.order, e.Name())
	}
	r.m[k] = e
}

// Get looks an effect up by name, ignoring case.
func (r *Registry) Get(name string) (*Effect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.m[key(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}
	return e, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Next returns the effect after current, wrapping around. An unknown or empty
// current yields the first effect.
func (r *Registry) Next(current string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.order) == 0 {
		return ""
	}
	k := key(current)
	for i, n := range r.order {
		if key(n) == k {
			return r.order[(i+1)%len(r.order)]
		}
	}
	return r.order[0]
}

// StopAll stops every registered effect.
func (r *Registry) StopAll() {
	r.mu.RLock()
	all := make([]*Effect, 0, len(r.m))
	for _, e := range r.m {
		all = append(all, e)
	}
	r.mu.RUnlock()
	for _, e := range all {
		e.Stop()
	}
}
