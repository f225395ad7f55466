package chart

import (
	"sync"
	"time"
)

// Render is one live rendered chart. Once disposed its image is released and
// it must not be served again.
type Render struct {
	Name       string
	RenderedAt time.Time

	mu       sync.Mutex
	png      []byte
	disposed bool
}

// PNG returns the rendered image, or nil after disposal.
func (r *Render) PNG() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return nil
	}
	return r.png
}

// Dispose releases the image. Safe to call more than once.
func (r *Render) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.png = nil
	r.disposed = true
}

// Disposed reports whether the render has been released.
func (r *Render) Disposed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disposed
}

// Registry tracks the live render per chart target. Storing a new render for
// a target disposes the previous one first, so repeated refresh cycles never
// accumulate instances.
type Registry struct {
	mu      sync.RWMutex
	renders map[string]*Render
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{renders: make(map[string]*Render)}
}

// Put replaces the render for a target, disposing any previous one.
func (g *Registry) Put(name string, png []byte) *Render {
	next := &Render{Name: name, RenderedAt: time.Now().UTC(), png: png}

	g.mu.Lock()
	prev := g.renders[name]
	g.renders[name] = next
	g.mu.Unlock()

	if prev != nil {
		prev.Dispose()
	}
	return next
}

// Drop removes and disposes the render for a target, if any.
func (g *Registry) Drop(name string) {
	g.mu.Lock()
	prev := g.renders[name]
	delete(g.renders, name)
	g.mu.Unlock()

	if prev != nil {
		prev.Dispose()
	}
}

// Get returns the live render for a target.
func (g *Registry) Get(name string) (*Render, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.renders[name]
	return r, ok
}

// Names lists the targets with a live render.
func (g *Registry) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.renders))
	for name := range g.renders {
		names = append(names, name)
	}
	return names
}

// Len reports the number of live renders.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.renders)
}
