package selection

import (
	"sync"

	"github.com/agentic-research/structlink/api"
)

// Scene is the live set of renderable objects owned by the renderer.
type Scene interface {
	// Lookup returns the object with the given uuid if it is currently present.
	Lookup(uuid string) (api.RendererObject, bool)
	// Parent returns the uuid of the object's enclosing object, "" at top level.
	Parent(uuid string) string
}

// MemoryScene is a Scene backed by a map, kept current by its owner through
// Add and Remove (objects culled or not yet streamed in are simply absent).
// The zero value is an empty scene ready to use.
type MemoryScene struct {
	mu      sync.RWMutex
	objects map[string]api.RendererObject
}

func NewMemoryScene(objects ...api.RendererObject) *MemoryScene {
	s := &MemoryScene{objects: make(map[string]api.RendererObject, len(objects))}
	for _, o := range objects {
		s.objects[o.UUID] = o
	}
	return s
}

// Add inserts or replaces an object.
func (s *MemoryScene) Add(o api.RendererObject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = make(map[string]api.RendererObject)
	}
	s.objects[o.UUID] = o
}

// Remove drops an object from the live set.
func (s *MemoryScene) Remove(uuid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, uuid)
}

// Len returns the number of live objects.
func (s *MemoryScene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Lookup implements Scene.
func (s *MemoryScene) Lookup(uuid string) (api.RendererObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[uuid]
	return o, ok
}

// Parent implements Scene.
func (s *MemoryScene) Parent(uuid string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[uuid].Parent
}
