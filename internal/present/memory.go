// Package present holds headless collaborators for the streamer: they
// receive chunk geometry and decorations and record, trace or rasterise
// them instead of drawing to a window.
package present

import (
	"slices"
	"sync"

	"tileworld/internal/meshing"
	"tileworld/internal/world"
)

// Memory keeps the geometry and decorations currently presented.
type Memory struct {
	mu       sync.RWMutex
	meshes   map[world.Coord]*meshing.Mesh
	decor    map[world.Coord][]world.Decoration
	presents int
	retires  int
}

// NewMemory returns an empty recorder.
func NewMemory() *Memory {
	return &Memory{
		meshes: make(map[world.Coord]*meshing.Mesh),
		decor:  make(map[world.Coord][]world.Decoration),
	}
}

func (m *Memory) Present(coord world.Coord, mesh *meshing.Mesh) {
	m.mu.Lock()
	m.meshes[coord] = mesh
	m.presents++
	m.mu.Unlock()
}

func (m *Memory) Retire(coord world.Coord) {
	m.mu.Lock()
	delete(m.meshes, coord)
	m.retires++
	m.mu.Unlock()
}

func (m *Memory) Decorate(coord world.Coord, decorations []world.Decoration) {
	m.mu.Lock()
	m.decor[coord] = decorations
	m.mu.Unlock()
}

func (m *Memory) Undecorate(coord world.Coord) {
	m.mu.Lock()
	delete(m.decor, coord)
	m.mu.Unlock()
}

// Mesh returns the geometry presented for coord.
func (m *Memory) Mesh(coord world.Coord) (*meshing.Mesh, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mesh, ok := m.meshes[coord]
	return mesh, ok
}

// Decorations returns the decorations presented for coord.
func (m *Memory) Decorations(coord world.Coord) []world.Decoration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.decor[coord]
}

// Coords returns the presented coordinates, sorted row by row.
func (m *Memory) Coords() []world.Coord {
	m.mu.RLock()
	out := make([]world.Coord, 0, len(m.meshes))
	for c := range m.meshes {
		out = append(out, c)
	}
	m.mu.RUnlock()
	slices.SortFunc(out, world.CompareCoords)
	return out
}

// Len returns the number of chunks currently presented.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.meshes)
}

// Counts returns how many Present and Retire calls were received.
func (m *Memory) Counts() (presents, retires int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.presents, m.retires
}

// Quads returns the total tile count over every presented mesh.
func (m *Memory) Quads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, mesh := range m.meshes {
		n += mesh.Quads()
	}
	return n
}

// Multi forwards every call to each of its members in order. Members that
// do not implement world.DecorationPresenter are skipped for decorations.
type Multi []world.Presenter

func (m Multi) Present(coord world.Coord, mesh *meshing.Mesh) {
	for _, p := range m {
		p.Present(coord, mesh)
	}
}

func (m Multi) Retire(coord world.Coord) {
	for _, p := range m {
		p.Retire(coord)
	}
}

func (m Multi) Decorate(coord world.Coord, decorations []world.Decoration) {
	for _, p := range m {
		if d, ok := p.(world.DecorationPresenter); ok {
			d.Decorate(coord, decorations)
		}
	}
}

func (m Multi) Undecorate(coord world.Coord) {
	for _, p := range m {
		if d, ok := p.(world.DecorationPresenter); ok {
			d.Undecorate(coord)
		}
	}
}
