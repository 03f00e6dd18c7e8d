package world

import "testing"

func TestGenPoolPreservesOrder(t *testing.T) {
	p := NewGenPool(newTestGenerator(3), 3, 2)
	defer p.Shutdown()

	coords := make([]Coord, 0, 20)
	for i := 0; i < 20; i++ {
		coords = append(coords, Coord{X: i - 10, Y: i % 3})
	}
	got := p.Generate(coords)
	if len(got) != len(coords) {
		t.Fatalf("results: got %d, want %d", len(got), len(coords))
	}
	for i, g := range got {
		if g.Chunk.Coord != coords[i] {
			t.Fatalf("result %d: got %s, want %s", i, g.Chunk.Coord, coords[i])
		}
		if g.Mesh.VertexCount() != 4*ChunkSize*ChunkSize {
			t.Fatalf("result %d: mesh has %d vertices", i, g.Mesh.VertexCount())
		}
		want := generate(newTestGenerator(3), coords[i])
		if hashChunkTiles(want.Chunk) != hashChunkTiles(g.Chunk) {
			t.Errorf("chunk %s differs from sequential generation", coords[i])
		}
	}
	if p.Workers() != 3 || p.QueueLength() != 0 {
		t.Errorf("workers %d queue %d", p.Workers(), p.QueueLength())
	}
}

func TestGenPoolAfterShutdownPanics(t *testing.T) {
	p := NewGenPool(NewFlatGenerator(DefaultTile), 2, 1)
	p.Shutdown()
	expectPanic(t, "Generate after Shutdown", func() { p.Generate([]Coord{{0, 0}}) })
}
