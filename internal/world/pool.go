package world

import (
	"context"
	"sync"

	"tileworld/internal/meshing"
)

// Generated is a populated chunk together with its first mesh.
type Generated struct {
	Chunk *Chunk
	Mesh  *meshing.Mesh
}

// genJob represents one chunk generation request
type genJob struct {
	index   int
	coord   Coord
	results chan<- genResult
}

type genResult struct {
	index int
	out   Generated
}

// GenPool generates and meshes chunks on a fixed set of goroutines. The
// generator is shared by all workers and must be safe for concurrent use.
type GenPool struct {
	gen      TerrainGenerator
	jobQueue chan genJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewGenPool starts workers goroutines with a job queue of queueSize.
func NewGenPool(gen TerrainGenerator, workers, queueSize int) *GenPool {
	ctx, cancel := context.WithCancel(context.Background())
	pool := &GenPool{
		gen:      gen,
		jobQueue: make(chan genJob, queueSize),
		workers:  max(workers, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := range pool.workers {
		pool.wg.Add(1)
		go pool.worker(i)
	}
	return pool
}

// generate builds one chunk and its mesh on the calling goroutine.
func generate(gen TerrainGenerator, coord Coord) Generated {
	ch := NewChunk(coord)
	gen.PopulateChunk(ch)
	return Generated{Chunk: ch, Mesh: ch.Mesh()}
}

func (p *GenPool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			job.results <- genResult{index: job.index, out: generate(p.gen, job.coord)}
		case <-p.ctx.Done():
			return
		}
	}
}

// Generate builds every coordinate in coords and returns the results in the
// same order. It blocks until all chunks are done. Output is identical to
// generating the coordinates one by one.
func (p *GenPool) Generate(coords []Coord) []Generated {
	if p.ctx.Err() != nil {
		panic("world: Generate on a shut down pool")
	}
	// Buffered for every result so workers never block on send.
	results := make(chan genResult, len(coords))
	for i, c := range coords {
		select {
		case p.jobQueue <- genJob{index: i, coord: c, results: results}:
		case <-p.ctx.Done():
			panic("world: pool shut down during Generate")
		}
	}
	out := make([]Generated, len(coords))
	for range coords {
		r := <-results
		out[r.index] = r.out
	}
	return out
}

// Workers returns the number of worker goroutines.
func (p *GenPool) Workers() int { return p.workers }

// QueueLength returns the current number of jobs in the queue.
func (p *GenPool) QueueLength() int {
	return len(p.jobQueue)
}

// Shutdown stops the workers and waits for them to exit.
func (p *GenPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
