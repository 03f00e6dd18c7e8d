package present

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"tileworld/internal/meshing"
	"tileworld/internal/world"
)

// Trace operations.
const (
	OpPresent    = "present"
	OpRetire     = "retire"
	OpDecorate   = "decorate"
	OpUndecorate = "undecorate"
)

// Event is one line of a lifecycle trace.
type Event struct {
	Tick     uint64 `json:"tick"`
	Op       string `json:"op"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Vertices int    `json:"vertices,omitempty"`
	Indices  int    `json:"indices,omitempty"`
	// Foliage counts decorations per kind name.
	Foliage map[string]int `json:"foliage,omitempty"`
}

// Trace writes presenter calls as zstd-compressed JSON lines. Presenter
// methods cannot fail, so the first write error is kept and returned by Err
// and Close; later events are dropped.
type Trace struct {
	mu   sync.Mutex
	tick uint64
	err  error

	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// CreateTrace creates (or truncates) a trace file at path.
func CreateTrace(path string) (*Trace, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("could not create trace dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create trace: %w", err)
	}
	t, err := NewTrace(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	t.f = f
	return t, nil
}

// NewTrace writes a trace to w. Close does not close w.
func NewTrace(w io.Writer) (*Trace, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("could not start zstd encoder: %w", err)
	}
	return &Trace{
		enc: enc,
		w:   bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

// SetTick stamps subsequent events with tick.
func (t *Trace) SetTick(tick uint64) {
	t.mu.Lock()
	t.tick = tick
	t.mu.Unlock()
}

func (t *Trace) Present(coord world.Coord, mesh *meshing.Mesh) {
	t.write(Event{Op: OpPresent, X: coord.X, Y: coord.Y, Vertices: mesh.VertexCount(), Indices: mesh.IndexCount()})
}

func (t *Trace) Retire(coord world.Coord) {
	t.write(Event{Op: OpRetire, X: coord.X, Y: coord.Y})
}

func (t *Trace) Decorate(coord world.Coord, decorations []world.Decoration) {
	ev := Event{Op: OpDecorate, X: coord.X, Y: coord.Y}
	if len(decorations) > 0 {
		ev.Foliage = make(map[string]int)
		for _, d := range decorations {
			ev.Foliage[d.Kind.String()]++
		}
	}
	t.write(ev)
}

func (t *Trace) Undecorate(coord world.Coord) {
	t.write(Event{Op: OpUndecorate, X: coord.X, Y: coord.Y})
}

func (t *Trace) write(ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil || t.w == nil {
		return
	}
	ev.Tick = t.tick
	b, err := json.Marshal(ev)
	if err != nil {
		t.err = err
		return
	}
	if _, err := t.w.Write(b); err != nil {
		t.err = err
		return
	}
	if err := t.w.WriteByte('\n'); err != nil {
		t.err = err
	}
}

// Err returns the first write error, if any.
func (t *Trace) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Close flushes the trace and finishes the zstd frame.
func (t *Trace) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	err := t.err
	if t.w != nil {
		if ferr := t.w.Flush(); err == nil {
			err = ferr
		}
		t.w = nil
	}
	if t.enc != nil {
		if cerr := t.enc.Close(); err == nil {
			err = cerr
		}
		t.enc = nil
	}
	if t.f != nil {
		if cerr := t.f.Close(); err == nil {
			err = cerr
		}
		t.f = nil
	}
	return err
}

// ReadTrace decodes every event of a trace stream.
func ReadTrace(r io.Reader) ([]Event, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	var out []Event
	for sc.Scan() {
		var ev Event
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			return out, fmt.Errorf("trace line %d: %w", len(out)+1, err)
		}
		out = append(out, ev)
	}
	return out, sc.Err()
}
