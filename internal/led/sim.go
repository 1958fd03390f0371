package led

import (
	"slices"
	"sync"

	"github.com/coreman2200/arcaluminis-fx/internal/color"
)

// Sim keeps the last frame in memory.
type Sim struct {
	mu     sync.Mutex
	n      int
	last   []color.Color
	frames int
}

func NewSim(n int) *Sim { return &Sim{n: n, last: color.Fill(color.Black, n)} }

func (s *Sim) Len() int { return s.n }

func (s *Sim) Write(frame []color.Color) error {
	if err := checkLen(frame, s.n); err != nil {
		return err
	}
	s.mu.Lock()
	s.last = slices.Clone(frame)
	s.frames++
	s.mu.Unlock()
	return nil
}

// Last returns a copy of the latest frame and how many frames were written.
func (s *Sim) Last() ([]color.Color, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.last), s.frames
}

func (s *Sim) Close() error { return nil }
