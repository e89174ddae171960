// Package cache keeps compiled Hamiltonians in memory and, optionally, as
// msgpack files on disk, keyed by system id and configuration.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/isfsim/internal/basis"
	"github.com/san-kum/isfsim/internal/hamiltonian"
	"github.com/san-kum/isfsim/internal/lattice"
)

const fileExt = ".msgpack"

// Cache memoizes hamiltonian.Compile. It is safe for concurrent use.
type Cache struct {
	dir     string
	log     zerolog.Logger
	compile func(lattice.PeriodicSystem, lattice.Config) (*hamiltonian.Diagonal, error)

	mu  sync.Mutex
	mem map[string]*hamiltonian.Diagonal
}

// New returns a cache backed by dir. An empty dir keeps entries in memory only.
func New(dir string, log zerolog.Logger) *Cache {
	return &Cache{
		dir:     dir,
		log:     log.With().Str("component", "cache").Logger(),
		compile: hamiltonian.Compile,
		mem:     make(map[string]*hamiltonian.Diagonal),
	}
}

// Key identifies the compiled Hamiltonian of system under cfg.
func Key(system lattice.PeriodicSystem, cfg lattice.Config) string {
	return system.ID + "_" + cfg.Key()
}

// Get returns the compiled Hamiltonian of system under cfg, compiling it on
// a miss. A disk entry written for a different system with the same id is
// ignored and overwritten.
func (c *Cache) Get(system lattice.PeriodicSystem, cfg lattice.Config) (*hamiltonian.Diagonal, error) {
	key := Key(system, cfg)

	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.mem[key]; ok {
		c.log.Debug().Str("key", key).Msg("memory hit")
		return h, nil
	}

	if c.dir != "" {
		h, err := c.load(key, system, cfg)
		switch {
		case err == nil:
			c.log.Debug().Str("key", key).Msg("disk hit")
			c.mem[key] = h
			return h, nil
		case !errors.Is(err, os.ErrNotExist):
			c.log.Warn().Err(err).Str("key", key).Msg("discarding cache entry")
		}
	}

	h, err := c.compile(system, cfg)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("key", key).Int("states", len(h.Energies)).Msg("compiled hamiltonian")
	c.mem[key] = h

	if c.dir != "" {
		if err := c.store(key, system, cfg, h); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("failed to write cache entry")
		}
	}
	return h, nil
}

// Len returns the number of entries held in memory.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mem)
}

type record struct {
	System   lattice.PeriodicSystem `msgpack:"system"`
	Config   lattice.Config         `msgpack:"config"`
	Length   float64                `msgpack:"length"`
	NBands   int                    `msgpack:"n_bands"`
	NSamples int                    `msgpack:"n_samples"`
	Energies []float64              `msgpack:"energies"`
	Rows     int                    `msgpack:"rows"`
	Cols     int                    `msgpack:"cols"`
	Real     []float64              `msgpack:"real"`
	Imag     []float64              `msgpack:"imag"`
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+fileExt)
}

func (c *Cache) store(key string, system lattice.PeriodicSystem, cfg lattice.Config, h *hamiltonian.Diagonal) error {
	v := h.Basis.Vectors()
	rows, cols := v.Dims()
	rec := record{
		System:   system,
		Config:   cfg,
		Length:   h.Basis.Length,
		NBands:   h.NBands,
		NSamples: h.NSamples,
		Energies: h.Energies,
		Rows:     rows,
		Cols:     cols,
		Real:     make([]float64, 0, rows*cols),
		Imag:     make([]float64, 0, rows*cols),
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			z := v.At(i, j)
			rec.Real = append(rec.Real, real(z))
			rec.Imag = append(rec.Imag, imag(z))
		}
	}

	data, err := msgpack.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}
	tmp := c.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path(key))
}

func (c *Cache) load(key string, system lattice.PeriodicSystem, cfg lattice.Config) (*hamiltonian.Diagonal, error) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, err
	}
	var rec record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if rec.System != system || rec.Config.Key() != cfg.Key() {
		return nil, fmt.Errorf("entry %s was written for %s %s", key, rec.System.ID, rec.Config.Key())
	}
	n := rec.Rows * rec.Cols
	if len(rec.Real) != n || len(rec.Imag) != n || len(rec.Energies) != rec.Cols {
		return nil, fmt.Errorf("entry %s is truncated", key)
	}

	vals := make([]complex128, n)
	for i := range vals {
		vals[i] = complex(rec.Real[i], rec.Imag[i])
	}
	b, err := basis.Explicit(mat.NewCDense(rec.Rows, rec.Cols, vals), rec.Length)
	if err != nil {
		return nil, err
	}
	return &hamiltonian.Diagonal{
		Basis:    b,
		Energies: rec.Energies,
		NBands:   rec.NBands,
		NSamples: rec.NSamples,
	}, nil
}
