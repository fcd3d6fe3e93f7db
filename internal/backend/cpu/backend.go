// Package cpu implements the CPU backend on top of gonum's dense matrices.
package cpu

import (
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/latent/internal/backend"
	"github.com/born-ml/latent/internal/parallel"
	"github.com/born-ml/latent/internal/tensor"
)

// Config configures a CPU backend.
type Config struct {
	// Precision of values produced by Zeros, Ones and Randn.
	Precision tensor.DataType

	// Parallel controls batch-dimension data parallelism.
	Parallel parallel.Config

	// Seed for Randn. -1 = random.
	Seed int64
}

// DefaultConfig returns a float64, parallel, randomly seeded configuration.
func DefaultConfig() Config {
	return Config{
		Precision: tensor.Float64,
		Parallel:  parallel.DefaultConfig(),
		Seed:      -1,
	}
}

// CPUBackend implements backend.Backend with gonum mat/floats kernels.
type CPUBackend struct {
	precision tensor.DataType
	par       parallel.Config

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

var _ backend.Backend = (*CPUBackend)(nil)

// New creates a CPU backend with DefaultConfig.
func New() *CPUBackend {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a CPU backend from cfg.
func NewWithConfig(cfg Config) *CPUBackend {
	return &CPUBackend{
		precision: cfg.Precision,
		par:       cfg.Parallel,
		rng:       NewRand(cfg.Seed),
	}
}

// NewRand returns a PCG generator for seed, or a randomly seeded one if
// seed is negative.
func NewRand(seed int64) *rand.Rand {
	if seed < 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // User requested random seed
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)) //nolint:gosec // Intentional deterministic seed for reproducibility
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Precision returns the constructor precision.
func (cpu *CPUBackend) Precision() tensor.DataType {
	return cpu.precision
}

// Zeros returns a zero-filled buffer for shape.
func (cpu *CPUBackend) Zeros(shape tensor.Shape) []float64 {
	mustValidate("zeros", shape)
	return make([]float64, shape.NumElements())
}

// Ones returns a buffer for shape filled with ones.
func (cpu *CPUBackend) Ones(shape tensor.Shape) []float64 {
	mustValidate("ones", shape)
	data := make([]float64, shape.NumElements())
	for i := range data {
		data[i] = 1
	}
	return data
}

// Randn returns a buffer for shape with values drawn from N(0, 1).
func (cpu *CPUBackend) Randn(shape tensor.Shape) []float64 {
	mustValidate("randn", shape)
	data := make([]float64, shape.NumElements())

	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: cpu.rng}
	for i := range data {
		data[i] = normal.Rand()
	}
	cpu.precision.RoundAll(data)
	return data
}

// Clone returns a dense copy of x that shares no memory with it.
func (cpu *CPUBackend) Clone(x mat.Matrix) *mat.Dense {
	return mat.DenseCopyOf(x)
}

func mustValidate(op string, shape tensor.Shape) {
	if err := shape.Validate(); err != nil {
		panic(&tensor.ShapeError{Op: op, Got: shape.Clone(), Want: shape.Clone()})
	}
}

// denseOf returns x as *mat.Dense without copying when possible.
func denseOf(x mat.Matrix) *mat.Dense {
	if d, ok := x.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(x)
}

// vecData returns the elements of v as a contiguous slice.
func vecData(v mat.Vector) []float64 {
	if vd, ok := v.(*mat.VecDense); ok && vd.RawVector().Inc == 1 {
		return vd.RawVector().Data[:vd.Len()]
	}
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
