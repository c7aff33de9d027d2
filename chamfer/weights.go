package chamfer

// WeightSource supplies the proposal distribution the importance-sampling
// estimator draws from: one non-negative weight per point in the "from"
// set.
type WeightSource interface {
	Weights() []float64
}

// DArrayWeightSource uses a precomputed D-array (each point's c-ANN
// distance to the other set) as the proposal distribution.
type DArrayWeightSource struct {
	d []float64
}

// NewDArrayWeightSource wraps an already-loaded or freshly built D-array.
func NewDArrayWeightSource(d []float64) DArrayWeightSource {
	return DArrayWeightSource{d: d}
}

func (s DArrayWeightSource) Weights() []float64 { return s.d }

// UniformWeightSource weights every point equally, degenerating the
// importance-sampling estimator to plain Monte-Carlo sampling. Useful as
// a baseline that does not require a QALSH index at all.
type UniformWeightSource struct {
	n int
}

// NewUniformWeightSource returns a source assigning weight 1 to each of n
// points.
func NewUniformWeightSource(n int) UniformWeightSource {
	return UniformWeightSource{n: n}
}

func (s UniformWeightSource) Weights() []float64 {
	w := make([]float64, s.n)
	for i := range w {
		w[i] = 1.0
	}
	return w
}
