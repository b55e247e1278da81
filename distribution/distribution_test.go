package distribution

import (
	"math"
	"testing"
)

func TestDistributionFromWeights(t *testing.T) {
	d := New([]float32{1, 3})

	expCDF := []float32{0, 0.25, 1}
	for i, exp := range expCDF {
		if !approxEqual(d.CDF[i], exp) {
			t.Fatalf("expected CDF[%d] to be %f; got %f", i, exp, d.CDF[i])
		}
	}

	expPDF := []float32{0.25, 0.75}
	for i, exp := range expPDF {
		if !approxEqual(d.PDF[i], exp) {
			t.Fatalf("expected PDF[%d] to be %f; got %f", i, exp, d.PDF[i])
		}
	}

	if d.Sum != 4 {
		t.Fatalf("expected weight sum 4; got %f", d.Sum)
	}
}

func TestDistributionUniformFallback(t *testing.T) {
	d := New([]float32{0, 0, 0, 0})
	for i, p := range d.PDF {
		if !approxEqual(p, 0.25) {
			t.Fatalf("expected uniform PDF[%d] = 0.25; got %f", i, p)
		}
	}
	if d.CDF[4] != 1 {
		t.Fatalf("expected last CDF entry to be 1; got %f", d.CDF[4])
	}
}

func TestDistributionMonotonic(t *testing.T) {
	d := New([]float32{0.5, 0, 2, -1, 7, 0.01})
	for i := 1; i < len(d.CDF); i++ {
		if d.CDF[i] < d.CDF[i-1] {
			t.Fatalf("expected CDF to be non-decreasing at %d: %f < %f", i, d.CDF[i], d.CDF[i-1])
		}
	}
	if d.CDF[0] != 0 || d.CDF[len(d.CDF)-1] != 1 {
		t.Fatalf("expected CDF to span [0, 1]; got %v", d.CDF)
	}
	if d.PDF[3] != 0 {
		t.Fatalf("expected negative weight to be clamped to zero probability; got %f", d.PDF[3])
	}
}

func TestDistributionSample(t *testing.T) {
	d := New([]float32{1, 0, 3})

	specs := []struct {
		u      float32
		expIdx int
	}{
		{0, 0},
		{0.2, 0},
		{0.25, 2},
		{0.99, 2},
	}
	for specIndex, spec := range specs {
		idx, pdf := d.Sample(spec.u)
		if idx != spec.expIdx {
			t.Fatalf("[spec %d] expected sample index %d; got %d", specIndex, spec.expIdx, idx)
		}
		if pdf != d.PDF[idx] {
			t.Fatalf("[spec %d] expected pdf %f; got %f", specIndex, d.PDF[idx], pdf)
		}
	}
}

func TestPackLayout(t *testing.T) {
	d := New([]float32{2, 2})
	packed := d.Pack()

	if len(packed) != 1+3+2 {
		t.Fatalf("expected packed length 6; got %d", len(packed))
	}
	if packed[0] != 2 {
		t.Fatalf("expected packed count 2; got %d", packed[0])
	}
	if v := math.Float32frombits(packed[2]); !approxEqual(v, 0.5) {
		t.Fatalf("expected CDF[1] to be 0.5; got %f", v)
	}
	if v := math.Float32frombits(packed[5]); !approxEqual(v, 0.5) {
		t.Fatalf("expected PDF[1] to be 0.5; got %f", v)
	}

	empty := New(nil).Pack()
	if len(empty) != 2 || empty[0] != 0 || empty[1] != 0 {
		t.Fatalf("expected empty distribution to pack as [0 0]; got %v", empty)
	}
}

func approxEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-6
}

func TestDistributionSampleSkipsTrailingZeros(t *testing.T) {
	d := New([]float32{1, 2, 0, 0})

	for _, u := range []float32{0.99999, 1, 1.5} {
		idx, pdf := d.Sample(u)
		if idx != 1 {
			t.Fatalf("expected sample index 1 for u=%f; got %d", u, idx)
		}
		if pdf <= 0 {
			t.Fatalf("expected a positive pdf for u=%f; got %f", u, pdf)
		}
	}
}
