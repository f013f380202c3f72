package director

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/qsim"
	"github.com/gogpu/qsim/qmath"
)

// Round trips through float32 texel packing cost precision; tolerances
// here are wider than the pure complex128 math tests.
const renderEps = 1e-6

func bellCircuit(t *testing.T) *qsim.Circuit {
	t.Helper()
	return qsim.NewCircuit(qsim.R(0, 0, 540, 80), 2).WithColumns(
		qsim.NewGateColumn([]*qsim.Gate{qsim.GateH, nil}),
		qsim.NewGateColumn([]*qsim.Gate{qsim.GateControl, qsim.GateX}),
	)
}

func TestApplyUnitary_MatchesCPU(t *testing.T) {
	d := newStub(t)
	c := bellCircuit(t)

	state := []complex128(qmath.ZeroState(2))
	for i := 0; i < c.NumColumns(); i++ {
		u := c.Column(i).Unitary(0)
		got, err := d.ApplyUnitary(state, u)
		if err != nil {
			t.Fatalf("ApplyUnitary(column %d): %v", i, err)
		}
		want := u.ApplyTo(qmath.Vector(state))
		if !qmath.Vector(got).ApproxEqual(want, renderEps) {
			t.Fatalf("column %d: got %v, want %v", i, got, want)
		}
		state = got
	}

	s := complex(1/math.Sqrt2, 0)
	want := qmath.Vector{s, 0, 0, s}
	if !qmath.Vector(state).ApproxEqual(want, renderEps) {
		t.Errorf("final state = %v, want %v", state, want)
	}
}

func TestApplyUnitary_Validation(t *testing.T) {
	d := newStub(t)

	if _, err := d.ApplyUnitary([]complex128{1, 0, 0}, qmath.Identity(3)); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("non-power-of-two amplitudes = %v, want ErrInvalidDimensions", err)
	}
	if _, err := d.ApplyUnitary(nil, qmath.Identity(1)); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("empty amplitudes = %v, want ErrInvalidDimensions", err)
	}
	if _, err := d.ApplyUnitary([]complex128{1, 0}, qmath.Identity(4)); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("mismatched matrix = %v, want ErrInvalidDimensions", err)
	}
}

func TestApplyUnitary_SingleAmplitude(t *testing.T) {
	d := newStub(t)
	got, err := d.ApplyUnitary([]complex128{complex(0, 1)}, qmath.Identity(1))
	if err != nil {
		t.Fatalf("ApplyUnitary: %v", err)
	}
	if len(got) != 1 || !qmath.Vector(got).ApproxEqual(qmath.Vector{complex(0, 1)}, renderEps) {
		t.Errorf("got %v, want [0+1i]", got)
	}
}

func TestDirector_FinalState(t *testing.T) {
	d := newStub(t)
	c := bellCircuit(t)

	got, err := d.FinalState(c, 0)
	if err != nil {
		t.Fatalf("FinalState: %v", err)
	}
	want := c.FinalState(0)
	if !got.ApproxEqual(want, renderEps) {
		t.Errorf("director FinalState = %v, want %v", got, want)
	}
}

func TestDirector_FinalState_TimeDependent(t *testing.T) {
	d := newStub(t)
	c := qsim.NewCircuit(qsim.R(0, 0, 540, 40), 1).WithColumns(
		qsim.NewGateColumn([]*qsim.Gate{qsim.GateClock}),
	)

	for _, tm := range []float64{0, 0.25, 1} {
		got, err := d.FinalState(c, tm)
		if err != nil {
			t.Fatalf("FinalState(t=%v): %v", tm, err)
		}
		if want := c.FinalState(tm); !got.ApproxEqual(want, renderEps) {
			t.Errorf("t=%v: got %v, want %v", tm, got, want)
		}
	}
}

func TestCompileShader_StubMirror(t *testing.T) {
	d := newStub(t)

	// A kernel that doubles every channel of its target.
	double, err := d.CompileShader("", "cs_double", "double", func(target *FloatTexture, args []UniformArg) error {
		for i := range target.data {
			target.data[i] *= 2
		}
		return nil
	})
	if err != nil {
		t.Fatalf("CompileShader: %v", err)
	}
	defer double.Release()

	if double.Label() != "double" || double.SPIRVCode() != nil {
		t.Errorf("stub shader = %q spirv=%v, want \"double\" with no SPIR-V", double.Label(), double.SPIRVCode())
	}

	target, err := d.CreateRawFloatTexture(1, 1, []float32{1, 2, 3, 4}, "target")
	if err != nil {
		t.Fatalf("CreateRawFloatTexture: %v", err)
	}
	defer target.Release()

	if err := d.Render(target, double, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	got, err := target.ReadPixelFloats(0, 0, -1, -1)
	if err != nil {
		t.Fatalf("ReadPixelFloats: %v", err)
	}
	for i, want := range []float32{2, 4, 6, 8} {
		if got[i] != want {
			t.Errorf("texel[%d] = %v, want %v", i, got[i], want)
		}
	}
}

func TestRender_Validation(t *testing.T) {
	d := newStub(t)
	shader, err := d.CompileShader("", "cs_noop", "noop", nil)
	if err != nil {
		t.Fatalf("CompileShader: %v", err)
	}
	target, err := d.CreateFloatTexture(TextureConfig{Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("CreateFloatTexture: %v", err)
	}
	defer target.Release()

	if err := d.Render(nil, shader, nil); err == nil {
		t.Error("Render(nil target) succeeded")
	}
	if err := d.Render(target, nil, nil); err == nil {
		t.Error("Render(nil shader) succeeded")
	}

	arg, err := d.CreateFloatTexture(TextureConfig{Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("CreateFloatTexture: %v", err)
	}
	arg.Release()
	err = d.Render(target, shader, []UniformArg{TextureArg("u_in", arg)})
	if !errors.Is(err, ErrTextureReleased) {
		t.Errorf("Render with released arg texture = %v, want ErrTextureReleased", err)
	}

	shader.Release()
	if err := d.Render(target, shader, nil); !errors.Is(err, ErrShaderReleased) {
		t.Errorf("Render with released shader = %v, want ErrShaderReleased", err)
	}

	other := newStub(t)
	otherShader, err := other.CompileShader("", "cs_noop", "noop", nil)
	if err != nil {
		t.Fatalf("CompileShader: %v", err)
	}
	if err := d.Render(target, otherShader, nil); err == nil {
		t.Error("Render with foreign shader succeeded")
	}
}
