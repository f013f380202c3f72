package director

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestCreateFloatTexture_Validation(t *testing.T) {
	d := newStub(t)
	tests := []struct {
		name string
		w, h int
	}{
		{"ZeroWidth", 0, 4},
		{"ZeroHeight", 4, 0},
		{"NegativeWidth", -1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.CreateFloatTexture(TextureConfig{Width: tt.w, Height: tt.h})
			if !errors.Is(err, ErrInvalidDimensions) {
				t.Errorf("CreateFloatTexture(%dx%d) = %v, want ErrInvalidDimensions", tt.w, tt.h, err)
			}
		})
	}
}

func TestCreateRawFloatTexture_SizeMismatch(t *testing.T) {
	d := newStub(t)
	_, err := d.CreateRawFloatTexture(2, 2, make([]float32, 7), "bad")
	if !errors.Is(err, ErrDataSizeMismatch) {
		t.Errorf("CreateRawFloatTexture with 7 floats = %v, want ErrDataSizeMismatch", err)
	}
}

func TestFloatTexture_WriteRead(t *testing.T) {
	d := newStub(t)
	tex, err := d.CreateFloatTexture(TextureConfig{Label: "rt", Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("CreateFloatTexture: %v", err)
	}
	defer tex.Release()

	if tex.Width() != 2 || tex.Height() != 2 || tex.Label() != "rt" {
		t.Errorf("texture = %dx%d %q, want 2x2 \"rt\"", tex.Width(), tex.Height(), tex.Label())
	}

	data := make([]float32, 16)
	for i := range data {
		data[i] = float32(i)
	}
	if err := tex.WriteFloats(data); err != nil {
		t.Fatalf("WriteFloats: %v", err)
	}
	if err := tex.WriteFloats(data[:15]); !errors.Is(err, ErrDataSizeMismatch) {
		t.Errorf("WriteFloats(short) = %v, want ErrDataSizeMismatch", err)
	}

	got, err := tex.ReadPixelFloats(0, 0, -1, -1)
	if err != nil {
		t.Fatalf("ReadPixelFloats(full): %v", err)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("full read[%d] = %v, want %v", i, got[i], data[i])
		}
	}

	// One texel from the second row.
	got, err = tex.ReadPixelFloats(1, 1, 1, 1)
	if err != nil {
		t.Fatalf("ReadPixelFloats(1,1,1,1): %v", err)
	}
	want := []float32{12, 13, 14, 15}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sub-rect read[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := tex.ReadPixelFloats(1, 0, 2, 1); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("out-of-bounds read = %v, want ErrInvalidDimensions", err)
	}
}

func TestFloatTexture_ReadPixelBytes(t *testing.T) {
	d := newStub(t)
	tex, err := d.CreateRawFloatTexture(1, 1, []float32{1, 0.5, -2, 0}, "bytes")
	if err != nil {
		t.Fatalf("CreateRawFloatTexture: %v", err)
	}
	defer tex.Release()

	got, err := tex.ReadPixelBytes(0, 0, -1, -1)
	if err != nil {
		t.Fatalf("ReadPixelBytes: %v", err)
	}
	if len(got) != 16 {
		t.Fatalf("len = %d, want 16", len(got))
	}
	for i, want := range []float32{1, 0.5, -2, 0} {
		bits := binary.LittleEndian.Uint32(got[i*4:])
		if v := math.Float32frombits(bits); v != want {
			t.Errorf("byte-decoded float[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestFloatTexture_Release(t *testing.T) {
	d := newStub(t)
	tex, err := d.CreateFloatTexture(TextureConfig{Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("CreateFloatTexture: %v", err)
	}

	tex.Release()
	tex.Release() // idempotent
	if !tex.IsReleased() {
		t.Error("IsReleased() = false after Release")
	}
	if err := tex.WriteFloats(make([]float32, 4)); !errors.Is(err, ErrTextureReleased) {
		t.Errorf("WriteFloats after Release = %v, want ErrTextureReleased", err)
	}
	if _, err := tex.ReadPixelFloats(0, 0, -1, -1); !errors.Is(err, ErrTextureReleased) {
		t.Errorf("ReadPixelFloats after Release = %v, want ErrTextureReleased", err)
	}
}

func TestWithRawDataTexture_Scoping(t *testing.T) {
	d := newStub(t)

	t.Run("ReleasesOnReturn", func(t *testing.T) {
		var captured *FloatTexture
		err := d.WithRawDataTexture(1, 1, []float32{1, 2, 3, 4}, func(tex *FloatTexture) error {
			captured = tex
			if tex.IsReleased() {
				t.Error("texture released inside the scope")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("WithRawDataTexture: %v", err)
		}
		if !captured.IsReleased() {
			t.Error("texture not released after the scope returned")
		}
	})

	t.Run("ReleasesOnError", func(t *testing.T) {
		var captured *FloatTexture
		wantErr := errors.New("kernel exploded")
		err := d.WithRawDataTexture(1, 1, []float32{0, 0, 0, 0}, func(tex *FloatTexture) error {
			captured = tex
			return wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Errorf("WithRawDataTexture = %v, want %v", err, wantErr)
		}
		if !captured.IsReleased() {
			t.Error("texture not released after fn error")
		}
	})

	t.Run("ReleasesOnPanic", func(t *testing.T) {
		var captured *FloatTexture
		func() {
			defer func() {
				if recover() == nil {
					t.Error("expected panic to propagate")
				}
			}()
			_ = d.WithRawDataTexture(1, 1, []float32{0, 0, 0, 0}, func(tex *FloatTexture) error {
				captured = tex
				panic("boom")
			})
		}()
		if !captured.IsReleased() {
			t.Error("texture not released after fn panic")
		}
	})

	t.Run("BadData", func(t *testing.T) {
		err := d.WithRawDataTexture(2, 1, []float32{1}, func(*FloatTexture) error {
			t.Error("fn ran despite bad data")
			return nil
		})
		if !errors.Is(err, ErrDataSizeMismatch) {
			t.Errorf("WithRawDataTexture(bad data) = %v, want ErrDataSizeMismatch", err)
		}
	})
}
