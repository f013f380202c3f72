package director

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

// newStub returns a stub-mode director for tests.
func newStub(t *testing.T) *Director {
	t.Helper()
	d, err := New(nil, nil, Config{})
	if err != nil {
		t.Fatalf("New(nil, nil) = %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func TestNew_StubMode(t *testing.T) {
	d := newStub(t)
	if !d.IsStub() {
		t.Error("IsStub() = false for nil device")
	}
	if gen := d.Generation(); gen != 1 {
		t.Errorf("Generation() = %d, want 1", gen)
	}
	if err := d.CheckForError(); err != nil {
		t.Errorf("CheckForError() = %v, want nil", err)
	}
}

func TestErrorCode_String(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrorCodeNone, "NO_ERROR"},
		{ErrorCodeInvalidEnum, "INVALID_ENUM"},
		{ErrorCodeInvalidValue, "INVALID_VALUE"},
		{ErrorCodeInvalidOperation, "INVALID_OPERATION"},
		{ErrorCodeOutOfMemory, "OUT_OF_MEMORY"},
		{ErrorCodeInvalidFramebufferOperation, "INVALID_FRAMEBUFFER_OPERATION"},
		{ErrorCodeContextLost, "CONTEXT_LOST"},
		{ErrorCode(0x1234), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("ErrorCode(%#x).String() = %q, want %q", uint32(tt.code), got, tt.want)
		}
	}
}

func TestDeviceError_IncludesNumericCode(t *testing.T) {
	err := &DeviceError{Op: "render", Code: ErrorCodeOutOfMemory}
	msg := err.Error()
	for _, want := range []string{"render", "OUT_OF_MEMORY", "0x0505"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q missing %q", msg, want)
		}
	}
}

func TestClassifyDeviceError(t *testing.T) {
	tests := []struct {
		msg  string
		want ErrorCode
	}{
		{"Allocation failed: out of memory", ErrorCodeOutOfMemory},
		{"device lost", ErrorCodeContextLost},
		{"incomplete framebuffer attachment", ErrorCodeInvalidFramebufferOperation},
		{"unsupported texture format", ErrorCodeInvalidEnum},
		{"binding size out of range", ErrorCodeInvalidValue},
		{"something else entirely", ErrorCodeInvalidOperation},
	}
	for _, tt := range tests {
		if got := classifyDeviceError(errors.New(tt.msg)); got != tt.want {
			t.Errorf("classifyDeviceError(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
	if got := classifyDeviceError(nil); got != ErrorCodeNone {
		t.Errorf("classifyDeviceError(nil) = %v, want NO_ERROR", got)
	}
}

func TestDirector_StickyFault(t *testing.T) {
	d := newStub(t)
	d.RecordFault("upload", ErrorCodeOutOfMemory)

	var devErr *DeviceError
	err := d.CheckForError()
	if !errors.As(err, &devErr) {
		t.Fatalf("CheckForError() = %v, want *DeviceError", err)
	}
	if devErr.Code != ErrorCodeOutOfMemory || devErr.Op != "upload" {
		t.Errorf("fault = %+v, want OUT_OF_MEMORY at upload", devErr)
	}

	// The first fault wins; later ones do not overwrite it.
	d.RecordFault("render", ErrorCodeInvalidValue)
	err = d.CheckForError()
	if !errors.As(err, &devErr) || devErr.Code != ErrorCodeOutOfMemory {
		t.Errorf("second CheckForError() = %v, want the original OUT_OF_MEMORY", err)
	}
}

func TestDirector_ContextLossAndRestore(t *testing.T) {
	d := newStub(t)
	genBefore := d.Generation()

	tex, err := d.CreateFloatTexture(TextureConfig{Width: 2, Height: 1})
	if err != nil {
		t.Fatalf("CreateFloatTexture: %v", err)
	}

	d.NotifyContextLost()

	var devErr *DeviceError
	if err := d.CheckForError(); !errors.As(err, &devErr) || devErr.Code != ErrorCodeContextLost {
		t.Fatalf("CheckForError() after loss = %v, want CONTEXT_LOST", err)
	}
	// While lost, new resources cannot be created.
	if _, err := d.CreateFloatTexture(TextureConfig{Width: 2, Height: 1}); err == nil {
		t.Error("CreateFloatTexture succeeded on a lost context")
	}

	d.NotifyContextRestored()

	if err := d.CheckForError(); err != nil {
		t.Errorf("CheckForError() after restore = %v, want nil", err)
	}
	if d.Generation() != genBefore+1 {
		t.Errorf("Generation() = %d, want %d", d.Generation(), genBefore+1)
	}
	// The old texture is stale, not silently usable.
	if _, err := tex.ReadPixelFloats(0, 0, -1, -1); !errors.Is(err, ErrStaleGeneration) {
		t.Errorf("stale texture read = %v, want ErrStaleGeneration", err)
	}
}

func TestDirector_ContextLossIdempotent(t *testing.T) {
	d := newStub(t)
	d.NotifyContextLost()
	d.NotifyContextLost()
	d.NotifyContextRestored()
	d.NotifyContextRestored()
	if d.Generation() != 2 {
		t.Errorf("Generation() = %d, want 2 after one loss/restore cycle", d.Generation())
	}
}

func TestDirector_Close(t *testing.T) {
	d, err := New(nil, nil, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d.Close()
	d.Close() // idempotent

	if _, err := d.CreateFloatTexture(TextureConfig{Width: 1, Height: 1}); !errors.Is(err, ErrClosed) {
		t.Errorf("CreateFloatTexture after Close = %v, want ErrClosed", err)
	}
	if _, err := d.CompileShader("", "main", "test", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("CompileShader after Close = %v, want ErrClosed", err)
	}
}

func TestDirector_ConcurrentLifecycleQueries(t *testing.T) {
	d := newStub(t)

	var wg sync.WaitGroup
	const goroutines = 50

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = d.Generation()
			_ = d.IsStub()
			_ = d.CheckForError()
		}()
	}
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.NotifyContextLost()
			d.NotifyContextRestored()
		}()
	}
	wg.Wait()

	if err := d.CheckForError(); err != nil {
		t.Errorf("CheckForError() after restore = %v, want nil", err)
	}
}

func TestDirector_Attach(t *testing.T) {
	d := newStub(t)
	if err := d.Attach(nil); !errors.Is(err, ErrNoDevice) {
		t.Errorf("Attach(nil) = %v, want ErrNoDevice", err)
	}
	// The null handle has no HAL access behind it.
	if err := d.Attach(NullDeviceHandle{}); err == nil {
		t.Error("Attach(NullDeviceHandle) succeeded")
	}
	// The director is still usable in stub mode after a failed attach.
	if _, err := d.CreateFloatTexture(TextureConfig{Width: 1, Height: 1}); err != nil {
		t.Errorf("CreateFloatTexture after failed Attach = %v", err)
	}
}
