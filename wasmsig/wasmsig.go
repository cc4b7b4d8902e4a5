// Package wasmsig loads an optional user-supplied WASM module that
// post-processes the extracted signal vector. The module contract:
//
//	allocate(size) -> ptr        guest allocator
//	shape(textPtr, textLen, sigPtr)
//
// sigPtr points at 4 little-endian float64 values (L, J, P, W) prefilled
// with the lexical extraction; the guest rewrites them in place. Outputs
// are clamped to [0,1] on the host side, so a misbehaving module can bend
// the signals but never destabilize the field.
package wasmsig

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/tetratelabs/wazero"

	"resonant/field"
)

const sigBytes = 32 // 4 float64

type Shaper struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
}

// Load compiles the module at path. Returns (nil, nil) when no file
// exists there; a missing plugin is the normal case, not an error.
func Load(ctx context.Context, path string) (*Shaper, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read signal module: %w", err)
	}

	rt := wazero.NewRuntime(ctx)
	compiled, err := rt.CompileModule(ctx, raw)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("compile signal module: %w", err)
	}

	return &Shaper{runtime: rt, compiled: compiled}, nil
}

func (s *Shaper) Close(ctx context.Context) error {
	return s.runtime.Close(ctx)
}

// Filter adapts the shaper into the controller's signal filter. Any guest
// failure falls back to the unmodified signals.
func (s *Shaper) Filter(ctx context.Context) field.SignalFilter {
	return func(text string, sig field.Signals) field.Signals {
		shaped, err := s.shape(ctx, text, sig)
		if err != nil {
			return sig
		}
		return shaped
	}
}

func (s *Shaper) shape(ctx context.Context, text string, sig field.Signals) (field.Signals, error) {
	mod, err := s.runtime.InstantiateModule(ctx, s.compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return sig, fmt.Errorf("instantiate signal module: %w", err)
	}
	defer mod.Close(ctx)

	mem := mod.Memory()
	alloc := mod.ExportedFunction("allocate")
	shape := mod.ExportedFunction("shape")
	if mem == nil || alloc == nil || shape == nil {
		return sig, fmt.Errorf("signal module missing exports")
	}

	write := func(data []byte) (uint32, error) {
		res, err := alloc.Call(ctx, uint64(len(data)))
		if err != nil || len(res) == 0 {
			return 0, fmt.Errorf("allocate failed: %w", err)
		}
		ptr := uint32(res[0])
		if !mem.Write(ptr, data) {
			return 0, fmt.Errorf("mem write failed")
		}
		return ptr, nil
	}

	textPtr, err := write([]byte(text))
	if err != nil {
		return sig, err
	}
	sigPtr, err := write(EncodeSignals(sig))
	if err != nil {
		return sig, err
	}

	if _, err := shape.Call(ctx, uint64(textPtr), uint64(len(text)), uint64(sigPtr)); err != nil {
		return sig, fmt.Errorf("shape call failed: %w", err)
	}

	out, ok := mem.Read(sigPtr, sigBytes)
	if !ok {
		return sig, fmt.Errorf("mem read failed")
	}
	return DecodeSignals(out), nil
}

// EncodeSignals packs a signal vector as 4 little-endian float64 values.
func EncodeSignals(sig field.Signals) []byte {
	buf := make([]byte, sigBytes)
	binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(sig.L))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(sig.J))
	binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(sig.P))
	binary.LittleEndian.PutUint64(buf[24:], math.Float64bits(sig.W))
	return buf
}

// DecodeSignals unpacks and clamps a guest-written signal vector. NaN or
// infinite values collapse to 0.
func DecodeSignals(buf []byte) field.Signals {
	read := func(off int) float64 {
		v := math.Float64frombits(binary.LittleEndian.Uint64(buf[off:]))
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}
	return field.Signals{L: read(0), J: read(8), P: read(16), W: read(24)}
}
