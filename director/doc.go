// Package director manages GPU compute for quantum state evolution.
//
// Amplitudes live in 32-bit float RGBA textures, two complex values
// per texel. A Director owns the device, compiles WGSL kernels through
// naga, and runs synchronous dispatch-and-read-back round trips. Every
// GPU-visible resource is tagged with the context generation it was
// created under; a context loss bumps the generation and turns stale
// handles into errors instead of undefined behavior.
//
// A Director created without a device runs in stub mode: the same API,
// evaluated by CPU mirrors of the kernels. Tests and headless callers
// use this path.
package director
