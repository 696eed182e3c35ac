// Package testutil provides deterministic data generation for tests and
// benchmarks.
//
// This package is intended for use in tests and benchmarks only.
//
//	rng := testutil.NewRNG(seed)
//	fw := rng.Bytes(64 * 1024)              // incompressible, like firmware
//	cfg := rng.CompressibleBytes(4 * 1024)  // repetitive, like config files
//
// The same seed always produces the same content, so benchmark runs stay
// comparable.
package testutil
