// Package richardson solves the Richardson equations of the reduced
// pairing Hamiltonian for the exact rapidities of a many-pair eigenstate,
// and evaluates the pair-pair correlator through the Gaudin matrix.
//
// The package provides:
//
//   - [Seed]: initial rapidity guess from the dispersion spectrum
//   - [Solve]: damped, regularized Newton iteration at a fixed coupling
//   - [Continue]: adaptive homotopy from a small coupling to the target
//   - [BuildGaudin]: the Jacobian-like Gaudin matrix at a solution
//   - [Correlator]: the normalized pair-pair correlator C = Phi^T G^-1 Phi
//
// # Numerical conventions
//
// All denominators carry a small positive imaginary regularizer eta so the
// iteration survives near-pole configurations. Eta is scheduled by the
// continuation driver: large far from the target coupling, small at it.
//
// # Thread safety
//
// Every entry point is a pure function of its arguments plus an immutable
// Options value; independent solves may run concurrently. A single
// continuation run is strictly sequential.
package richardson
