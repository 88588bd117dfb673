// Package forces computes the force a charged source exerts on a batch of
// field points.
//
// Two models are provided:
//
//   - [Coulomb]: inverse-square electrostatic force, suppressed inside the
//     source radius
//   - [Lorentz]: the radiative 1/r term driven by the component of the
//     source's retarded acceleration transverse to the line of sight
//
// Both account for finite propagation speed with a single-shot retardation:
// the light delay to each point is computed from the source's present
// position and the source position is then looked up once in its history at
// that delay. This is an approximation, not a converged retarded-time solve.
package forces
