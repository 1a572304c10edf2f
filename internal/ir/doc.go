// Package ir holds the shared value types of the resource estimator:
// circuits, programs, hardware models, factory descriptors and the
// resulting ResourceInfo.
//
// ir imports nothing internal. Every other package builds on it, so the
// types here stay plain data with small helper methods.
//
// Key design constraints:
//   - Values are immutable once built; transforms return new values
//   - All JSON tags use snake_case
//   - Content hashes go through MarshalCanonical, which has no float type,
//     so floating-point inputs are hashed as shortest round-trip strings
package ir
