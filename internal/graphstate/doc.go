// Package graphstate turns circuits into graph states for resource counting.
//
// A graph state is stored arena-style: vertex i has a local Clifford label
// (one of six classes, see LCO) and a set of neighbour indices. The Builder
// consumes native Clifford gates in a single pass. CZ is realized by
// clearing local Clifford content with local complementations and then a
// fixed two-vertex lookup table. Lower first moves T gates and rotations
// off the native stream onto graph nodes, teleporting a qubit to a fresh
// node whenever a Hadamard would otherwise cross pending measurements.
//
// Graph states are tracked modulo the Pauli frame; signs are never stored.
package graphstate
