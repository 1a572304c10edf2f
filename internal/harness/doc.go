// Package harness provides conformance testing for the resource estimator.
//
// A scenario names a hardware model, a program written as QASM subroutines
// and an error budget, then runs a list of estimate steps and checks their
// results.
//
// # Scenario Format
//
//	name: rotation_modes
//	description: "Space and Time optimization of one rotation"
//	hardware:
//	  preset: basic_sc
//	program:
//	  name: h_rz_cnot
//	  subroutines:
//	    - name: main
//	      qasm: |
//	        qreg q[2]; h q[0]; rz(0.3) q[0]; cx q[0],q[1];
//	budget:
//	  total: 1e-3
//	  weights: {circuit_generation: 0, synthesis: 1, error_correction: 1}
//	steps:
//	  - name: space
//	    optimization: Space
//	    expect: {code_distance: 9, total_cycles: 663}
//	assertions:
//	  - type: no_warnings
//	    step: space
//
// # Assertion Types
//
//   - has_warning: A step carries a warning code
//   - no_warnings: A step carries no warnings
//   - null_result: A step returned the null sentinel
//   - compare: A result field of one step relates to another step's (lt, le, eq, ne, ge, gt)
//   - history_count: The estimate history holds N rows for a program/optimization
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory store with a fixed run
// token and a logical clock starting at zero, so identical scenarios
// produce byte-identical golden snapshots.
package harness
