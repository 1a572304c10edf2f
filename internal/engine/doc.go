// Package engine implements the resource search for graph-state compiled
// programs.
//
// An estimate runs in three nested loops:
//
//	synthesis tolerance  (tightened by 10x per attempt, bounded retries)
//	  code distance      (odd d from 3 upward, first d meeting the budget)
//	    factory catalog  (first factory whose output beats the cell error)
//
// Each subroutine of a program is compiled once per estimate into a
// graph state (a Partition), scheduled into measurement layers, and
// priced layer by layer against the accepted factory's throughput.
//
// Failure-rate comparisons use arbitrary-precision decimals; counts and
// cycles are plain ints. The estimator holds no mutable state between
// calls besides its logical clock, so results are deterministic for a
// given request.
package engine
