// Package graph defines the design graph for roundex.
// The design graph is an immutable DAG of bodies (solids, shells and beams),
// transforms and groups produced by evaluating a script.
package graph
