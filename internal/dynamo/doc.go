// Package dynamo provides the shared primitives of the muscle mesh simulation.
//
// The package defines the small vocabulary every component speaks:
//
//   - [Vec]: 2D position/velocity (gonum r2 vector)
//   - [Bounds]: the rectangular simulation domain with an optional margin
//   - [Source]: an active attractor as seen by force models (position + level)
//   - [Body]: a damped point mass integrated with semi-implicit Euler
//
// # Example
//
//	b := dynamo.NewBounds(800, 500, 40, true)
//	x := dynamo.MapRange(0.5, b.Left(), b.Right())
//
// # Thread Safety
//
// Nothing in this package holds mutable shared state except [DefaultTrigTable],
// which is read-only after package initialization.
package dynamo
