// Package reactive provides the two primitives the component tree is built on:
//
//   - Cell: a shared string value observed by the harness, with change listeners
//   - Scope: the lifecycle boundary of a mounted component, owning its cleanups
//
// A component that writes to a Cell does so through a Writer bound to its
// Scope. The Writer registers a cleanup that clears the Cell when the Scope
// unmounts, so navigating away from a component resets what it wrote.
//
// Unmount is always an explicit, synchronous call made by whoever mounted the
// component. Nothing here relies on finalizers.
package reactive
