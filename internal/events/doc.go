// Package events provides the in-process domain event bus.
//
// Services emit events after their transaction commits without knowing who
// consumes them. The real-time relay turns them into pushes to connected
// clients and the job queue turns them into background work.
package events
