// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Implementations return the sentinel errors declared here, optionally
// wrapped, so services can match them with errors.Is.
package store
