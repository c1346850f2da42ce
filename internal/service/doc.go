// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// Every change to a task, its comments or its attachments is written together
// with the activity entry that describes it, inside one transaction. Domain
// events are emitted only after that transaction commits, and a failure to
// emit is logged rather than returned: the stored state is authoritative and
// real-time delivery is best effort.
//
// Services depend on store interfaces and store.Transactor, never on a
// concrete database, so they can be exercised with the mocks package.
package service
