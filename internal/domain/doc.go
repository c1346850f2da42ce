// Package domain contains the core business entities, value objects, and
// domain logic of the application: users, tasks, comments, attachments and
// the per-task activity log. It is independent of any specific
// infrastructure or delivery mechanism.
package domain
