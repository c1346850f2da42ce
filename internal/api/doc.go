// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and the internal application services, translating HTTP concerns to
// business operations.
//
// Mount registers the REST surface: /api/auth for registration, login and
// token refresh, and the authenticated /api/tasks, /api/comments,
// /api/attachments and /api/activity groups. Stored uploads are served
// publicly from /uploads.
package api
