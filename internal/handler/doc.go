// Package handler contains HTTP request handlers for the Fanfie API.
//
// Handlers parse and validate requests, call the services, and shape every
// response through the Envelope. Errors propagate as AppError values to the
// app ErrorHandler, which renders the error envelope with rate-limit
// metadata intact.
//
// # Route Organization
//
//   - /api/auth/* - registration and session routes (auth rate-limit class)
//   - /api/me - current session's user
//   - /api/organizations/* - organizations and their project operations
//   - /api/projects/* - project CRUD and transfer
//   - /api/images/* - image records and capture uploads (images class)
//   - /health, /readyz, /livez - probes, outside admission
//
// All handlers are safe for concurrent use.
package handler
