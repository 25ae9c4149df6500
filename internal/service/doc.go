// Package service implements the business rules behind the HTTP handlers.
//
// Services depend on repository interfaces defined in this package, so they
// can be tested with mocks and wired with the PostgreSQL implementations in
// production. Errors returned to handlers are AppError values from the
// errors package; anything else is treated as internal.
package service
