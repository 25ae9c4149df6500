// Package errors provides the application error taxonomy shared by services,
// handlers, and middleware. Every error carries a machine code and the HTTP
// status it maps to, so route handlers never inspect message strings.
package errors
