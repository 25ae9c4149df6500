// Package dto defines the request payload shapes accepted by the HTTP
// handlers, with validation tags consumed by the validator package.
package dto
