// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing conversation turns and histories. These
// helpers apply sensible defaults and are not intended for production usage.
package testutil
