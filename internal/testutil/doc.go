// Package testutil contains helper fakes and builders used across tests to
// reduce boilerplate when constructing core model objects (agents, messages)
// and scripting runtime invocations. These helpers are intentionally minimal
// and avoid adding third-party dependencies. They are not intended for
// production usage.
package testutil
