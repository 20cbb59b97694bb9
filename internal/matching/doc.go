// Package matching pairs newly reported items with existing items of the
// opposite status and notifies both reporters about each new pair.
//
// Scoring and candidate selection are pure functions. Persistence and
// delivery are reached only through the interfaces declared in this package,
// so the whole workflow runs against in-memory fakes in tests and against
// the SQLite store in production.
package matching
