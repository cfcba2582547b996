// Package models defines domain entities and persistence interfaces for the steamwatch price tracker.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): structs mirroring the remote functions' JSON
//   - [TrackedItem] : a user's watch on one market item against a target price
//   - [SearchResult] : a market search hit
//   - [RefreshReport] : outcome of a server-side price refresh / auto-purchase run
//   - [Identity] : the Steam account that scopes every remote store call
//
// 2. Persistent Entities: rows in the local state database
//   - [Notification] : user-facing notices about price drops, purchases and failures
//
// Persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
