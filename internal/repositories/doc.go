// Package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific entity type.
// The package currently holds a single repository:
//
//   - [CredentialRepository] : per-session OAuth token records
//
// Credential writes go through Upsert, keyed by session id, so the table can
// never hold two rows for the same session. Deletes are idempotent; deleting
// an absent credential is not an error. Reads of an absent credential return
// a nil record rather than an error, since "no credential" is an ordinary
// state (a visitor who never logged in) and callers branch on absence.
package repositories
