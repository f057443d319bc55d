// Package models defines domain entities and persistence interfaces for the artistmix playlist builder.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs reshaped from Spotify API payloads
//   - [CurrentUser] : Profile of the session's authenticated user
//   - [Artist] : Resolved artist from a search query
//   - [Playlist] : Playlist metadata, created or listed
//
// DTOs are transient. They exist only for the duration of a single build or
// listing operation and carry no independent lifecycle. List-valued optional
// fields (profile images, external URLs) that are empty in the source payload
// are omitted from the DTO entirely, never emitted as null or empty strings.
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Credential] : Per-session OAuth token record, upserted on login and refresh
//
// Persistent entities implement the [Model] interface providing identity,
// timestamps, and validation. The [Repository] interface defines standard CRUD
// operations for database access.
package models
