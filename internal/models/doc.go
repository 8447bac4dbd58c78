// Package models defines the core domain models for Fritter.
//
// # Models
//
//   - User: a registered account, identified by a unique username
//   - Freet: a post, owned by its author and optionally shared into a group
//   - Group: a named, privacy-scoped collection of freets with member and
//     administrator sets
//
// Group carries the membership and visibility predicates used by the
// authorization chains in the service layer. The predicates are pure: they
// read a loaded Group and a user id and never touch storage.
//
// # Design principles
//
//  1. **No circular references**: models reference each other by id string,
//     never by pointer
//  2. **Storage-agnostic**: no database tags or driver types leak in here
//  3. **Usernames at the edge only**: models hold user ids; resolving ids to
//     usernames happens in response shaping
package models
