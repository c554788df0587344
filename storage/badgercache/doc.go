// Package badgercache implements storage.CacheStore on BadgerDB.
//
// Recommendation lists are stored under "rec:" + user id as JSON arrays with
// a per-entry TTL, so cached results expire on their own.
package badgercache
