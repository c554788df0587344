// Package sqlite implements storage.AnalyticsStore on SQLite.
//
// The store holds one aggregate table, user_analytics, keyed by
// (user_id, campaign_id) and rebuilt in full on every ingestion run.
package sqlite
