// Package mongo implements storage.DocumentStore on MongoDB.
//
// One document per conversation record, embedding excluded. Each ingestion
// run replaces the full collection contents.
package mongo
