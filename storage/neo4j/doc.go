// Package neo4j implements storage.GraphStore on Neo4j via the Bolt driver.
package neo4j
