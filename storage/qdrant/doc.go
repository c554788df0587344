// Package qdrant implements storage.VectorStore on Qdrant over gRPC.
package qdrant
