// Package memory provides in-process implementations of every storage
// interface. They back the pipeline and orchestrator tests and are handy for
// local experimentation without external services.
package memory
