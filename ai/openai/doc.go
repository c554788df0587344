// Package openai provides an ai.Provider implementation backed by
// OpenAI-compatible embedding APIs (OpenAI, Ollama, LocalAI, vLLM).
package openai
