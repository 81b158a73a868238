// Package models lists the models offered by the configured LLM backend.
// OpenAI models come from the models endpoint and are filtered to chat
// models. Ollama models come from the local /api/tags endpoint.
package models
