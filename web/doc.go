// Package web exposes the FAQ matching engine over HTTP.
//
// The API mirrors a small chatbot surface: a question endpoint that returns
// the best matching answer (or a fallback when nothing matches), plus CRUD
// endpoints for managing the FAQ knowledge base.
package web
