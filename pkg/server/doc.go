// Package server hosts drag-and-drop pages over WebSocket.
//
// Every connection gets its own Session: a document parsed from the
// configured page, an input surface and a dnd.Controller attached to it.
// The client forwards pointer, scroll and resize events; the session feeds
// them through the controller and streams the resulting document mutations
// back as patches, so the browser mirrors the server-side document.
//
// Routes:
//
//	GET /                  the page, with the client script injected
//	GET /_dragd/client.js  the client script
//	GET /ws                the event/patch WebSocket
//	GET /metrics           Prometheus metrics
//	GET /healthz           liveness probe
//
// Finished drags are counted in Prometheus, traced with OpenTelemetry (one
// span per activated drag) and appended to the journal when one is set.
package server
