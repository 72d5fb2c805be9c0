// Package events carries deck lifecycle notifications from the service
// layer to whoever is interested (a CLI progress line, a log), without the
// service knowing about them.
//
// The primary components are:
//   - Event: a typed notification with a JSON payload
//   - EventHandler: receives events
//   - EventEmitter: publishes events; InMemoryEventEmitter fans out in-process
package events
