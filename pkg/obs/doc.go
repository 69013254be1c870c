// Package obs describes the obs-websocket request, response and event payloads
// on top of the opaque frames delivered by obsws.
package obs
