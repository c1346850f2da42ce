// Package relay is the real-time publish/subscribe layer.
//
// Clients connect over WebSocket, join per-task rooms and exchange JSON
// envelopes of the form {"event": name, "data": payload}. The hub re-emits
// what clients send to their peers and pushes server-side domain events
// (task deletions, new activity) to the relevant rooms.
//
// Delivery is best effort. There is no ordering guarantee, no persistence
// and no replay: a client whose send buffer is full simply misses the
// message. When a Backplane is configured every broadcast is also shared
// with the other server instances through Redis pub/sub.
package relay
