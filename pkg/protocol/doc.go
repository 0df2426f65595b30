// Package protocol implements the binary wire protocol spoken between a
// dragd page and its server.
//
// Pointer, scroll and resize events flow from client to server; style and
// tree patches flow back so the page mirrors the server-side document.
//
// # Wire Format
//
// Every WebSocket message carries one frame with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Reserved     │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameEvent (0x01): Client → Server events
//   - FramePatches (0x02): Server → Client patches
//   - FrameError (0x05): Error message
//
// # Encoding
//
//   - Varint: unsigned integers (protobuf-style)
//   - ZigZag: signed integers encoded as unsigned varints
//   - Length-prefixed: strings prefixed with varint length
//   - Big-endian: fixed-width integers and IEEE 754 floats
//
// Elements are addressed by their id attribute. Pages are canonicalized
// before being served so every element has one.
package protocol
