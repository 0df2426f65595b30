package clientdist

import _ "embed"

// DragdJS is the browser client. It forwards pointer, scroll and resize
// events to the server and applies the patches it receives.
//
// It is served at "/_dragd/client.js".
//
//go:embed dragd.js
var DragdJS []byte
