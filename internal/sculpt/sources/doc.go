// Package sources adapts external landmark providers into l1landmarks
// frames: a JSON-lines stream from a camera sidecar, a recorded session,
// or a fixed slice of frames for tests.
package sources
