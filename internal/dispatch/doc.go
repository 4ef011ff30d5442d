// Package dispatch assembles, records, and drives a single GPU compute
// dispatch: a storage buffer bound to an embedded WGSL shader, one compute
// pass, a copy into a host-readable buffer, and the mapped readback.
package dispatch
