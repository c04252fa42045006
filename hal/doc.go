// Package hal describes the display compositor as seen by the render loop.
//
// The compositor owns displays, pixel resources and visual elements. Changes
// to elements are batched in updates which become visible with the next
// vertical blank after they were submitted. All handles are opaque and only
// valid for the Device that returned them.
//
// Implementations live in the sub packages: sim is an in-memory compositor
// used by tests, ebitenhw renders into a desktop window.
package hal
