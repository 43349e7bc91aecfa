// Package memory manages one guest linear-memory page per call.
//
// The manager is a bump allocator: writes land at the current offset and
// advance it, nothing is ever freed. The page dies with the module
// instance at call end, which is the whole deallocation story.
package memory
