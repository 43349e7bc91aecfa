package zomeengine

// Memory is a host-side view over one guest linear-memory region.
// Implementations are scoped to a single module instance and a single call.
type Memory interface {
	// Read copies length bytes starting at offset into host-owned storage.
	Read(offset, length uint32) ([]byte, error)

	// Write places data into guest memory starting at offset.
	Write(offset uint32, data []byte) error

	// Size returns the current size of the region in bytes.
	Size() uint32
}
