package animator

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// of an animator's skinning bind group at a given byte offset.
// Data points into the animator's staging memory and stays valid until the next Update.
type BufferWrite struct {
	Label   string
	Binding int
	Offset  uint64
	Data    []byte
}
