package jsyn

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"jsyn/foreign"
	"jsyn/node"
	"jsyn/playback"
)

// NetType describes signal graphs handed to scripts. Finalizing a net
// releases decoded sample data, including samples inside a mix.
var NetType = foreign.Register(&foreign.Type[node.Node]{
	Name: "net",
	Finalize: func(n node.Node) {
		if c, ok := n.(io.Closer); ok {
			_ = c.Close()
		}
	},
	String: describe,
})

// HandleType describes playback handles handed to scripts. Finalizing a
// handle releases it without stopping playback.
var HandleType = foreign.Register(&foreign.Type[*playback.Handle]{
	Name: "handle",
	Finalize: func(h *playback.Handle) {
		h.Close()
	},
	Compare: func(a, b *playback.Handle) int {
		ida, idb := a.ID(), b.ID()
		return bytes.Compare(ida[:], idb[:])
	},
	Hash: func(h *playback.Handle) uint64 {
		id := h.ID()
		return binary.BigEndian.Uint64(id[:8]) ^ binary.BigEndian.Uint64(id[8:])
	},
	String: func(h *playback.Handle) string {
		return h.ID().String()
	},
})

func describe(n node.Node) string {
	switch n := n.(type) {
	case *node.Sine:
		return "sine"
	case *node.Saw:
		return "saw"
	case *node.Mix:
		return fmt.Sprintf("mix/%d", len(n.Inputs()))
	case *node.Sample:
		return fmt.Sprintf("sample@%d", n.Format().SampleRate)
	default:
		return fmt.Sprintf("%T", n)
	}
}
