package stream

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// PointerMessage is the JSON a client sends when its pointer ray hits the
// sphere or the fallback plane.
type PointerMessage struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ParsePointer decodes and checks a pointer message.
func ParsePointer(data []byte) (mgl64.Vec3, error) {
	var m PointerMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return mgl64.Vec3{}, fmt.Errorf("decoding pointer: %w", err)
	}
	v := mgl64.Vec3{m.X, m.Y, m.Z}
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return mgl64.Vec3{}, fmt.Errorf("pointer %v is not finite", v)
		}
	}
	return v, nil
}

// PointerInbox holds the latest reported pointer locus. Input handlers write
// it from any goroutine; the frame loop takes one Snapshot per frame.
type PointerInbox struct {
	mu      sync.Mutex
	locus   mgl64.Vec3
	valid   bool
	updates uint64
}

// Set records a new locus.
func (b *PointerInbox) Set(p mgl64.Vec3) {
	b.mu.Lock()
	b.locus = p
	b.valid = true
	b.updates++
	b.mu.Unlock()
}

// Clear forgets the locus, e.g. when the pointer leaves the view.
func (b *PointerInbox) Clear() {
	b.mu.Lock()
	b.valid = false
	b.mu.Unlock()
}

// Snapshot returns the latest locus and whether one has been reported.
func (b *PointerInbox) Snapshot() (mgl64.Vec3, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locus, b.valid
}

// Updates returns how many loci have been recorded.
func (b *PointerInbox) Updates() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updates
}
