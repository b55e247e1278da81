package scene

import (
	"fmt"
	"sync/atomic"
)

// The maximum number of scene controllers that can track dirty state for
// the same scene objects.
const MaxControllers = 64

// ControllerID identifies a scene controller. Each controller keeps its own
// dirty bit on every scene object so several controllers can compile the same
// scene independently.
type ControllerID uint8

var (
	nextObjectID     atomic.Uint64
	nextControllerID atomic.Uint32
)

// Allocate a new controller id. It panics if more than MaxControllers ids are
// requested during the lifetime of the process.
func NewControllerID() ControllerID {
	id := nextControllerID.Add(1) - 1
	if id >= MaxControllers {
		panic(fmt.Sprintf("scene: cannot allocate more than %d controller ids", MaxControllers))
	}
	return ControllerID(id)
}

func (c ControllerID) bit() uint64 {
	return 1 << uint(c)
}

// Object is embedded by all scene objects. The zero value is a valid object
// that is dirty for every controller.
type Object struct {
	id atomic.Uint64

	// A set bit means the object is clean for that controller.
	clean atomic.Uint64
}

// Get the object id. Ids are unique for the lifetime of the process and
// start at 1.
func (o *Object) ID() uint64 {
	for {
		if id := o.id.Load(); id != 0 {
			return id
		}
		if o.id.CompareAndSwap(0, nextObjectID.Add(1)) {
			return o.id.Load()
		}
	}
}

// Check if the object changed since the controller last cleared it.
func (o *Object) IsDirty(c ControllerID) bool {
	return o.clean.Load()&c.bit() == 0
}

// Mark object as dirty for all controllers.
func (o *Object) SetDirty() {
	o.clean.Store(0)
}

// Clear the dirty bit for a controller.
func (o *Object) ClearDirty(c ControllerID) {
	for {
		old := o.clean.Load()
		if o.clean.CompareAndSwap(old, old|c.bit()) {
			return
		}
	}
}

// Dirtiable is implemented by all scene objects.
type Dirtiable interface {
	ID() uint64
	IsDirty(c ControllerID) bool
	SetDirty()
	ClearDirty(c ControllerID)
}
