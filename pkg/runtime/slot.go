package runtime

import (
	"fmt"

	"github.com/vango-dev/use/internal/errors"
)

// UseSlot returns the hook state stored at the current slot, calling init
// to create it on the first render. kind names the hook; in debug mode a
// different kind at the same position panics with a hook order error.
func UseSlot[T any](u *Unit, kind string, init func() T) T {
	idx := u.slotIdx
	u.slotIdx++

	if idx < len(u.slots) {
		if u.loop.debug && u.slotKinds[idx] != kind {
			panic(errors.New("M001").
				WithDetail(fmt.Sprintf("slot %d was %s, now %s", idx, u.slotKinds[idx], kind)))
		}
		v, ok := u.slots[idx].(T)
		if !ok {
			panic(errors.New("M001").
				WithDetail(fmt.Sprintf("slot %d holds %T, hook %s expects %T", idx, u.slots[idx], kind, v)))
		}
		return v
	}

	if u.loop.debug && u.renders.Load() > 1 {
		panic(errors.New("M001").
			WithDetail(fmt.Sprintf("hook %s added slot %d after the first render", kind, idx)))
	}
	if !u.rendering && u.renders.Load() > 0 {
		u.logger.Warn("hook called outside render", "kind", kind)
	}

	v := init()
	u.slots = append(u.slots, v)
	u.slotKinds = append(u.slotKinds, kind)
	return v
}
