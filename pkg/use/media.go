package use

import (
	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/reactive"
	"github.com/vango-dev/use/pkg/runtime"
	"github.com/vango-dev/use/pkg/subscription"
)

// Media is the result of MediaQuery.
type Media struct {
	matches   *reactive.Cell[bool]
	supported bool
}

// Matches reports whether the query currently matches. It is false when
// matchMedia is unavailable.
func (m *Media) Matches() bool { return m.matches.Get() }

// Supported reports whether the platform evaluates media queries.
func (m *Media) Supported() bool { return m.supported }

type mediaState struct {
	matches  *reactive.Cell[bool]
	listener *platform.Listener
	slot     *subscription.Slot
	list     platform.MediaQueryList
}

// MediaQuery tracks whether query matches.
func MediaQuery(u *runtime.Unit, query string) *Media {
	p := u.Platform()
	st := runtime.UseSlot(u, "use.MediaQuery", func() *mediaState {
		s := &mediaState{slot: u.Registry().NewSlot()}
		s.list = p.MatchMedia(query)
		s.matches = reactive.NewCell(s.list != nil && s.list.Matches())
		s.listener = platform.NewListener(func(e platform.Event) {
			if ev, ok := e.Data.(platform.MediaQueryEvent); ok {
				s.matches.Set(ev.Matches)
				return
			}
			if s.list != nil {
				s.matches.Set(s.list.Matches())
			}
		})
		u.OnCleanup(s.slot.Release)
		return s
	})
	u.Watch(st.matches)

	u.Effect([]any{query}, func() reactive.Cleanup {
		if st.list == nil || st.list.Media() != query {
			st.list = p.MatchMedia(query)
		}
		st.matches.Set(st.list != nil && st.list.Matches())
		st.slot.Bind(subscription.Static(st.list), platform.EventChange, st.listener, platform.Options{})
		return nil
	})

	return &Media{matches: st.matches, supported: p.Supports(platform.CapMatchMedia)}
}

// PreferredDark reports whether the user prefers a dark color scheme.
func PreferredDark(u *runtime.Unit) bool {
	return MediaQuery(u, "(prefers-color-scheme: dark)").Matches()
}

// ReducedMotion reports whether the user asked for reduced motion.
func ReducedMotion(u *runtime.Unit) bool {
	return MediaQuery(u, "(prefers-reduced-motion: reduce)").Matches()
}
