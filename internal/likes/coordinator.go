// Package likes owns per-device like membership with optimistic updates:
// membership flips locally (and in the durable mirror) before the remote
// like-count increment, and is rolled back for that photo only on failure.
package likes

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"picwedding/internal/middleware"
)

// AnimationDuration is how long a freshly liked photo reports the transient
// animating flag. Presentation hint only.
const AnimationDuration = 600 * time.Millisecond

// Remote confirms a like toggle by atomically adjusting the photo's count.
type Remote interface {
	IncrementLikes(ctx context.Context, id string, delta int) error
}

// Coordinator is the single source of truth for "has this device liked photo X".
type Coordinator struct {
	remote    Remote
	mirror    Mirror
	animDelay time.Duration

	mu      sync.Mutex
	devices map[string]*deviceState
}

// deviceState holds one device's membership set. Its mutex serializes
// membership flips and full-set mirror writes so concurrent toggles on
// different photos cannot lose each other's updates.
type deviceState struct {
	mu        sync.Mutex
	liked     map[string]struct{}
	animating map[string]*time.Timer
}

// NewCoordinator creates a like coordinator over the given remote and mirror.
func NewCoordinator(remote Remote, mirror Mirror) *Coordinator {
	return &Coordinator{
		remote:    remote,
		mirror:    mirror,
		animDelay: AnimationDuration,
		devices:   make(map[string]*deviceState),
	}
}

// Toggle flips the device's membership for the photo, persists the mirror, and
// issues the matching remote increment. On remote failure exactly this photo's
// flip is inverted; toggles for other photos are untouched. Returns the settled
// membership state.
func (c *Coordinator) Toggle(ctx context.Context, deviceID, photoID string) (bool, error) {
	d := c.device(ctx, deviceID)

	d.mu.Lock()
	_, wasLiked := d.liked[photoID]
	delta := 1
	direction := "like"
	if wasLiked {
		delete(d.liked, photoID)
		delta = -1
		direction = "unlike"
	} else {
		d.liked[photoID] = struct{}{}
		c.startAnimation(d, photoID)
	}
	c.persist(ctx, deviceID, d)
	d.mu.Unlock()

	if err := c.remote.IncrementLikes(ctx, photoID, delta); err != nil {
		// Invert the recorded intent, scoped to this photo only.
		d.mu.Lock()
		if wasLiked {
			d.liked[photoID] = struct{}{}
		} else {
			delete(d.liked, photoID)
		}
		c.persist(ctx, deviceID, d)
		d.mu.Unlock()

		middleware.LikeToggles.WithLabelValues(direction, "reverted").Inc()
		return wasLiked, err
	}

	middleware.LikeToggles.WithLabelValues(direction, "ok").Inc()
	return !wasLiked, nil
}

// IsLiked reports the device's current membership for the photo.
func (c *Coordinator) IsLiked(ctx context.Context, deviceID, photoID string) bool {
	d := c.device(ctx, deviceID)
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.liked[photoID]
	return ok
}

// Liked returns the device's liked photo ids, sorted for determinism.
func (c *Coordinator) Liked(ctx context.Context, deviceID string) []string {
	d := c.device(ctx, deviceID)
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]string, 0, len(d.liked))
	for id := range d.liked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Animating reports whether the photo's like animation window is still open.
func (c *Coordinator) Animating(ctx context.Context, deviceID, photoID string) bool {
	d := c.device(ctx, deviceID)
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.animating[photoID]
	return ok
}

// startAnimation schedules the transient animating flag for the photo.
// Timers are keyed by photo id; a re-like while one is pending restarts it.
// Caller holds d.mu.
func (c *Coordinator) startAnimation(d *deviceState, photoID string) {
	if t, ok := d.animating[photoID]; ok {
		t.Stop()
	}
	d.animating[photoID] = time.AfterFunc(c.animDelay, func() {
		d.mu.Lock()
		delete(d.animating, photoID)
		d.mu.Unlock()
	})
}

// device returns the device's state, loading the durable mirror on first use.
func (c *Coordinator) device(ctx context.Context, deviceID string) *deviceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.devices[deviceID]; ok {
		return d
	}

	d := &deviceState{
		liked:     make(map[string]struct{}),
		animating: make(map[string]*time.Timer),
	}
	raw, err := c.mirror.Get(ctx, mirrorKey(deviceID))
	if err != nil {
		middleware.Logger.WarnContext(ctx, "like mirror read failed",
			slog.String("device", deviceID), slog.String("error", err.Error()))
	} else if raw != "" {
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			middleware.Logger.WarnContext(ctx, "like mirror corrupted, starting empty",
				slog.String("device", deviceID), slog.String("error", err.Error()))
		} else {
			for _, id := range ids {
				d.liked[id] = struct{}{}
			}
		}
	}
	c.devices[deviceID] = d
	return d
}

// persist serializes the full membership set into the mirror. Caller holds d.mu.
func (c *Coordinator) persist(ctx context.Context, deviceID string, d *deviceState) {
	ids := make([]string, 0, len(d.liked))
	for id := range d.liked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	raw, err := json.Marshal(ids)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "like mirror marshal failed",
			slog.String("device", deviceID), slog.String("error", err.Error()))
		return
	}
	if err := c.mirror.Set(ctx, mirrorKey(deviceID), string(raw)); err != nil {
		middleware.Logger.WarnContext(ctx, "like mirror write failed",
			slog.String("device", deviceID), slog.String("error", err.Error()))
	}
}

func mirrorKey(deviceID string) string {
	return "picwedding_likes:" + deviceID
}
