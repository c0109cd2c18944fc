// Package preview owns the single active audio preview across the UI.
package preview

import "sync"

// Player starts and stops actual audio output. Implementations must start
// playback from the beginning of the clip.
type Player interface {
	Start(url string, volume int) error
	Stop()
	SetVolume(volume int)
}

// Controller is the preview state machine: Idle -> Playing(trackID) -> Idle.
// At most one preview is active at any time; starting a new one stops the
// previous one first.
type Controller struct {
	mu      sync.Mutex
	player  Player
	current string
	volume  int
}

// NewController wires a Controller to the given player. The initial volume
// matches the composer's default track volume.
func NewController(player Player) *Controller {
	return &Controller{player: player, volume: 50}
}

// Toggle starts or stops the preview for trackID. Toggling the currently
// playing track stops it; any other track stops the current preview before
// starting the new one. An empty url is a no-op.
func (c *Controller) Toggle(trackID, url string) error {
	if url == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == trackID {
		c.player.Stop()
		c.current = ""
		return nil
	}

	if c.current != "" {
		c.player.Stop()
		c.current = ""
	}

	if err := c.player.Start(url, c.volume); err != nil {
		return err
	}
	c.current = trackID
	return nil
}

// Stop halts any active preview.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != "" {
		c.player.Stop()
		c.current = ""
	}
}

// Ended transitions back to Idle after natural playback completion. Player
// implementations call it from their completion callback.
func (c *Controller) Ended(trackID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == trackID {
		c.current = ""
	}
}

// SetVolume clamps level to [0,100] and applies it to the active preview
// and any preview started afterwards.
func (c *Controller) SetVolume(level int) {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = level
	if c.current != "" {
		c.player.SetVolume(level)
	}
}

// Playing returns the id of the active preview track, or "" when idle.
func (c *Controller) Playing() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Volume returns the configured volume level.
func (c *Controller) Volume() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}
