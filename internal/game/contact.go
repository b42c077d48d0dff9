package game

// ContactHandler is the narrow callback surface a contact detector drives.
// *Controller implements it.
type ContactHandler interface {
	OnPlatformContact(id uint64) bool
	OnBorderContact()
}

// ContactDetector turns per-frame geometry into begin-contact callbacks.
// A touch is reported once when it begins, not on every frame it persists.
// A platform that first appears underneath the ball counts as already touched,
// so it only scores once the ball leaves it and comes back.
type ContactDetector struct {
	seenPlatform     uint64 // id of the live platform at the previous Detect
	touchingPlatform uint64 // id of the platform the ball currently overlaps, 0 if none
	touchingBorder   bool
}

// Detect compares the ball against the live platform and the arena border and
// reports newly begun contacts to h.
func (d *ContactDetector) Detect(ball Ball, platform *Platform, arena Arena, h ContactHandler) {
	if platform != nil {
		fresh := platform.ID != d.seenPlatform
		d.seenPlatform = platform.ID

		switch {
		case !platform.Overlaps(ball.Position, ball.Radius):
			d.touchingPlatform = 0
		case fresh:
			d.touchingPlatform = platform.ID
		case d.touchingPlatform != platform.ID:
			d.touchingPlatform = platform.ID
			h.OnPlatformContact(platform.ID)
		}
	} else {
		d.seenPlatform = 0
		d.touchingPlatform = 0
	}

	border := arena.TouchesBorder(ball.Position, ball.Radius)
	if border && !d.touchingBorder {
		h.OnBorderContact()
	}
	d.touchingBorder = border
}

// Clear forgets ongoing touches, used after the ball is teleported by a reset.
func (d *ContactDetector) Clear() {
	d.seenPlatform = 0
	d.touchingPlatform = 0
	d.touchingBorder = false
}
