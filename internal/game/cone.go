package game

import "math"

// Cone is a view or reach area anchored at an observer.
// All checks are O(1) - no polygon iteration.
type Cone struct {
	Range float64 // Distance from the observer
	Width float64 // Full opening angle in radians; zero means a full circle
}

// ViewCone is how far and how wide a player watches in its facing direction.
func ViewCone(sight float64) Cone {
	return Cone{Range: sight, Width: 2 * math.Pi / 3} // 120 degrees
}

// Contains tests whether the target point lies inside the cone placed at
// the observer and turned to direction (radians).
func (c Cone) Contains(observerX, observerY, targetX, targetY, direction float64) bool {
	dx := targetX - observerX
	dy := targetY - observerY
	distance := math.Hypot(dx, dy)

	if distance > c.Range {
		return false
	}
	// Standing on top of the target always counts
	if distance < 1.0 || c.Width <= 0 {
		return true
	}

	angleDiff := normalizeAngle(math.Atan2(dy, dx) - direction)
	halfWidth := c.Width / 2
	return angleDiff >= -halfWidth && angleDiff <= halfWidth
}

// Angle returns the facing as radians in screen space (y grows downward).
func (d Direction) Angle() float64 {
	switch d {
	case DirUp:
		return -math.Pi / 2
	case DirLeft:
		return math.Pi
	case DirRight:
		return 0
	default:
		return math.Pi / 2
	}
}

// normalizeAngle normalizes an angle to the range [-π, π].
func normalizeAngle(angle float64) float64 {
	// Normalize to [0, 2π) first, then shift to [-π, π]
	const twoPi = 2 * math.Pi
	angle = math.Mod(angle, twoPi)
	if angle < 0 {
		angle += twoPi
	}
	if angle > math.Pi {
		angle -= twoPi
	}
	return angle
}
