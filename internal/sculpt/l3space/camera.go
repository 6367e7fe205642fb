package l3space

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// CameraTransform is an orbit camera around the grid centre. Angles are
// in degrees: yaw about +Y, pitch positive looking down from above.
type CameraTransform struct {
	Yaw      float64
	Pitch    float64
	Distance float64
}

// Rotated returns the transform turned by the given deltas. Yaw wraps
// into [-180, 180]; pitch is clamped to ±pitchLimit.
func (c CameraTransform) Rotated(dYaw, dPitch, pitchLimit float64) CameraTransform {
	c.Yaw = math.Remainder(c.Yaw+dYaw, 360)
	c.Pitch = math.Max(-pitchLimit, math.Min(pitchLimit, c.Pitch+dPitch))
	return c
}

// Eye returns the camera position orbiting target.
func (c CameraTransform) Eye(target r3.Vec) r3.Vec {
	sy, cy := math.Sincos(deg2rad(c.Yaw))
	sp, cp := math.Sincos(deg2rad(c.Pitch))
	return r3.Add(target, r3.Scale(c.Distance, r3.Vec{X: cp * sy, Y: sp, Z: cp * cy}))
}

// ToWorld maps a camera-relative offset (x right, y up, z toward the
// viewer) into grid axes by undoing the view rotation. At zero yaw and
// pitch it is the identity.
func (c CameraTransform) ToWorld(local r3.Vec) r3.Vec {
	return rotY(rotX(local, -deg2rad(c.Pitch)), deg2rad(c.Yaw))
}

// ToView is the inverse of ToWorld.
func (c CameraTransform) ToView(world r3.Vec) r3.Vec {
	return rotX(rotY(world, -deg2rad(c.Yaw)), deg2rad(c.Pitch))
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

func rotX(v r3.Vec, a float64) r3.Vec {
	s, c := math.Sincos(a)
	return r3.Vec{X: v.X, Y: v.Y*c - v.Z*s, Z: v.Y*s + v.Z*c}
}

func rotY(v r3.Vec, a float64) r3.Vec {
	s, c := math.Sincos(a)
	return r3.Vec{X: v.X*c + v.Z*s, Y: v.Y, Z: -v.X*s + v.Z*c}
}
