package scene

import (
	"errors"
	"fmt"

	"github.com/achilleasa/bvhtrace/types"
)

// Clip planes used when building the camera projection. Only the ray
// directions matter so their exact values are irrelevant.
const (
	cameraNear = 1.0
	cameraFar  = 1000.0
)

var ErrDegenerateCamera = errors.New("scene: camera basis is degenerate")

// Stores the ray directions at the four corners of the camera frustrum in
// TL, TR, BL, BR order. Per pixel rays are generated by interpolating the
// corner rays.
type Frustrum [4]types.Vec3

func (fr Frustrum) String() string {
	return fmt.Sprintf(
		"Frustrum Rays:\nTL : (%3.3f, %3.3f, %3.3f)\nTR : (%3.3f, %3.3f, %3.3f)\nBL : (%3.3f, %3.3f, %3.3f)\nBR : (%3.3f, %3.3f, %3.3f)",
		fr[0][0], fr[0][1], fr[0][2],
		fr[1][0], fr[1][1], fr[1][2],
		fr[2][0], fr[2][1], fr[2][2],
		fr[3][0], fr[3][1], fr[3][2],
	)
}

// A pinhole camera that generates primary rays.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Vertical field of view in degrees.
	FOV float64

	// Frame width divided by frame height.
	Aspect float64

	Frustrum Frustrum
}

// Create a camera at position looking at lookAt.
func NewCamera(position, lookAt, up types.Vec3, fov, aspect float64) (*Camera, error) {
	c := &Camera{
		Position: position,
		LookAt:   lookAt,
		Up:       up,
		FOV:      fov,
		Aspect:   aspect,
	}
	if err := c.Update(); err != nil {
		return nil, err
	}
	return c, nil
}

// Recalculate the frustrum corner rays. Must be called after modifying any
// of the camera fields.
func (c *Camera) Update() error {
	dir := c.LookAt.Sub(c.Position)
	if dir.Len() < 1e-9 || dir.Normalize().Cross(c.Up.Normalize()).Len() < 1e-9 {
		return ErrDegenerateCamera
	}
	if c.FOV <= 0 || c.FOV >= 180 || c.Aspect <= 0 {
		return ErrDegenerateCamera
	}

	viewProj := types.Perspective(c.FOV, c.Aspect, cameraNear, cameraFar).Mul(types.LookAt(c.Position, c.LookAt, c.Up))
	invViewProj, ok := viewProj.Inverse()
	if !ok {
		return ErrDegenerateCamera
	}

	// Unproject the clip space corners of the near plane and subtract the
	// eye position to get the corner ray directions.
	corners := [4]types.Vec3{
		types.XYZ(-1, 1, -1),
		types.XYZ(1, 1, -1),
		types.XYZ(-1, -1, -1),
		types.XYZ(1, -1, -1),
	}
	for i, corner := range corners {
		c.Frustrum[i] = invViewProj.MulPos(corner).Sub(c.Position)
	}
	return nil
}

// Generate a ray through the image plane point (u, v) where (0, 0) is the
// top-left and (1, 1) the bottom-right corner of the frame.
func (c *Camera) Ray(u, v float64) Ray {
	top := c.Frustrum[0].Mul(1 - u).Add(c.Frustrum[1].Mul(u))
	bottom := c.Frustrum[2].Mul(1 - u).Add(c.Frustrum[3].Mul(u))
	dir := top.Mul(1 - v).Add(bottom.Mul(v))
	return NewRay(c.Position, dir.Normalize())
}

// Generate one ray through the center of each pixel of a frameW x frameH
// frame in row-major order.
func (c *Camera) Rays(frameW, frameH int) []Ray {
	rays := make([]Ray, 0, frameW*frameH)
	for y := 0; y < frameH; y++ {
		v := (float64(y) + 0.5) / float64(frameH)
		for x := 0; x < frameW; x++ {
			rays = append(rays, c.Ray((float64(x)+0.5)/float64(frameW), v))
		}
	}
	return rays
}
