package scene

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/achilleasa/bvhtrace/types"
)

// Generate n spheres with the given radius whose centers lie on the positive
// x axis at x = 0, spacing, 2*spacing, ...
func SphereRow(n int, spacing, radius float64) ([]Primitive, error) {
	prims := make([]Primitive, 0, n)
	for i := 0; i < n; i++ {
		center := types.XYZ(float64(i)*spacing, 0, 0)
		s, err := NewSphere(fmt.Sprintf("sphere-%d", i), center, radius, types.Ident4())
		if err != nil {
			return nil, err
		}
		prims = append(prims, s)
	}
	return prims, nil
}

// Generate n randomly placed, rotated and scaled primitives of mixed types
// inside the cube [-extent, extent]^3.
func RandomScene(rng *rand.Rand, n int, extent float64) ([]Primitive, error) {
	prims := make([]Primitive, 0, n)
	for i := 0; i < n; i++ {
		transform := types.Translate(randomVec(rng, extent)).
			Mul(types.Rotate(randomVec(rng, 1).Add(types.XYZ(0, 0, 1e-3)), rng.Float64()*2*math.Pi)).
			Mul(types.Scale(types.XYZ(0.5+rng.Float64(), 0.5+rng.Float64(), 0.5+rng.Float64())))

		size := 0.1 + rng.Float64()*0.4
		var (
			prim Primitive
			err  error
		)
		switch PrimitiveType(rng.Intn(4)) {
		case SpherePrimitive:
			prim, err = NewSphere(fmt.Sprintf("sphere-%d", i), types.Vec3{}, size, transform)
		case BoxPrimitive:
			half := types.XYZ(size, size*0.5, size*0.75)
			prim, err = NewBox(fmt.Sprintf("box-%d", i), half.Mul(-1), half, transform)
		case CylinderPrimitive:
			prim, err = NewCylinder(fmt.Sprintf("cylinder-%d", i), types.Vec3{}, size*0.5, size*2, transform)
		default:
			prim, err = NewTexturedTriangle(
				fmt.Sprintf("triangle-%d", i),
				[3]types.Vec3{types.XYZ(-size, 0, 0), types.XYZ(size, 0, 0), types.XYZ(0, size, 0)},
				[3]types.Vec2{types.XY(0, 0), types.XY(1, 0), types.XY(0, 1)},
				transform,
			)
		}
		if err != nil {
			return nil, err
		}
		prims = append(prims, prim)
	}
	return prims, nil
}

// Generate n rays whose origins lie in [-2*extent, 2*extent]^3 and which aim
// at random points inside [-extent, extent]^3.
func RandomRays(rng *rand.Rand, n int, extent float64) []Ray {
	rays := make([]Ray, n)
	for i := range rays {
		origin := randomVec(rng, 2*extent)
		dir := randomVec(rng, extent).Sub(origin)
		if dir.Len() < 1e-9 {
			dir = types.XYZ(0, 0, 1)
		}
		rays[i] = NewRay(origin, dir.Normalize())
	}
	return rays
}

// Get a vector with components uniformly distributed in [-extent, extent].
func randomVec(rng *rand.Rand, extent float64) types.Vec3 {
	return types.XYZ(
		(rng.Float64()*2-1)*extent,
		(rng.Float64()*2-1)*extent,
		(rng.Float64()*2-1)*extent,
	)
}
