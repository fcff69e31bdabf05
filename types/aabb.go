package types

import "math"

// AABB is an axis-aligned bounding box. An empty AABB has Min > Max on every
// axis, the same sentinel convention the serialized BVH uses for unused
// 4-wide child slots.
type AABB struct {
	Min, Max Vec3
}

// EmptyAABB returns a box with no volume that Union will always replace.
func EmptyAABB() AABB {
	return AABB{
		Min: Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// IsEmpty reports whether the box has min > max on any axis.
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Union returns the smallest box containing both b and o.
func (b AABB) Union(o AABB) AABB {
	return AABB{Min: MinVec3(b.Min, o.Min), Max: MaxVec3(b.Max, o.Max)}
}

// Extend grows the box (if needed) to contain p.
func (b AABB) Extend(p Vec3) AABB {
	return AABB{Min: MinVec3(b.Min, p), Max: MaxVec3(b.Max, p)}
}

// Extent returns the per-axis side lengths.
func (b AABB) Extent() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the box midpoint.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the largest extent.
func (b AABB) LongestAxis() int {
	e := b.Extent()
	axis := 0
	if e[1] > e[axis] {
		axis = 1
	}
	if e[2] > e[axis] {
		axis = 2
	}
	return axis
}

// SurfaceArea returns the box's total surface area, used by the SAH cost
// function: 2*(xy+yz+zx) for a closed box, but the builder only ever compares
// relative scores so the leading factor of 2 is dropped.
func (b AABB) SurfaceArea() float32 {
	e := b.Extent()
	if e[0] < 0 || e[1] < 0 || e[2] < 0 {
		return 0
	}
	return e[0]*e[1] + e[1]*e[2] + e[2]*e[0]
}

// Contains reports whether p lies within the box (inclusive).
func (b AABB) Contains(p Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Overlaps reports whether the two boxes intersect.
func (b AABB) Overlaps(o AABB) bool {
	return b.Min[0] <= o.Max[0] && b.Max[0] >= o.Min[0] &&
		b.Min[1] <= o.Max[1] && b.Max[1] >= o.Min[1] &&
		b.Min[2] <= o.Max[2] && b.Max[2] >= o.Min[2]
}

// Enlarged returns the box grown symmetrically by by on every axis. Used by
// the shape-cast visitor to inflate child bounds by the cast shape's extent
// before performing a ray-vs-box test.
func (b AABB) Enlarged(by Vec3) AABB {
	return AABB{Min: b.Min.Sub(by), Max: b.Max.Add(by)}
}

// Scaled returns the box with both corners multiplied component-wise by s.
// A negative scale component can flip which corner is min/max, so the result
// re-normalizes per axis.
func (b AABB) Scaled(s Vec3) AABB {
	a := b.Min.Scale(s)
	c := b.Max.Scale(s)
	return AABB{Min: MinVec3(a, c), Max: MaxVec3(a, c)}
}

// Translated returns the box shifted by t.
func (b AABB) Translated(t Vec3) AABB {
	return AABB{Min: b.Min.Add(t), Max: b.Max.Add(t)}
}

// RayIntersect returns whether the ray hits the box, and if so the entry and
// exit fractions along dir (invDir must be the component-wise reciprocal of
// dir; the caller is expected to precompute it once per query).
func (b AABB) RayIntersect(origin, invDir Vec3, maxFraction float32) (tMin, tMax float32, hit bool) {
	tMin, tMax = 0, maxFraction
	for axis := 0; axis < 3; axis++ {
		t0 := (b.Min[axis] - origin[axis]) * invDir[axis]
		t1 := (b.Max[axis] - origin[axis]) * invDir[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMin > tMax {
			return 0, 0, false
		}
	}
	return tMin, tMax, true
}
