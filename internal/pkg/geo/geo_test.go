package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		assert.Zero(t, HaversineDistance(-6.175392, 106.827153, -6.175392, 106.827153))
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		// One degree of latitude is about 111.19 km on a 6371 km sphere.
		d := HaversineDistance(0, 0, 1, 0)
		assert.InDelta(t, 111195, d, 10)
	})

	t.Run("small offset", func(t *testing.T) {
		// 0.001 degrees of latitude is about 111 meters.
		d := HaversineDistance(-6.175392, 106.827153, -6.174392, 106.827153)
		assert.InDelta(t, 111.19, d, 0.5)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := HaversineDistance(-6.2, 106.8, -6.3, 106.9)
		b := HaversineDistance(-6.3, 106.9, -6.2, 106.8)
		assert.InDelta(t, a, b, 1e-9)
	})
}

func TestWithinRadius(t *testing.T) {
	center := Point{Latitude: -6.175392, Longitude: 106.827153}

	t.Run("inside", func(t *testing.T) {
		p := Point{Latitude: -6.175392 + 0.0005, Longitude: 106.827153}
		assert.True(t, WithinRadius(p, center, 100))
	})

	t.Run("outside", func(t *testing.T) {
		p := Point{Latitude: -6.175392 + 0.002, Longitude: 106.827153}
		assert.False(t, WithinRadius(p, center, 100))
	})

	t.Run("center is inside", func(t *testing.T) {
		assert.True(t, WithinRadius(center, center, 1))
	})
}
