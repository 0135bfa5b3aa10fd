// Package geometry renders hotel locations as GeoJSON.
package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"hotelperf/server/internal/models"
)

// HotelFeatures returns a point feature for every hotel with both coordinates.
// The collection carries the bounding box of all points when it is not empty.
func HotelFeatures(hotels []models.Hotel) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	var bound orb.Bound
	for _, h := range hotels {
		if h.Latitude == nil || h.Longitude == nil {
			continue
		}

		// GeoJSON points are longitude first
		p := orb.Point{*h.Longitude, *h.Latitude}
		f := geojson.NewFeature(p)
		f.ID = h.ID
		f.Properties["id"] = h.ID
		f.Properties["hotel_name"] = h.HotelName
		f.Properties["city"] = h.City
		f.Properties["country"] = h.Country
		fc.Append(f)

		if len(fc.Features) == 1 {
			bound = p.Bound()
		} else {
			bound = bound.Extend(p)
		}
	}

	if len(fc.Features) > 0 {
		fc.BBox = geojson.NewBBox(bound)
	}
	return fc
}
