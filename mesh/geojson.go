package mesh

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature kinds written to the "kind" property
const (
	KindBeacon  = "beacon"
	KindScanner = "scanner"
	KindLink    = "link"
)

// projectXY drops the Z axis for a top-down view
func projectXY(p Point) orb.Point {
	return orb.Point{float64(p.X), float64(p.Y)}
}

// ToFeatureCollection projects the global map onto the XY plane. Beacons and
// scanners become Point features carrying their Z coordinate as a property,
// and each match becomes a LineString from the parent scanner to the child.
func ToFeatureCollection(gm *GlobalMap) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, p := range gm.Beacons() {
		f := geojson.NewFeature(projectXY(p))
		f.Properties["kind"] = KindBeacon
		f.Properties["z"] = p.Z
		fc.Append(f)
	}

	positions := gm.Positions()
	for _, sp := range gm.ScannerPositions() {
		f := geojson.NewFeature(projectXY(sp.Position))
		f.ID = sp.ID
		f.Properties["kind"] = KindScanner
		f.Properties["name"] = sp.Name
		f.Properties["z"] = sp.Position.Z
		f.Properties["rotation"] = sp.Rotation
		f.Properties["parent"] = sp.Parent
		fc.Append(f)

		if sp.Parent >= 0 {
			link := orb.LineString{projectXY(positions[sp.Parent]), projectXY(sp.Position)}
			lf := geojson.NewFeature(link)
			lf.Properties["kind"] = KindLink
			lf.Properties["from"] = gm.Scanners[sp.Parent].Label()
			lf.Properties["to"] = sp.Name
			fc.Append(lf)
		}
	}

	if b, ok := ProjectedBounds(gm); ok {
		fc.BBox = geojson.NewBBox(b)
	}
	return fc
}

// ProjectedBounds returns the XY bounding box of every beacon and scanner.
func ProjectedBounds(gm *GlobalMap) (orb.Bound, bool) {
	var mp orb.MultiPoint
	for _, p := range gm.Beacons() {
		mp = append(mp, projectXY(p))
	}
	for _, p := range gm.Positions() {
		mp = append(mp, projectXY(p))
	}
	if len(mp) == 0 {
		return orb.Bound{}, false
	}
	return mp.Bound(), true
}

// SaveGeoJSON writes the projected map to path
func SaveGeoJSON(path string, gm *GlobalMap) error {
	data, err := ToFeatureCollection(gm).MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling GeoJSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing GeoJSON file: %w", err)
	}
	return nil
}
