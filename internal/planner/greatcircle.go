package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/twpayne/go-geom"
	geojson "github.com/twpayne/go-geom/encoding/geojson"
)

const greatCircleVersion = "0.1.0"

// GreatCircle is the built-in fallback engine. Compute yields the direct
// two-point segment between the waypoints; Smooth densifies it along the
// great circle. It stands in for a full path-optimization engine behind the
// same interface and produces the same GeoJSON shapes.
type GreatCircle struct {
	// SmoothingPoints is the number of intermediate points inserted
	// between the endpoints during smoothing.
	SmoothingPoints int
}

func NewGreatCircle() *GreatCircle {
	return &GreatCircle{SmoothingPoints: 50}
}

func (g *GreatCircle) Version() string {
	return greatCircleVersion
}

func (g *GreatCircle) Compute(mesh json.RawMessage, start, end Waypoint) (json.RawMessage, error) {
	if len(mesh) == 0 {
		return nil, errors.New("empty vessel mesh document")
	}
	if !json.Valid(mesh) {
		return nil, errors.New("vessel mesh document is not valid JSON")
	}

	// GeoJSON positions are lon, lat.
	line := geom.NewLineString(geom.XY).MustSetCoords([]geom.Coord{
		{start.Lon, start.Lat},
		{end.Lon, end.Lat},
	})

	return marshalRoute(line, start, end)
}

func (g *GreatCircle) Smooth(mesh, unsmoothed json.RawMessage) (json.RawMessage, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(unsmoothed, &fc); err != nil {
		return nil, fmt.Errorf("parsing unsmoothed route: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, errors.New("unsmoothed route has no features")
	}

	line, ok := fc.Features[0].Geometry.(*geom.LineString)
	if !ok || line.NumCoords() < 2 {
		return nil, errors.New("unsmoothed route is not a line")
	}

	first := line.Coord(0)
	last := line.Coord(line.NumCoords() - 1)
	start := Waypoint{Lon: first[0], Lat: first[1]}
	end := Waypoint{Lon: last[0], Lat: last[1]}

	coords := interpolateGreatCircle(start, end, g.SmoothingPoints)
	smoothed := geom.NewLineString(geom.XY).MustSetCoords(coords)

	if props := fc.Features[0].Properties; props != nil {
		if from, ok := props["from"].(string); ok {
			start.Name = from
		}
		if to, ok := props["to"].(string); ok {
			end.Name = to
		}
	}

	return marshalRoute(smoothed, start, end)
}

func marshalRoute(line *geom.LineString, start, end Waypoint) (json.RawMessage, error) {
	from := start.Name
	if from == "" {
		from = "Start"
	}
	to := end.Name
	if to == "" {
		to = "End"
	}

	fc := &geojson.FeatureCollection{
		Features: []*geojson.Feature{{
			Geometry: line,
			Properties: map[string]interface{}{
				"from": from,
				"to":   to,
			},
		}},
	}
	return json.Marshal(fc)
}

// interpolateGreatCircle returns n+2 positions from start to end along the
// great circle, spherical linear interpolation between the endpoint vectors.
func interpolateGreatCircle(start, end Waypoint, n int) []geom.Coord {
	const deg = math.Pi / 180

	ax, ay, az := toUnitVector(start.Lat*deg, start.Lon*deg)
	bx, by, bz := toUnitVector(end.Lat*deg, end.Lon*deg)

	dot := ax*bx + ay*by + az*bz
	dot = math.Max(-1, math.Min(1, dot))
	omega := math.Acos(dot)

	coords := make([]geom.Coord, 0, n+2)
	if omega < 1e-9 {
		return []geom.Coord{{start.Lon, start.Lat}, {end.Lon, end.Lat}}
	}

	sinOmega := math.Sin(omega)
	for i := 0; i <= n+1; i++ {
		t := float64(i) / float64(n+1)
		fa := math.Sin((1-t)*omega) / sinOmega
		fb := math.Sin(t*omega) / sinOmega
		x := fa*ax + fb*bx
		y := fa*ay + fb*by
		z := fa*az + fb*bz

		lat := math.Atan2(z, math.Sqrt(x*x+y*y)) / deg
		lon := math.Atan2(y, x) / deg
		coords = append(coords, geom.Coord{lon, lat})
	}
	return coords
}

func toUnitVector(latRad, lonRad float64) (x, y, z float64) {
	return math.Cos(latRad) * math.Cos(lonRad),
		math.Cos(latRad) * math.Sin(lonRad),
		math.Sin(latRad)
}
