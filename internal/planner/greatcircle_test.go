package planner

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	geojson "github.com/twpayne/go-geom/encoding/geojson"
)

func decodeLine(t *testing.T, raw json.RawMessage) (*geom.LineString, map[string]interface{}) {
	t.Helper()

	var fc geojson.FeatureCollection
	require.NoError(t, json.Unmarshal(raw, &fc))
	require.Len(t, fc.Features, 1)
	line, ok := fc.Features[0].Geometry.(*geom.LineString)
	require.True(t, ok, "route geometry must be a LineString")
	return line, fc.Features[0].Properties
}

func TestGreatCircleCompute(t *testing.T) {
	e := NewGreatCircle()

	out, err := e.Compute(json.RawMessage(`{"cells":[]}`),
		Waypoint{Name: "halley", Lat: -75.059, Lon: -25.840},
		Waypoint{Name: "rothera", Lat: -67.764, Lon: -68.02})
	require.NoError(t, err)

	line, props := decodeLine(t, out)
	require.Equal(t, 2, line.NumCoords())
	assert.InDelta(t, -25.840, line.Coord(0)[0], 1e-9)
	assert.InDelta(t, -75.059, line.Coord(0)[1], 1e-9)
	assert.InDelta(t, -68.02, line.Coord(1)[0], 1e-9)
	assert.InDelta(t, -67.764, line.Coord(1)[1], 1e-9)
	assert.Equal(t, "halley", props["from"])
	assert.Equal(t, "rothera", props["to"])
}

func TestGreatCircleComputeRejectsBadMesh(t *testing.T) {
	e := NewGreatCircle()

	_, err := e.Compute(nil, Waypoint{}, Waypoint{})
	assert.Error(t, err)

	_, err = e.Compute(json.RawMessage(`{not json`), Waypoint{}, Waypoint{})
	assert.Error(t, err)
}

func TestGreatCircleSmoothDensifies(t *testing.T) {
	e := NewGreatCircle()

	mesh := json.RawMessage(`{"cells":[]}`)
	start := Waypoint{Name: "halley", Lat: -75.059, Lon: -25.840}
	end := Waypoint{Name: "rothera", Lat: -67.764, Lon: -68.02}

	unsmoothed, err := e.Compute(mesh, start, end)
	require.NoError(t, err)

	smoothed, err := e.Smooth(mesh, unsmoothed)
	require.NoError(t, err)

	line, props := decodeLine(t, smoothed)
	assert.Equal(t, e.SmoothingPoints+2, line.NumCoords())

	// endpoints preserved
	assert.InDelta(t, start.Lon, line.Coord(0)[0], 1e-6)
	assert.InDelta(t, start.Lat, line.Coord(0)[1], 1e-6)
	last := line.Coord(line.NumCoords() - 1)
	assert.InDelta(t, end.Lon, last[0], 1e-6)
	assert.InDelta(t, end.Lat, last[1], 1e-6)

	assert.Equal(t, "halley", props["from"])
	assert.Equal(t, "rothera", props["to"])
}

func TestGreatCircleSmoothRejectsGarbage(t *testing.T) {
	e := NewGreatCircle()

	_, err := e.Smooth(nil, json.RawMessage(`{"type":"FeatureCollection","features":[]}`))
	assert.Error(t, err)

	_, err = e.Smooth(nil, json.RawMessage(`not json`))
	assert.Error(t, err)
}

func TestGreatCircleVersion(t *testing.T) {
	assert.NotEmpty(t, NewGreatCircle().Version())
}
