package see

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/movebase.go/pkg/sim"
	"github.com/robotalks/movebase.go/pkg/tf"
)

type disc struct {
	name string
	r    float64
	pose tf.Transform
}

func (d *disc) Name() string         { return d.name }
func (d *disc) Radius() float64      { return d.r }
func (d *disc) Pose2D() tf.Transform { return d.pose }

func decodeReport(t *testing.T, out *bytes.Buffer) []Message {
	var msgs []Message
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &msgs))
	out.Reset()
	return msgs
}

func TestReportChanges(t *testing.T) {
	var out bytes.Buffer
	a := NewAdapter(&Config{W: 2, H: 2, Scale: 100})
	a.Out = &out

	bot := &disc{name: "sim-base/1", r: 0.2, pose: tf.Transform{X: 1, Y: 0.5}}
	a.ObjectsChanged(nil, bot)
	require.NoError(t, a.ReportChanges(nil))
	msgs := decodeReport(t, &out)
	require.Len(t, msgs, 6)
	assert.Equal(t, ActionReset, msgs[0].Action)
	assert.Equal(t, &Point{X: -100, Y: -100}, msgs[1].Object.Origin)
	assert.Equal(t, "lt", msgs[1].Object.Extra["loc"])
	shape := msgs[5].Object
	assert.Equal(t, "sim-base.1", shape.ID)
	assert.Equal(t, "circle", shape.Type)
	assert.Equal(t, &Point{X: 100, Y: -50}, shape.Origin)
	assert.InDelta(t, 20, shape.Radius, 1e-9)

	require.NoError(t, a.ReportChanges(nil))
	assert.Zero(t, out.Len())

	a.ObjectsRemoved(nil, []sim.Object{bot}...)
	require.NoError(t, a.ReportChanges(nil))
	msgs = decodeReport(t, &out)
	require.Len(t, msgs, 1)
	assert.Equal(t, ActionRemove, msgs[0].Action)
	assert.Equal(t, "sim-base.1", msgs[0].RemoveID)
}

func TestShapeJSON(t *testing.T) {
	shape := ShapeFrom("image", &disc{name: "a/b", r: 0.5, pose: tf.Transform{X: 1, Y: -2}}, 10).
		With("src", "x.svg")
	data, err := json.Marshal(shape)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a.b","type":"image","origin":{"x":10,"y":20},"radius":5,"src":"x.svg"}`, string(data))

	var decoded Shape
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, shape, &decoded)
}
