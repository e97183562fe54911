package see

import (
	"encoding/json"
	"maps"
	"math"
	"strings"

	"github.com/robotalks/movebase.go/pkg/sim"
)

// VisibleObject is a round object with a pose.
type VisibleObject interface {
	sim.Object
	sim.Round
	sim.Positionable2D
}

// ObjectMapper renders a VisibleObject as shapes. Nil shapes are skipped.
type ObjectMapper interface {
	MapObject(VisibleObject) []*Shape
}

// MapObjectFunc is the func form of ObjectMapper.
type MapObjectFunc func(VisibleObject) []*Shape

// MapObject implements ObjectMapper.
func (f MapObjectFunc) MapObject(obj VisibleObject) []*Shape {
	return f(obj)
}

// Actions of a Message.
const (
	ActionReset  = "reset"
	ActionObject = "object"
	ActionRemove = "remove"
)

// Message is a single update to the visualizer.
type Message struct {
	Action   string `json:"action"`
	Object   *Shape `json:"object,omitempty"`
	RemoveID string `json:"id,omitempty"`
}

// Point is a position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an area in pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Shape is a drawable object in screen coordinates. Extra carries
// properties specific to Type, e.g. src of an image.
type Shape struct {
	ID     string
	Type   string
	Origin *Point
	Rect   *Rect
	Radius float64
	// Rotate is clockwise in degrees.
	Rotate float64
	Extra  map[string]any
}

// ObjectID converts an object name to a visualizer ID.
func ObjectID(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

// NewShape creates a Shape.
func NewShape(typ, id string) *Shape {
	return &Shape{ID: id, Type: typ}
}

// ShapeFrom places a shape at the pose of vo, scaled by pixels per meter.
// Screen Y grows downwards so Y and rotation are flipped.
func ShapeFrom(typ string, vo VisibleObject, scale float64) *Shape {
	pose := vo.Pose2D()
	return NewShape(typ, ObjectID(vo.Name())).
		At(pose.X*scale, -pose.Y*scale).
		WithRadius(vo.Radius() * scale).
		WithRotate(-pose.Yaw * 180 / math.Pi)
}

// At sets origin.
func (s *Shape) At(x, y float64) *Shape {
	s.Origin = &Point{X: x, Y: y}
	return s
}

// In sets rect.
func (s *Shape) In(x, y, w, h float64) *Shape {
	s.Rect = &Rect{X: x, Y: y, W: w, H: h}
	return s
}

// WithRadius sets radius.
func (s *Shape) WithRadius(r float64) *Shape {
	s.Radius = r
	return s
}

// WithRotate sets rotation in degrees.
func (s *Shape) WithRotate(deg float64) *Shape {
	s.Rotate = deg
	return s
}

// With sets an extra property.
func (s *Shape) With(key string, val any) *Shape {
	if s.Extra == nil {
		s.Extra = make(map[string]any)
	}
	s.Extra[key] = val
	return s
}

// MarshalJSON flattens Extra into the object.
func (s *Shape) MarshalJSON() ([]byte, error) {
	props := make(map[string]any, len(s.Extra)+6)
	maps.Copy(props, s.Extra)
	props["id"], props["type"] = s.ID, s.Type
	if s.Origin != nil {
		props["origin"] = s.Origin
	}
	if s.Rect != nil {
		props["rect"] = s.Rect
	}
	if s.Radius != 0 {
		props["radius"] = s.Radius
	}
	if s.Rotate != 0 {
		props["rotate"] = s.Rotate
	}
	return json.Marshal(props)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Shape) UnmarshalJSON(data []byte) error {
	var known struct {
		ID     string  `json:"id"`
		Type   string  `json:"type"`
		Origin *Point  `json:"origin"`
		Rect   *Rect   `json:"rect"`
		Radius float64 `json:"radius"`
		Rotate float64 `json:"rotate"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var extra map[string]any
	if err := json.Unmarshal(data, &extra); err != nil {
		return err
	}
	for _, key := range []string{"id", "type", "origin", "rect", "radius", "rotate"} {
		delete(extra, key)
	}
	*s = Shape{
		ID: known.ID, Type: known.Type,
		Origin: known.Origin, Rect: known.Rect,
		Radius: known.Radius, Rotate: known.Rotate,
	}
	if len(extra) > 0 {
		s.Extra = extra
	}
	return nil
}
