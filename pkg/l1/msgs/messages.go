package msgs

import (
	"errors"

	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/movebase.go/pkg/framework"
)

// CommandOK is the generic reply indicating success for commands.
type CommandOK struct {
}

// NewCommandOK creates a CommandOK.
func NewCommandOK() *CommandOK {
	return &CommandOK{}
}

// NewMessage implements Message.
func (m *CommandOK) NewMessage() fx.Message { return &CommandOK{} }

// TypeID implements SerializableMessage.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// Serializable implements SerializableMessage.
func (m *CommandOK) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CommandOK) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandOK) Reset() { *m = CommandOK{} }

// String implements proto.Message.
func (m *CommandOK) String() string { return proto.CompactTextString(m) }

// CommandErr is the generic message representing command error.
type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return NewCommandErrFromMsg(err.Error())
}

// NewCommandErrFromMsg creates a CommandErr.
func NewCommandErrFromMsg(message string) *CommandErr {
	return &CommandErr{Message: message}
}

// NewMessage implements Message.
func (m *CommandErr) NewMessage() fx.Message { return &CommandErr{} }

// TypeID implements SerializableMessage.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// Serializable implements SerializableMessage.
func (m *CommandErr) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CommandErr) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandErr) Reset() { *m = CommandErr{} }

// String implements proto.Message.
func (m *CommandErr) String() string { return proto.CompactTextString(m) }

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }

// BaseCapsQuery command.
type BaseCapsQuery struct {
}

// NewMessage implements Message.
func (m *BaseCapsQuery) NewMessage() fx.Message { return &BaseCapsQuery{} }

// TypeID implements SerializableMessage.
func (m *BaseCapsQuery) TypeID() uint32 { return BaseCapsQueryTypeID }

// Serializable implements SerializableMessage.
func (m *BaseCapsQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *BaseCapsQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *BaseCapsQuery) Reset() { *m = BaseCapsQuery{} }

// String implements proto.Message.
func (m *BaseCapsQuery) String() string { return proto.CompactTextString(m) }

// BaseCaps response, describes the limits of a mobile base.
type BaseCaps struct {
	// LinearSpeedMax is in m/s, 0 means unlimited.
	LinearSpeedMax float64 `protobuf:"fixed64,1,opt,name=linear_speed_max,json=linearSpeedMax,proto3" json:"linear_speed_max,omitempty"`
	// AngularSpeedMax is in rad/s, 0 means unlimited.
	AngularSpeedMax float64 `protobuf:"fixed64,2,opt,name=angular_speed_max,json=angularSpeedMax,proto3" json:"angular_speed_max,omitempty"`
	Holonomic       bool    `protobuf:"varint,3,opt,name=holonomic,proto3" json:"holonomic,omitempty"`
	FootprintFrame  string  `protobuf:"bytes,4,opt,name=footprint_frame,json=footprintFrame,proto3" json:"footprint_frame,omitempty"`
}

// NewMessage implements Message.
func (m *BaseCaps) NewMessage() fx.Message { return &BaseCaps{} }

// TypeID implements SerializableMessage.
func (m *BaseCaps) TypeID() uint32 { return BaseCapsTypeID }

// Serializable implements SerializableMessage.
func (m *BaseCaps) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *BaseCaps) ProtoMessage() {}

// Reset implements proto.Message.
func (m *BaseCaps) Reset() { *m = BaseCaps{} }

// String implements proto.Message.
func (m *BaseCaps) String() string { return proto.CompactTextString(m) }

// Twist command sets the body frame velocity of a base.
// A zero Twist stops the base.
type Twist struct {
	LinearX  float64 `protobuf:"fixed64,1,opt,name=linear_x,json=linearX,proto3" json:"linear_x,omitempty"`
	LinearY  float64 `protobuf:"fixed64,2,opt,name=linear_y,json=linearY,proto3" json:"linear_y,omitempty"`
	AngularZ float64 `protobuf:"fixed64,3,opt,name=angular_z,json=angularZ,proto3" json:"angular_z,omitempty"`
}

// NewMessage implements Message.
func (m *Twist) NewMessage() fx.Message { return &Twist{} }

// TypeID implements SerializableMessage.
func (m *Twist) TypeID() uint32 { return TwistTypeID }

// Serializable implements SerializableMessage.
func (m *Twist) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *Twist) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Twist) Reset() { *m = Twist{} }

// String implements proto.Message.
func (m *Twist) String() string { return proto.CompactTextString(m) }

// Header is the common header of stamped messages.
type Header struct {
	FrameId string `protobuf:"bytes,1,opt,name=frame_id,json=frameId,proto3" json:"frame_id,omitempty"`
	// Stamp is in nanoseconds since Unix epoch, 0 means latest.
	Stamp int64 `protobuf:"varint,2,opt,name=stamp,proto3" json:"stamp,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Header) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Header) Reset() { *m = Header{} }

// String implements proto.Message.
func (m *Header) String() string { return proto.CompactTextString(m) }

// Vector3 is a 3D vector or point.
type Vector3 struct {
	X float64 `protobuf:"fixed64,1,opt,name=x,proto3" json:"x,omitempty"`
	Y float64 `protobuf:"fixed64,2,opt,name=y,proto3" json:"y,omitempty"`
	Z float64 `protobuf:"fixed64,3,opt,name=z,proto3" json:"z,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Vector3) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Vector3) Reset() { *m = Vector3{} }

// String implements proto.Message.
func (m *Vector3) String() string { return proto.CompactTextString(m) }

// Quaternion is an orientation in 3D.
type Quaternion struct {
	X float64 `protobuf:"fixed64,1,opt,name=x,proto3" json:"x,omitempty"`
	Y float64 `protobuf:"fixed64,2,opt,name=y,proto3" json:"y,omitempty"`
	Z float64 `protobuf:"fixed64,3,opt,name=z,proto3" json:"z,omitempty"`
	W float64 `protobuf:"fixed64,4,opt,name=w,proto3" json:"w,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Quaternion) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Quaternion) Reset() { *m = Quaternion{} }

// String implements proto.Message.
func (m *Quaternion) String() string { return proto.CompactTextString(m) }

// Pose is a position with orientation.
type Pose struct {
	Position    *Vector3    `protobuf:"bytes,1,opt,name=position,proto3" json:"position,omitempty"`
	Orientation *Quaternion `protobuf:"bytes,2,opt,name=orientation,proto3" json:"orientation,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Pose) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Pose) Reset() { *m = Pose{} }

// String implements proto.Message.
func (m *Pose) String() string { return proto.CompactTextString(m) }

// PoseStamped is a Pose in a reference frame.
// It's also published as an event on the goal topic.
type PoseStamped struct {
	Header *Header `protobuf:"bytes,1,opt,name=header,proto3" json:"header,omitempty"`
	Pose   *Pose   `protobuf:"bytes,2,opt,name=pose,proto3" json:"pose,omitempty"`
}

// NewMessage implements Message.
func (m *PoseStamped) NewMessage() fx.Message { return &PoseStamped{} }

// TypeID implements SerializableMessage.
func (m *PoseStamped) TypeID() uint32 { return PoseStampedTypeID }

// Serializable implements SerializableMessage.
func (m *PoseStamped) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *PoseStamped) ProtoMessage() {}

// Reset implements proto.Message.
func (m *PoseStamped) Reset() { *m = PoseStamped{} }

// String implements proto.Message.
func (m *PoseStamped) String() string { return proto.CompactTextString(m) }

// LaserScan event is a single sweep of a planar range sensor.
type LaserScan struct {
	Header         *Header   `protobuf:"bytes,1,opt,name=header,proto3" json:"header,omitempty"`
	AngleMin       float64   `protobuf:"fixed64,2,opt,name=angle_min,json=angleMin,proto3" json:"angle_min,omitempty"`
	AngleMax       float64   `protobuf:"fixed64,3,opt,name=angle_max,json=angleMax,proto3" json:"angle_max,omitempty"`
	AngleIncrement float64   `protobuf:"fixed64,4,opt,name=angle_increment,json=angleIncrement,proto3" json:"angle_increment,omitempty"`
	RangeMin       float64   `protobuf:"fixed64,5,opt,name=range_min,json=rangeMin,proto3" json:"range_min,omitempty"`
	RangeMax       float64   `protobuf:"fixed64,6,opt,name=range_max,json=rangeMax,proto3" json:"range_max,omitempty"`
	Ranges         []float64 `protobuf:"fixed64,7,rep,packed,name=ranges,proto3" json:"ranges,omitempty"`
}

// NewMessage implements Message.
func (m *LaserScan) NewMessage() fx.Message { return &LaserScan{} }

// TypeID implements SerializableMessage.
func (m *LaserScan) TypeID() uint32 { return LaserScanTypeID }

// Serializable implements SerializableMessage.
func (m *LaserScan) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *LaserScan) ProtoMessage() {}

// Reset implements proto.Message.
func (m *LaserScan) Reset() { *m = LaserScan{} }

// String implements proto.Message.
func (m *LaserScan) String() string { return proto.CompactTextString(m) }

// Transform is a translation with rotation.
type Transform struct {
	Translation *Vector3    `protobuf:"bytes,1,opt,name=translation,proto3" json:"translation,omitempty"`
	Rotation    *Quaternion `protobuf:"bytes,2,opt,name=rotation,proto3" json:"rotation,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Transform) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Transform) Reset() { *m = Transform{} }

// String implements proto.Message.
func (m *Transform) String() string { return proto.CompactTextString(m) }

// TransformStamped event publishes the pose of ChildFrameId in
// Header.FrameId.
type TransformStamped struct {
	Header       *Header    `protobuf:"bytes,1,opt,name=header,proto3" json:"header,omitempty"`
	ChildFrameId string     `protobuf:"bytes,2,opt,name=child_frame_id,json=childFrameId,proto3" json:"child_frame_id,omitempty"`
	Transform    *Transform `protobuf:"bytes,3,opt,name=transform,proto3" json:"transform,omitempty"`
	// Static transforms never change and are valid at any time.
	Static bool `protobuf:"varint,4,opt,name=static,proto3" json:"static,omitempty"`
}

// NewMessage implements Message.
func (m *TransformStamped) NewMessage() fx.Message { return &TransformStamped{} }

// TypeID implements SerializableMessage.
func (m *TransformStamped) TypeID() uint32 { return TransformStampedTypeID }

// Serializable implements SerializableMessage.
func (m *TransformStamped) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *TransformStamped) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TransformStamped) Reset() { *m = TransformStamped{} }

// String implements proto.Message.
func (m *TransformStamped) String() string { return proto.CompactTextString(m) }

// TypeID Groups
const (
	GroupCommand  uint32 = 0x00000000
	GroupBase     uint32 = 0x00030000
	GroupSensor   uint32 = 0x00040000
	GroupGeometry uint32 = 0x00050000
	GroupMoveBase uint32 = 0x00060000
	GroupCustom   uint32 = 0x7f000000 // base group id for custom messages.
)

// TypeIDs
const (
	CommandOKTypeID           uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID          uint32 = GroupCommand | TypeIDMaskReply | 0x0001
	BaseCapsQueryTypeID       uint32 = GroupBase | 0x0000
	BaseCapsTypeID            uint32 = BaseCapsQueryTypeID | TypeIDMaskReply
	TwistTypeID               uint32 = GroupBase | 0x0001
	LaserScanTypeID           uint32 = TypeIDKindEvent | GroupSensor | 0x0000
	TransformStampedTypeID    uint32 = TypeIDKindEvent | GroupGeometry | 0x0000
	PoseStampedTypeID         uint32 = TypeIDKindEvent | GroupGeometry | 0x0001
	MoveBaseGoalTypeID        uint32 = GroupMoveBase | 0x0000
	MoveBaseAcceptedTypeID    uint32 = MoveBaseGoalTypeID | TypeIDMaskReply
	MoveBaseCancelTypeID      uint32 = GroupMoveBase | 0x0001
	MoveBaseStatusQueryTypeID uint32 = GroupMoveBase | 0x0002
	MoveBaseStatusTypeID      uint32 = MoveBaseStatusQueryTypeID | TypeIDMaskReply
	MoveBaseResultTypeID      uint32 = TypeIDKindEvent | GroupMoveBase | 0x0000
)

var (
	// ErrUnknownCommand indicates the command is unknown.
	ErrUnknownCommand = errors.New("unknown command")
)
