package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/movebase.go/pkg/framework"
)

// Goal states reported in GoalStatus.State.
const (
	GoalStateIdle      uint32 = 0
	GoalStateRunning   uint32 = 1
	GoalStateSucceeded uint32 = 2
	GoalStateAborted   uint32 = 3
	GoalStatePreempted uint32 = 4
)

// MoveBaseGoal command asks the base to move straight to a target pose.
// The reply is MoveBaseAccepted.
type MoveBaseGoal struct {
	// GoalId is optional, a new one is assigned if empty.
	GoalId     string       `protobuf:"bytes,1,opt,name=goal_id,json=goalId,proto3" json:"goal_id,omitempty"`
	TargetPose *PoseStamped `protobuf:"bytes,2,opt,name=target_pose,json=targetPose,proto3" json:"target_pose,omitempty"`
}

// NewMessage implements Message.
func (m *MoveBaseGoal) NewMessage() fx.Message { return &MoveBaseGoal{} }

// TypeID implements SerializableMessage.
func (m *MoveBaseGoal) TypeID() uint32 { return MoveBaseGoalTypeID }

// Serializable implements SerializableMessage.
func (m *MoveBaseGoal) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *MoveBaseGoal) ProtoMessage() {}

// Reset implements proto.Message.
func (m *MoveBaseGoal) Reset() { *m = MoveBaseGoal{} }

// String implements proto.Message.
func (m *MoveBaseGoal) String() string { return proto.CompactTextString(m) }

// MoveBaseAccepted is the reply of MoveBaseGoal.
type MoveBaseAccepted struct {
	GoalId string `protobuf:"bytes,1,opt,name=goal_id,json=goalId,proto3" json:"goal_id,omitempty"`
}

// NewMessage implements Message.
func (m *MoveBaseAccepted) NewMessage() fx.Message { return &MoveBaseAccepted{} }

// TypeID implements SerializableMessage.
func (m *MoveBaseAccepted) TypeID() uint32 { return MoveBaseAcceptedTypeID }

// Serializable implements SerializableMessage.
func (m *MoveBaseAccepted) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *MoveBaseAccepted) ProtoMessage() {}

// Reset implements proto.Message.
func (m *MoveBaseAccepted) Reset() { *m = MoveBaseAccepted{} }

// String implements proto.Message.
func (m *MoveBaseAccepted) String() string { return proto.CompactTextString(m) }

// MoveBaseCancel command preempts a goal.
// An empty GoalId preempts whatever goal is active.
type MoveBaseCancel struct {
	GoalId string `protobuf:"bytes,1,opt,name=goal_id,json=goalId,proto3" json:"goal_id,omitempty"`
}

// NewMessage implements Message.
func (m *MoveBaseCancel) NewMessage() fx.Message { return &MoveBaseCancel{} }

// TypeID implements SerializableMessage.
func (m *MoveBaseCancel) TypeID() uint32 { return MoveBaseCancelTypeID }

// Serializable implements SerializableMessage.
func (m *MoveBaseCancel) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *MoveBaseCancel) ProtoMessage() {}

// Reset implements proto.Message.
func (m *MoveBaseCancel) Reset() { *m = MoveBaseCancel{} }

// String implements proto.Message.
func (m *MoveBaseCancel) String() string { return proto.CompactTextString(m) }

// MoveBaseStatusQuery command queries the status of the latest goal.
type MoveBaseStatusQuery struct {
}

// NewMessage implements Message.
func (m *MoveBaseStatusQuery) NewMessage() fx.Message { return &MoveBaseStatusQuery{} }

// TypeID implements SerializableMessage.
func (m *MoveBaseStatusQuery) TypeID() uint32 { return MoveBaseStatusQueryTypeID }

// Serializable implements SerializableMessage.
func (m *MoveBaseStatusQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *MoveBaseStatusQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *MoveBaseStatusQuery) Reset() { *m = MoveBaseStatusQuery{} }

// String implements proto.Message.
func (m *MoveBaseStatusQuery) String() string { return proto.CompactTextString(m) }

// GoalStatus describes the state of a goal.
type GoalStatus struct {
	GoalId string `protobuf:"bytes,1,opt,name=goal_id,json=goalId,proto3" json:"goal_id,omitempty"`
	State  uint32 `protobuf:"varint,2,opt,name=state,proto3" json:"state,omitempty"`
	// Distance is the distance to the goal (m) when last evaluated.
	Distance float64 `protobuf:"fixed64,3,opt,name=distance,proto3" json:"distance,omitempty"`
	// YawError is the orientation error (rad) when last evaluated.
	YawError float64 `protobuf:"fixed64,4,opt,name=yaw_error,json=yawError,proto3" json:"yaw_error,omitempty"`
	Text     string  `protobuf:"bytes,5,opt,name=text,proto3" json:"text,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *GoalStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *GoalStatus) Reset() { *m = GoalStatus{} }

// String implements proto.Message.
func (m *GoalStatus) String() string { return proto.CompactTextString(m) }

// MoveBaseStatus is the reply of MoveBaseStatusQuery.
type MoveBaseStatus struct {
	Status *GoalStatus `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

// NewMessage implements Message.
func (m *MoveBaseStatus) NewMessage() fx.Message { return &MoveBaseStatus{} }

// TypeID implements SerializableMessage.
func (m *MoveBaseStatus) TypeID() uint32 { return MoveBaseStatusTypeID }

// Serializable implements SerializableMessage.
func (m *MoveBaseStatus) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *MoveBaseStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *MoveBaseStatus) Reset() { *m = MoveBaseStatus{} }

// String implements proto.Message.
func (m *MoveBaseStatus) String() string { return proto.CompactTextString(m) }

// MoveBaseResult event is published when a goal terminates.
type MoveBaseResult struct {
	Status *GoalStatus `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

// NewMessage implements Message.
func (m *MoveBaseResult) NewMessage() fx.Message { return &MoveBaseResult{} }

// TypeID implements SerializableMessage.
func (m *MoveBaseResult) TypeID() uint32 { return MoveBaseResultTypeID }

// Serializable implements SerializableMessage.
func (m *MoveBaseResult) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *MoveBaseResult) ProtoMessage() {}

// Reset implements proto.Message.
func (m *MoveBaseResult) Reset() { *m = MoveBaseResult{} }

// String implements proto.Message.
func (m *MoveBaseResult) String() string { return proto.CompactTextString(m) }
