// Package msgs defines the messages exchanged between L1 controllers and
// L2 components, and their wire encoding.
//
// Every message has a 32-bit type id. The high bits select the kind:
// commands are sent by L2 and replied by L1 with the reply bit set on the
// type id, events are published by L1 without a reply. The remaining bits
// are a group and an index within the group:
//
//	Command   CommandOK, CommandErr
//	Base      BaseCapsQuery, Twist
//	Sensor    LaserScan
//	Geometry  TransformStamped, PoseStamped
//	MoveBase  MoveBaseGoal, MoveBaseCancel, MoveBaseStatusQuery, MoveBaseResult
//
// A packet is a Typed envelope carrying the type id, the sequence number
// matching a reply to its command, and the protobuf encoded message.
package msgs
