package msgs

import (
	"context"
	"fmt"

	"github.com/golang/protobuf/proto"
	"github.com/pkg/errors"

	fx "github.com/robotalks/movebase.go/pkg/framework"
)

// TypeID masks
const (
	TypeIDMaskKind  uint32 = 0x80000000
	TypeIDMaskGroup uint32 = 0x7fff0000
	TypeIDMaskID    uint32 = 0x0000ffff
	TypeIDMaskReply uint32 = 0x00008000
)

// Message Kinds
const (
	TypeIDKindCommand uint32 = 0x00000000
	TypeIDKindEvent   uint32 = 0x80000000
)

// Typed wraps a message with type information.
type Typed struct {
	TypeId   uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Sequence uint32 `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Message  []byte `protobuf:"bytes,3,opt,name=message,proto3" json:"message,omitempty"`
}

// ProtoMessage implements proto.Message.
func (p *Typed) ProtoMessage() {}

// Reset implements proto.Message.
func (p *Typed) Reset() { *p = Typed{} }

// String implements proto.Message.
func (p *Typed) String() string { return proto.CompactTextString(p) }

// TypedMsgHandler handles a decoded message with its envelope.
type TypedMsgHandler interface {
	HandleTypedMsg(context.Context, fx.Message, *Typed) error
}

// HandleTypedMsgFunc is func form of TypedMsgHandler.
type HandleTypedMsgFunc func(context.Context, fx.Message, *Typed) error

// HandleTypedMsg implements TypedMsgHandler.
func (f HandleTypedMsgFunc) HandleTypedMsg(ctx context.Context, msg fx.Message, typed *Typed) error {
	return f(ctx, msg, typed)
}

// ErrUnknownType indicates unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

var (
	// ErrNotSerializable indicates the message is not serializable.
	ErrNotSerializable = errors.New("not serializable message")
	// ErrUnsupportedCommand indicates the command is unsupported.
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// SerializableMessage can be serialized over the wire.
type SerializableMessage interface {
	fx.Message
	TypeID() uint32
	Serializable() proto.Message
}

// MessageTypes maps type ids to message prototypes for decoding.
var MessageTypes = make(map[uint32]SerializableMessage)

// Register adds message prototypes to MessageTypes. It panics on a
// duplicated type id.
func Register(protos ...SerializableMessage) {
	for _, m := range protos {
		if prev, ok := MessageTypes[m.TypeID()]; ok {
			panic(fmt.Sprintf("type id %x of %T registered by %T", m.TypeID(), m, prev))
		}
		MessageTypes[m.TypeID()] = m
	}
}

func init() {
	Register(
		&CommandOK{}, &CommandErr{},
		&BaseCapsQuery{}, &BaseCaps{}, &Twist{},
		&LaserScan{}, &TransformStamped{}, &PoseStamped{},
		&MoveBaseGoal{}, &MoveBaseAccepted{}, &MoveBaseCancel{},
		&MoveBaseStatusQuery{}, &MoveBaseStatus{}, &MoveBaseResult{},
	)
}

// TypedFrom serializes msg into a Typed with zero Sequence.
func TypedFrom(msg fx.Message) (*Typed, error) {
	s, ok := msg.(SerializableMessage)
	if !ok {
		return nil, errors.Wrapf(ErrNotSerializable, "%T", msg)
	}
	data, err := proto.Marshal(s.Serializable())
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %T", msg)
	}
	return &Typed{TypeId: s.TypeID(), Message: data}, nil
}

// Decode decodes the payload into a new message of TypeId.
func (p *Typed) Decode() (fx.Message, error) {
	prototype, ok := MessageTypes[p.TypeId]
	if !ok {
		return nil, &ErrUnknownType{TypeID: p.TypeId}
	}
	msg := prototype.NewMessage().(SerializableMessage)
	if err := proto.Unmarshal(p.Message, msg.Serializable()); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %T", msg)
	}
	return msg, nil
}

// Encode encodes the Typed to bytes.
func (p *Typed) Encode() ([]byte, error) {
	return proto.Marshal(p)
}

// Kind is TypeIDKindCommand or TypeIDKindEvent.
func (p *Typed) Kind() uint32 {
	return p.TypeId & TypeIDMaskKind
}

// Group is one of the Group constants.
func (p *Typed) Group() uint32 {
	return p.TypeId & TypeIDMaskGroup
}

// IsCommand includes command replies.
func (p *Typed) IsCommand() bool {
	return p.Kind() == TypeIDKindCommand
}

// IsEvent determines if the message is an event.
func (p *Typed) IsEvent() bool {
	return p.Kind() == TypeIDKindEvent
}

// IsReply determines if the message is a reply to a command.
func (p *Typed) IsReply() bool {
	return p.IsCommand() && p.TypeId&TypeIDMaskReply != 0
}

// EncodeMessage encodes msg as a Typed packet.
func EncodeMessage(msg fx.Message) ([]byte, error) {
	typed, err := TypedFrom(msg)
	if err != nil {
		return nil, err
	}
	return typed.Encode()
}

// DecodeMessage decodes a Typed packet into the message it carries.
func DecodeMessage(data []byte) (fx.Message, error) {
	typed, err := DecodeTyped(data)
	if err != nil {
		return nil, err
	}
	return typed.Decode()
}

// DecodeTyped decodes the Typed envelope only.
func DecodeTyped(data []byte) (*Typed, error) {
	typed := &Typed{}
	if err := proto.Unmarshal(data, typed); err != nil {
		return nil, errors.Wrap(err, "decode envelope")
	}
	return typed, nil
}
