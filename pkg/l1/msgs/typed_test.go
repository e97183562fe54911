package msgs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/movebase.go/pkg/framework"
)

func TestTypedKinds(t *testing.T) {
	testCases := []struct {
		name    string
		typeID  uint32
		command bool
		event   bool
		reply   bool
	}{
		{"twist", TwistTypeID, true, false, false},
		{"command ok", CommandOKTypeID, true, false, true},
		{"goal accepted", MoveBaseAcceptedTypeID, true, false, true},
		{"laser scan", LaserScanTypeID, false, true, false},
		{"transform", TransformStampedTypeID, false, true, false},
		{"goal result", MoveBaseResultTypeID, false, true, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			typed := &Typed{TypeId: tc.typeID}
			assert.Equal(t, tc.command, typed.IsCommand())
			assert.Equal(t, tc.event, typed.IsEvent())
			assert.Equal(t, tc.reply, typed.IsReply())
		})
	}
}

func TestEncodeDecodeLaserScan(t *testing.T) {
	scan := &LaserScan{
		Header:         &Header{FrameId: "base_laser", Stamp: 42},
		AngleMin:       -1.5,
		AngleMax:       1.5,
		AngleIncrement: 0.5,
		RangeMin:       0.05,
		RangeMax:       10,
		Ranges:         []float64{1, 2, 3, 4, 5, 6, 7},
	}
	data, err := EncodeMessage(scan)
	require.NoError(t, err)

	typed, err := DecodeTyped(data)
	require.NoError(t, err)
	require.Equal(t, LaserScanTypeID, typed.TypeId)
	require.True(t, typed.IsEvent())

	msg, err := typed.Decode()
	require.NoError(t, err)
	decoded, ok := msg.(*LaserScan)
	require.True(t, ok)
	assert.Equal(t, "base_laser", decoded.Header.FrameId)
	assert.Equal(t, int64(42), decoded.Header.Stamp)
	assert.Equal(t, scan.Ranges, decoded.Ranges)
	assert.Equal(t, scan.AngleIncrement, decoded.AngleIncrement)
}

func TestDecodeUnknownType(t *testing.T) {
	data, err := (&Typed{TypeId: GroupCustom | 0x7777}).Encode()
	require.NoError(t, err)
	_, err = DecodeMessage(data)
	require.Error(t, err)
	unknown, ok := err.(*ErrUnknownType)
	require.True(t, ok)
	assert.Equal(t, GroupCustom|0x7777, unknown.TypeID)
}

func TestTypedFromNonSerializable(t *testing.T) {
	_, err := TypedFrom(&nonSerializable{})
	assert.ErrorIs(t, err, ErrNotSerializable)
}

type nonSerializable struct{}

func (m *nonSerializable) NewMessage() fx.Message { return &nonSerializable{} }

func TestRegisterDuplicate(t *testing.T) {
	assert.Len(t, MessageTypes, 14)
	assert.Panics(t, func() { Register(&Twist{}) })

	typed := &Typed{TypeId: MoveBaseStatusTypeID}
	assert.Equal(t, GroupMoveBase, typed.Group())
}
