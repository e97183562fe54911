package sh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/movebase.go/pkg/l1"
	"github.com/robotalks/movebase.go/pkg/l1/msgs"
)

func TestFormatMessage(t *testing.T) {
	out, err := FormatMessage(msgs.NewCommandOK(), false)
	require.NoError(t, err)
	assert.Equal(t, "OK", out)

	out, err = FormatMessage(&msgs.MoveBaseAccepted{GoalId: "g1"}, false)
	require.NoError(t, err)
	assert.Contains(t, out, "MoveBaseAccepted ")
	assert.Contains(t, out, `"g1"`)

	out, err = FormatMessage(&msgs.Twist{LinearX: 0.5}, true)
	require.NoError(t, err)
	assert.JSONEq(t, `{"linear_x":0.5}`, out)

	_, err = FormatMessage(&l1.CommandMsg{}, false)
	assert.Error(t, err)
}

func TestFormatInfo(t *testing.T) {
	info := l1.ControllerInfo{Ref: l1.ControllerRef{Type: "sim-base", ID: "1"}}
	assert.Equal(t, info.Ref.Name(), FormatInfo(info))
	info.Meta.Description = "simulated"
	assert.Equal(t, info.Ref.Name()+": simulated", FormatInfo(info))
}

func TestRefFromArgs(t *testing.T) {
	tests := []struct {
		args []string
		ref  l1.ControllerRef
		ok   bool
	}{
		{[]string{"movebase/a1"}, l1.ControllerRef{Type: "movebase", ID: "a1"}, true},
		{[]string{"sim-base", "a1"}, l1.ControllerRef{Type: "sim-base", ID: "a1"}, true},
		{[]string{"movebase"}, l1.ControllerRef{}, false},
		{nil, l1.ControllerRef{}, false},
	}
	for _, tc := range tests {
		ref, err := refFromArgs(tc.args)
		if !tc.ok {
			assert.Error(t, err, "%v", tc.args)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.ref, ref)
	}
}

func TestTypeFilter(t *testing.T) {
	assert.Nil(t, typeFilter(nil))
	filter := typeFilter([]string{"movebase"})
	assert.True(t, filter(l1.ControllerInfo{Ref: l1.ControllerRef{Type: "movebase", ID: "1"}}))
	assert.False(t, filter(l1.ControllerInfo{Ref: l1.ControllerRef{Type: "sim-base", ID: "1"}}))
}
