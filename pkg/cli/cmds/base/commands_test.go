package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/movebase.go/pkg/l1/msgs"
)

func TestParseTwist(t *testing.T) {
	testCases := []struct {
		name   string
		args   []string
		expect *msgs.Twist
	}{
		{name: "linear", args: []string{"0.2"}, expect: &msgs.Twist{LinearX: 0.2}},
		{name: "angular", args: []string{"0", "-0.5"}, expect: &msgs.Twist{AngularZ: -0.5}},
		{name: "strafe", args: []string{"0.1", "0", "0.3"}, expect: &msgs.Twist{LinearX: 0.1, LinearY: 0.3}},
		{name: "missing", args: nil},
		{name: "invalid", args: []string{"fast"}},
		{name: "too many", args: []string{"1", "2", "3", "4"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := ParseTwist(tc.args)
			if tc.expect == nil {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, msg)
		})
	}
}
