package patch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type institutionPatch struct {
	Name     Field[string]  `json:"name"`
	MinScore Field[Int]     `json:"minScore"`
	Website  Field[*string] `json:"website"`
}

func TestFieldPresence(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, p institutionPatch)
	}{
		{
			name: "absent keys stay unset",
			body: `{}`,
			check: func(t *testing.T, p institutionPatch) {
				assert.False(t, p.Name.Set)
				assert.False(t, p.MinScore.Set)
				assert.False(t, p.Website.Set)
			},
		},
		{
			name: "falsy values are present",
			body: `{"name":"","minScore":0}`,
			check: func(t *testing.T, p institutionPatch) {
				assert.True(t, p.Name.Set)
				assert.Equal(t, "", p.Name.Value)
				assert.True(t, p.MinScore.Set)
				assert.Equal(t, Int(0), p.MinScore.Value)
				assert.False(t, p.Website.Set)
			},
		},
		{
			name: "explicit null",
			body: `{"website":null}`,
			check: func(t *testing.T, p institutionPatch) {
				assert.True(t, p.Website.Set)
				assert.True(t, p.Website.Null)
				assert.Nil(t, p.Website.Ptr())
			},
		},
		{
			name: "numeric string coerced",
			body: `{"minScore":"275"}`,
			check: func(t *testing.T, p institutionPatch) {
				assert.Equal(t, Int(275), p.MinScore.Value)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p institutionPatch
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))
			tt.check(t, p)
		})
	}
}

func TestIntUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    Int
		wantErr bool
	}{
		{`250`, 250, false},
		{`"250"`, 250, false},
		{`" 42 "`, 42, false},
		{`250.9`, 250, false},
		{`-3`, -3, false},
		{`"abc"`, 0, true},
		{`true`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var n Int
			err := json.Unmarshal([]byte(tt.in), &n)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestFieldMarshal(t *testing.T) {
	out, err := json.Marshal(institutionPatch{Name: Of("МГУ"), Website: Null[*string]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"МГУ","minScore":null,"website":null}`, string(out))
}
