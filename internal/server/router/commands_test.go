package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPrefix(t *testing.T) {
	tests := []struct {
		text   string
		want   string
		wantOK bool
	}{
		{"unlock u1", "u1", true},
		{"UNLOCK\tu1", "u1", true},
		{"unlock", "", true},
		{"unlocked", "", false},
		{"解封u1", "u1", true},
		{"解封 u1 ", "u1", true},
		{"please unlock u1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := matchPrefix(tt.text, cmdUnlock)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsCommand(t *testing.T) {
	assert.True(t, isCommand("Issue Code", cmdIssueCode))
	assert.True(t, isCommand("生成验证码", cmdIssueCode))
	assert.False(t, isCommand("issue code now", cmdIssueCode))
	assert.False(t, isCommand("查询id", cmdQueryID))
}
