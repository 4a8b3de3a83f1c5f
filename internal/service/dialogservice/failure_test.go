package dialogservice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catalogadmin/internal/notify"
)

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		op   string
		want string
	}{
		{notify.OpUpload, MsgUploadFailed},
		{notify.OpEdit, MsgUpdateFailed},
		{notify.OpAdd, MsgCreateFailed},
		{notify.OpSubmit, MsgSubmitFailed},
		{"", MsgSubmitFailed},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			assert.Equal(t, tt.want, failureMessage(tt.op))
		})
	}
}
