package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTail(t *testing.T) {
	tests := []struct {
		tail    int
		wantErr bool
	}{
		{0, false},
		{1, false},
		{10000, false},
		{10001, true},
		{-1, true},
	}

	for _, tt := range tests {
		err := validateTail(tt.tail)
		if tt.wantErr {
			assert.Error(t, err, "tail %d", tt.tail)
		} else {
			assert.NoError(t, err, "tail %d", tt.tail)
		}
	}
}

func TestKeywordArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{"separate", []string{"error", "timeout"}, []string{"error", "timeout"}, false},
		{"comma separated", []string{"error, timeout"}, []string{"error", "timeout"}, false},
		{"mixed with duplicates", []string{"error,fatal", "error"}, []string{"error", "fatal"}, false},
		{"blank", []string{" , "}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := keywordArgs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
