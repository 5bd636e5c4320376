package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsCrisisLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"explicit", "I have been thinking about suicide", true},
		{"case insensitive", "sometimes I want to DIE", true},
		{"phrase", "I just want to end my life", true},
		{"self harm", "I might hurt myself tonight", true},
		{"ordinary distress", "I am so stressed about finals", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containsCrisisLanguage(tt.text))
		})
	}
}
