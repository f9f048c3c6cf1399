package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCitations(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no markers", "The statute applies.", "The statute applies."},
		{"file search annotation", "The statute applies.【4:0†source】", "The statute applies."},
		{"numeric reference", "The statute applies.[1]", "The statute applies."},
		{"compound reference", "See the gazette.[4:0†gazette.pdf]", "See the gazette."},
		{"multiple markers", "A.【1:0†a】 B.【2:1†b】", "A. B."},
		{"plain brackets survive", "Section [unclear] applies.", "Section [unclear] applies."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCitations(tt.in))
		})
	}
}
