package moderation

import (
	"testing"

	"support-chat-be/internal/constant"

	"github.com/stretchr/testify/assert"
)

func TestCheckBlocksDenylistedTerms(t *testing.T) {
	f := NewFilter(constant.BlockedWords)

	cases := []string{
		"You are STUPID honestly",
		"stupid",
		"what an IdIoT move",
		"please just shut up now",
		"prefix-badword-suffix",
	}
	for _, input := range cases {
		assert.Equal(t, Blocked, f.Check(input), "input %q should be blocked", input)
	}
}

func TestCheckAllowsCleanInput(t *testing.T) {
	f := NewFilter(constant.BlockedWords)

	assert.Equal(t, Allowed, f.Check("hello, I need help with my visa"))
	assert.Equal(t, Allowed, f.Check(""))
	assert.Equal(t, Allowed, f.Check("can I talk to an agent?"))
}

func TestCheckCaseInsensitiveDenylist(t *testing.T) {
	f := NewFilter([]string{"BadWord"})

	assert.Equal(t, Blocked, f.Check("contains badword inside"))
	assert.Equal(t, Blocked, f.Check("BADWORD"))
}
