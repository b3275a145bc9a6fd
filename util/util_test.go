package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsJackFile(t *testing.T) {
	assert.True(t, IsJackFile("xxx.jack"))
	assert.True(t, IsJackFile("dir/Main.jack"))
	assert.False(t, IsJackFile("xxx.j1ack1"))
	assert.False(t, IsJackFile("xxx.jack.bak"))
	assert.False(t, IsJackFile("jack"))
}

func TestReplaceExtension(t *testing.T) {
	assert.Equal(t, "Main.vm", ReplaceExtension("Main.jack", ".vm"))
	assert.Equal(t, "a/b.c/Main.vm", ReplaceExtension("a/b.c/Main.jack", ".vm"))
	assert.Equal(t, "Main.vm", ReplaceExtension("Main", ".vm"))
}

func TestIsNumberString(t *testing.T) {
	assert.True(t, IsNumberString("0"))
	assert.True(t, IsNumberString("32767"))
	assert.False(t, IsNumberString(""))
	assert.False(t, IsNumberString("-1"))
	assert.False(t, IsNumberString("1a"))
}

func TestIsLabelName(t *testing.T) {
	for _, name := range []string{"IF_TRUE0", "Main.main", "a:b", "f$ret.1", "_x", ".L0"} {
		assert.True(t, IsLabelName(name), name)
	}
	for _, name := range []string{"", "1abc", "a-b", "a b", "a/b", "-a", "é"} {
		assert.False(t, IsLabelName(name), name)
	}
}

func TestByteClasses(t *testing.T) {
	assert.True(t, IsLetterOrUnderscore('_'))
	assert.True(t, IsLetterOrUnderscore('Z'))
	assert.False(t, IsLetterOrUnderscore('9'))
	assert.True(t, IsLetterOrUnderscoreOrNumber('9'))
	assert.False(t, IsLetterOrUnderscoreOrNumber('-'))
}
