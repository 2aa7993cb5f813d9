package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg := encode("remote-desk", 42, 9001, "1.0.0")
	assert.Equal(t, "remote-desk|42|9001|1.0.0", msg)

	info, ok := decode(msg)
	assert.True(t, ok)
	assert.Equal(t, Info{Type: "remote-desk", ID: 42, Port: 9001, Version: "1.0.0"}, info)
}

func TestDecodeRejectsMalformedFragments(t *testing.T) {
	cases := []string{
		"",
		"only|three|fields",
		"too|many|fields|here|extra",
		"remote-desk|notanumber|9001|1.0.0",
		"remote-desk|42|notaport|1.0.0",
	}
	for _, c := range cases {
		_, ok := decode(c)
		assert.False(t, ok, "expected decode failure for %q", c)
	}
}
