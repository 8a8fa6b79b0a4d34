package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Joe's Auto & Repair!!", "joes-auto-repair"},
		{"Default Garage", "default-garage"},
		{"  A1  Motors  ", "a1-motors"},
		{"---", ""},
		{"ÜberTuning", "bertuning"}, // non-ASCII collapses like any other symbol
		{"Já's", "j-s"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), tc.in)
	}
}
