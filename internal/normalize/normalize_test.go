package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/techjusticelab/opinion-ingest/internal/normalize"
)

func TestCaseFileID(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain digits", "694235", "694235"},
		{"dash suffix", "69423-5", "694235"},
		{"division suffix", "69423-5-I", "694235"},
		{"no digits", "abc", ""},
		{"empty", "", ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, normalize.CaseFileID(c.in))
		})
	}
}

func TestCaseFileID_Law(t *testing.T) {
	a := normalize.CaseFileID("69423-5")
	b := normalize.CaseFileID("694235")
	c := normalize.CaseFileID("69423-5-I")
	assert.Equal(t, a, b)
	assert.Equal(t, b, c)
	assert.Equal(t, "694235", a)
}
