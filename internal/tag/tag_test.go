package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFile_Canonicalization(t *testing.T) {
	a := FromFile("a/./b//c/../d")
	b := FromFile("a/b/d")
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
}

func TestFromFile_LeadingDotSlash(t *testing.T) {
	assert.True(t, FromFile("./src/a.cpp").Equal(FromFile("src/a.cpp")))
}

func TestFromName_DistinctNamesDistinctTags(t *testing.T) {
	a := FromName("filetype:.cpp")
	b := FromName("filetype:.h")
	assert.False(t, a.Equal(b))
}

func TestTag_Less_TotalOrder(t *testing.T) {
	tags := []Tag{FromName("c"), FromName("a"), FromName("b")}
	// Less must be irreflexive and must not contradict itself either way.
	for i := range tags {
		for j := range tags {
			if i == j {
				require.False(t, tags[i].Less(tags[j]))
				continue
			}
			if tags[i].Less(tags[j]) {
				assert.False(t, tags[j].Less(tags[i]))
			}
		}
	}
}

func TestTag_String_UsesName(t *testing.T) {
	tg := FromName("bin:myprog")
	assert.Equal(t, "bin:myprog", tg.String())
}

func TestCanonicalize(t *testing.T) {
	cases := map[string]string{
		"":         ".",
		".":        ".",
		"./a":      "a",
		"a/./b":    "a/b",
		"a//b":     "a/b",
		"a/b/../c": "a/c",
		"/a/b":     "a/b",
	}
	for in, want := range cases {
		assert.Equal(t, want, Canonicalize(in), "input %q", in)
	}
}
