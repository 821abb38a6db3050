package record

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeArg_Transform(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "-Wall", "-Wall"},
		{"empty", "", ""},
		{"single newline", "line1\nline2", `line1\nline2`},
		{"only newline", "\n", `\n`},
		{"consecutive newlines", "a\n\nb", `a\n\nb`},
		{"trailing newline", "end\n", `end\n`},
		{"delimiter passes through", "a||b", "a||b"},
		{"literal backslash-n untouched", `a\nb`, `a\nb`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EscapeArg(tc.in))
		})
	}
}

func TestEscapeArg_OutputHasNoNewlines(t *testing.T) {
	inputs := []string{"a\nb", "\n\n\n", "x", "mixed\ntext\nhere"}
	for _, in := range inputs {
		assert.NotContains(t, EscapeArg(in), "\n")
	}
}

func TestUnescapeArg_RoundTrip(t *testing.T) {
	// Holds for any argument without a pre-existing literal
	// backslash-n.
	inputs := []string{"", "-c", "foo.c", "line1\nline2", "\n", "a||b", "tab\there"}
	for _, in := range inputs {
		assert.Equal(t, in, UnescapeArg(EscapeArg(in)))
	}
}

func TestUnescapeArg_LiteralBackslashAmbiguity(t *testing.T) {
	// A literal backslash-n in the original argument is
	// indistinguishable from an escaped newline, so it comes back as a
	// newline byte. Known limit of the format.
	assert.Equal(t, "a\nb", UnescapeArg(EscapeArg(`a\nb`)))
}

func TestEncode_Concrete(t *testing.T) {
	rec, err := Encode("/home/user/proj", "/usr/bin/cc", []string{"-c", "foo.c", "-o", "foo.o"})
	require.NoError(t, err)
	assert.Equal(t, "/home/user/proj||/usr/bin/cc||-c||foo.c||-o||foo.o\n", rec)
}

func TestEncode_NoArgs(t *testing.T) {
	rec, err := Encode("/home/user/proj", "/usr/bin/cc", nil)
	require.NoError(t, err)
	assert.Equal(t, "/home/user/proj||/usr/bin/cc||\n", rec)
}

func TestEncode_EmbeddedNewline(t *testing.T) {
	rec, err := Encode("/w", "/bin/tool", []string{"line1\nline2"})
	require.NoError(t, err)

	// The middle backslash-n is the two-character escape; the final
	// newline is the one true terminator.
	assert.Equal(t, `/w||/bin/tool||line1\nline2`+"\n", rec)
	assert.Equal(t, 1, strings.Count(rec, "\n"))
}

func TestEncode_EmptyStringArgs(t *testing.T) {
	rec, err := Encode("/w", "/bin/tool", []string{"", ""})
	require.NoError(t, err)
	assert.Equal(t, "/w||/bin/tool||||\n", rec)
}

func TestEncode_CwdAndPathVerbatim(t *testing.T) {
	// cwd and path skip the escaping transform entirely.
	rec, err := Encode("/dir\nwith", "/bin/a||b", []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, "/dir\nwith||/bin/a||b||x\n", rec)
}

func TestEncode_DelimiterCount(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want int
	}{
		{"zero args", nil, 2},
		{"one arg", []string{"-v"}, 2},
		{"four args", []string{"-c", "foo.c", "-o", "foo.o"}, 5},
		{"empty-string args", []string{"", ""}, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := Encode("/home/user/proj", "/usr/bin/cc", tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.want, strings.Count(rec, Delimiter))
		})
	}
}

func TestEncode_SingleTrailingNewline(t *testing.T) {
	args := []string{"a\nb", "plain", "\n"}
	rec, err := Encode("/home/user/proj", "/usr/bin/cc", args)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(rec, "\n"))
	assert.Equal(t, byte('\n'), rec[len(rec)-1])
}

func TestCapacity_Bound(t *testing.T) {
	cases := []struct {
		cwd  string
		path string
		args []string
	}{
		{"/home/user/proj", "/usr/bin/cc", []string{"-c", "foo.c", "-o", "foo.o"}},
		{"/w", "/bin/tool", nil},
		{"/w", "/bin/tool", []string{"a\nb\nc"}},
		{"", "", []string{""}},
	}

	for _, tc := range cases {
		size, err := Capacity(tc.cwd, tc.path, tc.args)
		require.NoError(t, err)

		rec, err := Encode(tc.cwd, tc.path, tc.args)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(rec), size, "encoded record must fit the bound")
	}
}

func TestCapacity_Exact(t *testing.T) {
	// cwd + delim + path + delim + newline, no args.
	size, err := Capacity("/ab", "/cd", nil)
	require.NoError(t, err)
	assert.Equal(t, 3+2+3+2+1, size)
}

func Test_addCap_Overflow(t *testing.T) {
	_, ok := addCap(math.MaxInt, 1)
	assert.False(t, ok)

	got, ok := addCap(math.MaxInt-1, 1)
	assert.True(t, ok)
	assert.Equal(t, math.MaxInt, got)
}

func TestEncode_Golden(t *testing.T) {
	cases := []struct {
		cwd  string
		path string
		args []string
	}{
		{"/home/user/proj", "/usr/bin/cc", []string{"-c", "foo.c", "-o", "foo.o"}},
		{"/srv/build", "/usr/bin/ld", []string{"-o", "app", "foo.o", "bar.o"}},
		{"/tmp/w s", "/usr/bin/clang++", []string{"-DMSG=hello\nworld", "-c", "a.cpp"}},
		{"/opt", "/bin/ar", nil},
	}

	var buf bytes.Buffer
	for _, tc := range cases {
		rec, err := Encode(tc.cwd, tc.path, tc.args)
		require.NoError(t, err)
		buf.WriteString(rec)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "records", buf.Bytes())
}
