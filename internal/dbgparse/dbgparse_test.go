package dbgparse

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStackTraceSingleFrame(t *testing.T) {
	reply := "$ = main::foo() called from file 'script.pl' line 10\n  DB<1> "
	frames := ParseStackTrace(reply)
	require.Len(t, frames, 1)
	require.Equal(t, ContextScalar, frames[0].Context)
	require.Equal(t, "main::foo()", frames[0].Callee)
	require.Equal(t, "script.pl", frames[0].File)
	require.Equal(t, 10, frames[0].Line)
}

func TestParseStackTraceEveryContextSigil(t *testing.T) {
	reply := strings.Join([]string{
		"@ = main::list() called from file 'a.pl' line 1",
		". = main::proc() called from file 'a.pl' line 2",
		"$ = main::scalarFn() called from file 'a.pl' line 3",
	}, "\n")
	frames := ParseStackTrace(reply)
	require.Len(t, frames, 3)
	require.Equal(t, ContextArray, frames[0].Context)
	require.Equal(t, ContextVoid, frames[1].Context)
	require.Equal(t, ContextScalar, frames[2].Context)
}

func TestParseStackTraceYieldsExactlyKFramesWithTrailingNoise(t *testing.T) {
	for k := 0; k <= 3; k++ {
		var b strings.Builder
		for i := 0; i < k; i++ {
			fmt.Fprintf(&b, "$ = main::f%d() called from file 'a.pl' line %d\n", i, i+1)
		}
		b.WriteString("garbage that is not a frame\nmore garbage\n")
		frames := ParseStackTrace(b.String())
		require.Lenf(t, frames, k, "k=%d", k)
	}
}

// TestStackTraceS5 exercises spec.md scenario S5's single breakpoint stop.
func TestStackTraceS5(t *testing.T) {
	reply := "$ = main::MAIN() called from file 'script.pl' line 10\n  DB<1> "
	frames := ParseStackTrace(reply)
	require.Len(t, frames, 1)
	require.Equal(t, "script.pl", frames[0].File)
	require.Equal(t, 10, frames[0].Line)
}

func TestSplitVariableBlockSingleScalar(t *testing.T) {
	reply := "$x = 42\n  DB<2> "
	entries := SplitVariableBlock(reply)
	require.Len(t, entries, 1)
	require.Equal(t, "$x", entries[0].Name)
	require.Equal(t, "42", entries[0].Value)
}

func TestSplitVariableBlockMultipleEntries(t *testing.T) {
	reply := "$x = 1\n@y = (\n  0  1\n)\n  DB<3> "
	entries := SplitVariableBlock(reply)
	require.Len(t, entries, 2)
	require.Equal(t, "$x", entries[0].Name)
	require.Equal(t, "1", entries[0].Value)
	require.Equal(t, "@y", entries[1].Name)
}

// TestVariableExpansionS6 exercises spec.md scenario S6 end to end:
// splitter, nested array parser, and nested hash parser chained exactly
// as C9 would chain them.
func TestVariableExpansionS6(t *testing.T) {
	reply := "@xs = (\n  0  1\n  1  HASH(0x1)\n     'k' => 'v'\n)\n  DB<2> "

	entries := SplitVariableBlock(reply)
	require.Len(t, entries, 1)
	require.Equal(t, "@xs", entries[0].Name)

	values := ParseNestedArray(entries[0].Value)
	require.Equal(t, []string{"1", "HASH(0x1)\n   'k' => 'v'"}, values)

	require.Equal(t, KindLeaf, KindOf(values[0]))
	require.Equal(t, KindHash, KindOf(values[1]))

	hashEntries := ParseNestedHash(values[1])
	require.Len(t, hashEntries, 1)
	require.Equal(t, "k", hashEntries[0].Key)
	require.Equal(t, "v", hashEntries[0].Value)
}

func TestKindOfRecognizesEveryContainerShape(t *testing.T) {
	require.Equal(t, KindHash, KindOf("HASH(0x1abc)"))
	require.Equal(t, KindHash, KindOf("Foo::Bar=HASH(0x1abc)"))
	require.Equal(t, KindArray, KindOf("ARRAY(0x1abc)"))
	require.Equal(t, KindScalar, KindOf("SCALAR(0x1abc)"))
	require.Equal(t, KindLeaf, KindOf("42"))
}

func TestParseEvaluateResultScalarStripsLeadingZeroIndex(t *testing.T) {
	reply := "0  42\n  DB<4> "
	require.Equal(t, "42", ParseEvaluateResult("$x", reply))
}

func TestParseEvaluateResultArrayKeepsRemainder(t *testing.T) {
	reply := "0  1\n1  2\n  DB<5> "
	require.Equal(t, "0  1\n1  2", ParseEvaluateResult("@xs", reply))
}
