package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupDialect(t *testing.T) {
	tests := []struct {
		name      string
		multiline bool
		column    ColumnDefault
		clearE402 bool
	}{
		{DialectLine, false, ColumnAbsent, false},
		{DialectBlock, true, ColumnAbsent, false},
		{DialectBlockZero, true, ColumnZero, false},
		{DialectCompat, true, ColumnZero, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := LookupDialect(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.multiline, p.Multiline)
			assert.Equal(t, tt.column, p.SyntaxColumn)
			assert.Equal(t, tt.clearE402, p.Overrides["E402"].ClearNear)
		})
	}
}

func TestLookupDialect_Unknown(t *testing.T) {
	_, err := LookupDialect("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "block")
}

func TestLookupDialect_ReturnsCopy(t *testing.T) {
	p, err := LookupDialect(DialectCompat)
	require.NoError(t, err)
	delete(p.Overrides, "E402")

	again, err := LookupDialect(DialectCompat)
	require.NoError(t, err)
	assert.True(t, again.Overrides["E402"].ClearNear)
}

func TestDialects_Sorted(t *testing.T) {
	assert.Equal(t, []string{"block", "block-zero", "compat", "line"}, Dialects())
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.True(t, p.Multiline)
	assert.Equal(t, ColumnAbsent, p.SyntaxColumn)
}

func TestFilter(t *testing.T) {
	raw := "a.py:1:1:E101::one\na.py:2:1:W201::two\na.py:3: syntax\na.py: failed\n"
	records := Parse(raw, 1, 0)
	require.Len(t, records, 4)

	kept := Filter(records, []string{"E1"})
	require.Len(t, kept, 3)
	assert.Equal(t, "W201", kept[0].Code)
	assert.Equal(t, KindSyntaxError, kept[1].Kind)
	assert.Equal(t, KindUnexpected, kept[2].Kind)

	assert.Len(t, Filter(records, nil), 4)
	assert.Len(t, Filter(records, []string{"W201", "E101"}), 2)
	assert.Len(t, records, 4, "input must not be modified")
}

func TestCountBySeverity(t *testing.T) {
	records := Parse("a.py:1:1:E101::one\na.py:2:1:W201::two\na.py:3:1:I101::three\n", 1, 0)

	errs, warns := CountBySeverity(records)
	assert.Equal(t, 1, errs)
	assert.Equal(t, 2, warns)
}

func TestHasOnlyUnexpected(t *testing.T) {
	assert.False(t, HasOnlyUnexpected(nil))
	assert.True(t, HasOnlyUnexpected(Parse("a.py: failed", 1, 0)))
	assert.False(t, HasOnlyUnexpected(Parse("a.py: failed\na.py:1:1:E101::x", 1, 0)))
}

func TestParseSeverity(t *testing.T) {
	sev, err := ParseSeverity("warning")
	require.NoError(t, err)
	assert.Equal(t, Warning, sev)

	_, err = ParseSeverity("fatal")
	assert.Error(t, err)
}
