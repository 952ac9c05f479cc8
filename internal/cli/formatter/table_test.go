package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_AlignsStyledCells(t *testing.T) {
	out := stripANSI(Table{
		Headers: []string{"NAME", "TIME"},
		Rows: [][]string{
			{Bold("Website"), "2h"},
			{"API", "45m"},
		},
		Align:  []Align{AlignLeft, AlignRight},
		Footer: []string{"Total", "2h 45m"},
	}.Render())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "NAME       TIME", lines[0])
	assert.Equal(t, "Website      2h", lines[2])
	assert.Equal(t, "API         45m", lines[3])
	assert.Equal(t, "Total    2h 45m", lines[5])
	assert.Equal(t, lines[1], lines[4])
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Empty(t, RenderTable(nil, nil))
	out := stripANSI(RenderTable([]string{"A"}, nil))
	assert.Equal(t, "A\n─\n", out)
}
