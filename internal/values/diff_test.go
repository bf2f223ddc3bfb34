package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_Identical(t *testing.T) {
	doc := completeDoc()
	live, err := doc.Marshal()
	require.NoError(t, err)

	diff, err := Diff(live, doc, false)
	require.NoError(t, err)
	assert.Empty(t, diff, "identical values should produce no diff")
}

func TestDiff_TagChange(t *testing.T) {
	deployed := WriteImageFields(completeDoc(), "acr.io/deep-research", "1712345678000")
	live, err := deployed.Marshal()
	require.NoError(t, err)

	diff, err := Diff(live, completeDoc(), false)
	require.NoError(t, err)
	assert.NotEmpty(t, diff, "changed tag should produce a diff")
	assert.Contains(t, diff, "deadbee")
}

func TestDiff_NotInstalled(t *testing.T) {
	diff, err := Diff(nil, completeDoc(), false)
	require.NoError(t, err)
	assert.Contains(t, diff, "deadbee")
}
