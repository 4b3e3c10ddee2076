package clipboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_KeepsLastWrite(t *testing.T) {
	m := &Memory{}
	require.NoError(t, m.WriteAll("eng_first"))
	require.NoError(t, m.WriteAll("eng_second"))
	assert.Equal(t, "eng_second", m.Text())
}

func TestDefault_ReturnsWriter(t *testing.T) {
	w, _ := Default()
	assert.NotNil(t, w)
}
