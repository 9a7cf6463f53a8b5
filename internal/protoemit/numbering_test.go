package protoemit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagNumbers(t *testing.T) {
	names := make([]string, 500)
	for i := range names {
		names[i] = fmt.Sprintf("field_%d", i)
	}
	tags := tagNumbers(names)
	require.Len(t, tags, len(names))

	seen := make(map[int]bool, len(tags))
	for i, tag := range tags {
		assert.False(t, seen[tag], "tag %d reused for %s", tag, names[i])
		seen[tag] = true
		assert.GreaterOrEqual(t, tag, 1)
		assert.LessOrEqual(t, tag, maxTag)
		assert.False(t, tag >= reservedTagStart && tag <= reservedTagEnd, "tag %d is reserved", tag)
	}
}

func TestTagNumbersIndependentOfOrder(t *testing.T) {
	forward := tagNumbers([]string{"id", "name", "role", "score"})
	backward := tagNumbers([]string{"score", "role", "name", "id"})
	assert.Equal(t, forward[0], backward[3])
	assert.Equal(t, forward[1], backward[2])
	assert.Equal(t, forward[2], backward[1])
	assert.Equal(t, forward[3], backward[0])
}

func TestTagNumbersEmpty(t *testing.T) {
	assert.Empty(t, tagNumbers(nil))
}

func TestFieldName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "home_planet", fieldName("homePlanet", used))
	assert.Equal(t, "from", fieldName("from_", used))
	assert.Equal(t, "home_planet_2", fieldName("home_planet", used))
}
