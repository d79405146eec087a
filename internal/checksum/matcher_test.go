package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigestStableAcrossFilenames(t *testing.T) {
	a := Digest([]byte("Date;Libellé;Montant\n"))
	b := Digest([]byte("Date;Libellé;Montant\n"))
	c := Digest([]byte("Date;Libellé;Montant\n extra"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestRegistryFlagsRepeats(t *testing.T) {
	r := NewRegistry()
	d := Digest([]byte("content"))

	first, seen := r.Check(d, "mars.csv")
	assert.False(t, seen)
	assert.Empty(t, first)

	first, seen = r.Check(d, "mars-copy.csv")
	assert.True(t, seen)
	assert.Equal(t, "mars.csv", first)
}
