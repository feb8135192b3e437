package model

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestGenresDropBlanksAndRepeats(t *testing.T) {
    g := NewGenres("Jazz", " ", "Rock", "Jazz", "Folk ")
    assert.Equal(t, Genres{"Jazz", "Rock", "Folk"}, g)
    assert.True(t, g.Contains("Rock"))
    assert.False(t, g.Contains("rock"))
    assert.False(t, Genres(nil).Contains("Jazz"))
}

func TestGenresScanValue(t *testing.T) {
    v, err := NewGenres("Jazz", "Rock").Value()
    require.NoError(t, err)
    assert.Equal(t, "Jazz,Rock", v)

    var g Genres
    require.NoError(t, g.Scan([]byte("Blues,,Blues,Soul")))
    assert.Equal(t, Genres{"Blues", "Soul"}, g)
}
