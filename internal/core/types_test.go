package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeClaim(t *testing.T) {
	got, err := NormalizeClaim("  The moon is made of cheese \n")
	require.NoError(t, err)
	assert.Equal(t, "The moon is made of cheese", got)

	_, err = NormalizeClaim(" \t\n ")
	assert.ErrorIs(t, err, ErrEmptyClaim)

	_, err = NormalizeClaim("")
	assert.ErrorIs(t, err, ErrEmptyClaim)
}

func TestBandForScore(t *testing.T) {
	cases := map[int]TrustBand{
		0:   TrustBandLikelyFake,
		39:  TrustBandLikelyFake,
		40:  TrustBandMixed,
		69:  TrustBandMixed,
		70:  TrustBandLikelyTrue,
		100: TrustBandLikelyTrue,
	}
	for score, want := range cases {
		assert.Equal(t, want, BandForScore(score), "score %d", score)
	}
}
