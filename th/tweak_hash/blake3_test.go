package tweak_hash

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wintersig/xmss-go/th"
)

func TestBlake3Configurations(t *testing.T) {
	configs := []struct {
		name     string
		paramLen int
		hashLen  int
	}{
		{"128_128", 16, 16},
		{"128_192", 16, 24},
		{"192_192", 24, 24},
		{"wide_output", 16, 64},
	}

	for _, cfg := range configs {
		t.Run(cfg.name, func(t *testing.T) {
			bh := NewBlake3TweakableHash(cfg.paramLen, cfg.hashLen)

			param := bh.RandParameter(rand.Reader)
			msg1 := bh.RandDomain(rand.Reader)
			msg2 := bh.RandDomain(rand.Reader)

			treeTweak := bh.TreeTweak(0, 3)
			result := bh.Apply(param, treeTweak, []th.Domain{msg1, msg2})
			require.Len(t, result, cfg.hashLen)

			chainTweak := bh.ChainTweak(2, 3, 4)
			result = bh.Apply(param, chainTweak, []th.Domain{msg1, msg2})
			require.Len(t, result, cfg.hashLen)
		})
	}
}

func TestBlake3Deterministic(t *testing.T) {
	bh := NewBlake3TweakableHash(24, 24)
	param := bh.RandParameter(rand.Reader)
	msg := bh.RandDomain(rand.Reader)
	tw := bh.ChainTweak(0, 0, 0)

	r1 := bh.Apply(param, tw, []th.Domain{msg})
	r2 := bh.Apply(param, tw, []th.Domain{msg})
	require.True(t, bytes.Equal(r1, r2), "BLAKE3 tweakable hash is not deterministic")
}

func TestBlake3DistinctTweaksDiffer(t *testing.T) {
	bh := NewBlake3TweakableHash(24, 24)
	param := bh.RandParameter(rand.Reader)
	msg := bh.RandDomain(rand.Reader)

	r1 := bh.Apply(param, bh.ChainTweak(0, 0, 0), []th.Domain{msg})
	r2 := bh.Apply(param, bh.ChainTweak(0, 0, 1), []th.Domain{msg})
	require.False(t, bytes.Equal(r1, r2))
}

func BenchmarkBlake3Apply(b *testing.B) {
	bh := NewBlake3TweakableHash(24, 24)
	param := bh.RandParameter(rand.Reader)
	msg1 := bh.RandDomain(rand.Reader)
	msg2 := bh.RandDomain(rand.Reader)
	tw := bh.ChainTweak(0, 0, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bh.Apply(param, tw, []th.Domain{msg1, msg2})
	}
}
