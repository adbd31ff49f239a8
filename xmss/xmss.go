// Package xmss implements the generalized XMSS signature scheme: a
// stateful, synchronized hash-based signature built from a hash-chain
// walker, an incomparable encoding of the message into chain step counts,
// and a sparse Merkle tree binding one-time chain-end public keys to a
// single root.
package xmss

import (
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/wintersig/xmss-go/encoding"
	"github.com/wintersig/xmss-go/internal/prf"
	"github.com/wintersig/xmss-go/merkle"
	"github.com/wintersig/xmss-go/th"
)

// PublicKey represents a generalized XMSS public key.
type PublicKey struct {
	Root      th.Domain
	Parameter th.Params
}

// SecretKey represents a generalized XMSS secret key, including the full
// Merkle tree over the key's activation window.
type SecretKey struct {
	PRFKey          []byte
	Tree            *merkle.HashTree
	Parameter       th.Params
	ActivationEpoch int
	NumActiveEpochs int
}

// Signature represents a generalized XMSS signature for a single epoch.
type Signature struct {
	Path   merkle.HashTreeOpening
	Rho    []byte
	Hashes []th.Domain
}

// GeneralizedXMSS implements the generalized XMSS signature scheme,
// parameterized by a PRF for chain starts, an incomparable encoding of the
// message into per-chain step counts, and a tweakable hash shared by the
// chain walker and the Merkle tree.
type GeneralizedXMSS struct {
	prf         prf.PRF
	encoding    encoding.IncomparableEncoding
	th          th.TweakableHash
	logLifetime int
}

// NewGeneralizedXMSS creates a new generalized XMSS instance. Panics if the
// parameters violate a hard structural bound (lifetime too large, encoding
// base/dimension too large to address with a byte); call
// InternalConsistencyCheck afterwards for a non-panicking report of softer
// parameter mismatches.
func NewGeneralizedXMSS(
	prfImpl prf.PRF,
	enc encoding.IncomparableEncoding,
	thImpl th.TweakableHash,
	logLifetime int,
) *GeneralizedXMSS {
	if logLifetime > 32 {
		panic("xmss: lifetime beyond 2^32 not supported")
	}
	if enc.Base() > 256 {
		panic("xmss: encoding base too large, must be at most 256")
	}
	if enc.Dimension() > 256 {
		panic("xmss: encoding dimension too large, must be at most 256")
	}

	return &GeneralizedXMSS{
		prf:         prfImpl,
		encoding:    enc,
		th:          thImpl,
		logLifetime: logLifetime,
	}
}

// Lifetime returns the maximum number of epochs (2^logLifetime).
func (g *GeneralizedXMSS) Lifetime() uint64 {
	return 1 << g.logLifetime
}

// InternalConsistencyCheck validates the wiring between this instance's PRF,
// encoding, and tweakable hash without panicking, aggregating every
// violation found rather than stopping at the first one. Meant to be called
// once after constructing a non-standard instantiation, not on every
// Sign/Verify call.
func (g *GeneralizedXMSS) InternalConsistencyCheck() error {
	var result *multierror.Error

	if g.encoding.Base() > 256 {
		result = multierror.Append(result, fmt.Errorf("encoding base %d exceeds the 256 a chain index byte can address", g.encoding.Base()))
	}
	if g.encoding.Dimension() > 256 {
		result = multierror.Append(result, fmt.Errorf("encoding dimension %d exceeds the 256 a chain index byte can address", g.encoding.Dimension()))
	}
	if g.encoding.Base()-1 > 255 {
		result = multierror.Append(result, fmt.Errorf("chain length %d-1 does not fit in the pos_in_chain byte", g.encoding.Base()))
	}
	if g.logLifetime > 32 {
		result = multierror.Append(result, fmt.Errorf("log lifetime %d exceeds the 32-bit epoch counter", g.logLifetime))
	}
	if g.th.OutputLen() != g.prf.OutputLen() {
		result = multierror.Append(result, fmt.Errorf("tweakable hash output length %d does not match PRF output length %d; chain starts would be mis-sized", g.th.OutputLen(), g.prf.OutputLen()))
	}

	return result.ErrorOrNil()
}

// KeyGen generates a new key pair active over epochs
// [activationEpoch, activationEpoch+numActiveEpochs).
func (g *GeneralizedXMSS) KeyGen(rng io.Reader, activationEpoch, numActiveEpochs int) (*PublicKey, *SecretKey) {
	if activationEpoch+numActiveEpochs > int(g.Lifetime()) {
		panic("xmss: activation epoch and num active epochs invalid for this lifetime")
	}

	parameter := g.th.RandParameter(rng)
	prfKey := g.prf.KeyGen(rng)

	numChains := g.encoding.Dimension()
	chainLength := g.encoding.Base()

	chainEndsHashes := make([]th.Domain, numActiveEpochs)

	computeEpoch := func(epochOffset int) {
		epoch := activationEpoch + epochOffset

		chainEnds := make([]th.Domain, numChains)
		for chainIndex := 0; chainIndex < numChains; chainIndex++ {
			start := g.prf.Apply(prfKey, uint32(epoch), uint64(chainIndex))
			chainEnds[chainIndex] = th.Chain(
				g.th,
				parameter,
				uint32(epoch),
				uint8(chainIndex),
				0,
				chainLength-1,
				start,
			)
		}

		leafTweak := g.th.TreeTweak(0, uint32(epoch))
		chainEndsHashes[epochOffset] = g.th.Apply(parameter, leafTweak, chainEnds)
	}

	if numActiveEpochs > 10 {
		var wg sync.WaitGroup
		wg.Add(numActiveEpochs)
		for i := 0; i < numActiveEpochs; i++ {
			go func(epochOffset int) {
				defer wg.Done()
				computeEpoch(epochOffset)
			}(i)
		}
		wg.Wait()
	} else {
		for epochOffset := 0; epochOffset < numActiveEpochs; epochOffset++ {
			computeEpoch(epochOffset)
		}
	}

	tree := merkle.NewHashTree(
		rng,
		g.th,
		g.logLifetime,
		activationEpoch,
		parameter,
		chainEndsHashes,
	)

	root := tree.Root()

	pk := &PublicKey{
		Root:      root,
		Parameter: parameter,
	}

	sk := &SecretKey{
		PRFKey:          prfKey,
		Tree:            tree,
		Parameter:       parameter,
		ActivationEpoch: activationEpoch,
		NumActiveEpochs: numActiveEpochs,
	}

	return pk, sk
}

// Sign creates a signature for message at epoch. message must be exactly
// th.MessageLength bytes, and epoch must fall within sk's active window.
func (g *GeneralizedXMSS) Sign(rng io.Reader, sk *SecretKey, epoch uint32, message []byte) (*Signature, error) {
	if len(message) != th.MessageLength {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidMessageLength, len(message), th.MessageLength)
	}
	if int(epoch) < sk.ActivationEpoch || int(epoch) >= sk.ActivationEpoch+sk.NumActiveEpochs {
		return nil, ErrEpochNotActive
	}

	path := sk.Tree.Path(epoch)

	maxTries := g.encoding.MaxTries()
	var codeword encoding.Codeword
	var rho []byte

	for attempts := 0; attempts < maxTries; attempts++ {
		rho = g.encoding.RandRandomness(rng)

		var err error
		codeword, err = g.encoding.Encode(sk.Parameter, message, rho, epoch)
		if err == nil {
			break
		}

		if attempts == maxTries-1 {
			return nil, fmt.Errorf("%w: exhausted %d attempts", ErrUnluckyFailure, maxTries)
		}
	}

	numChains := g.encoding.Dimension()
	hashes := make([]th.Domain, numChains)

	computeChain := func(chainIndex int) {
		start := g.prf.Apply(sk.PRFKey, epoch, uint64(chainIndex))
		steps := int(codeword[chainIndex])
		hashes[chainIndex] = th.Chain(
			g.th,
			sk.Parameter,
			epoch,
			uint8(chainIndex),
			0,
			steps,
			start,
		)
	}

	if numChains > 20 {
		var wg sync.WaitGroup
		wg.Add(numChains)
		for i := 0; i < numChains; i++ {
			go func(chainIndex int) {
				defer wg.Done()
				computeChain(chainIndex)
			}(i)
		}
		wg.Wait()
	} else {
		for chainIndex := 0; chainIndex < numChains; chainIndex++ {
			computeChain(chainIndex)
		}
	}

	return &Signature{
		Path:   path,
		Rho:    rho,
		Hashes: hashes,
	}, nil
}

// Verify checks sig against message at epoch under pk. It never panics and
// never returns an error: any malformed input simply yields false.
func (g *GeneralizedXMSS) Verify(pk *PublicKey, epoch uint32, message []byte, sig *Signature) bool {
	if len(message) != th.MessageLength {
		return false
	}
	if uint64(epoch) >= g.Lifetime() {
		return false
	}

	codeword, err := g.encoding.Encode(pk.Parameter, message, sig.Rho, epoch)
	if err != nil {
		return false
	}

	chainLength := g.encoding.Base()
	numChains := g.encoding.Dimension()

	if len(codeword) != numChains || len(sig.Hashes) != numChains {
		return false
	}

	chainEnds := make([]th.Domain, numChains)
	for chainIndex := 0; chainIndex < numChains; chainIndex++ {
		xi := codeword[chainIndex]
		if int(xi) >= chainLength {
			return false
		}
		steps := chainLength - 1 - int(xi)
		chainEnds[chainIndex] = th.Chain(
			g.th,
			pk.Parameter,
			epoch,
			uint8(chainIndex),
			uint8(xi),
			steps,
			sig.Hashes[chainIndex],
		)
	}

	return merkle.VerifyPath(
		g.th,
		pk.Parameter,
		pk.Root,
		epoch,
		chainEnds,
		sig.Path,
	)
}
