package snapshot

import (
	"crypto"
	"crypto/rand"
	"fmt"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	"github.com/fxamacker/cbor/v2"
	"github.com/ldclabs/cose/go/cwt"
	"github.com/veraison/go-cose"
)

// HeaderLabelCWTClaims is the COSE header carrying the seal's CWT claims.
const HeaderLabelCWTClaims int64 = 15

// Claims identify who sealed a snapshot and what it is about.
type Claims struct {
	Issuer  string `cbor:"1,keyasint"`
	Subject string `cbor:"2,keyasint"`
}

// Sealer signs snapshot manifests.
type Sealer struct {
	issuer    string
	cborCodec dtcbor.CBORCodec
}

func NewSealer(issuer string, cborCodec dtcbor.CBORCodec) Sealer {
	return Sealer{issuer: issuer, cborCodec: cborCodec}
}

// Seal returns a COSE Sign1 message over the CBOR encoded manifest.
func (s Sealer) Seal(signer cose.Signer, subject string, m Manifest) ([]byte, error) {
	payload, err := s.cborCodec.MarshalCBOR(m)
	if err != nil {
		return nil, err
	}
	msg := cose.Sign1Message{
		Headers: cose.Headers{
			Protected: cose.ProtectedHeader{
				cose.HeaderLabelAlgorithm: signer.Algorithm(),
				HeaderLabelCWTClaims: map[int64]any{
					int64(cwt.KeyIss): s.issuer,
					int64(cwt.KeySub): subject,
				},
			},
		},
		Payload: payload,
	}
	if err := msg.Sign(rand.Reader, nil, signer); err != nil {
		return nil, err
	}
	return msg.MarshalCBOR()
}

// DecodeSeal returns the unverified manifest and claims of a seal.
func DecodeSeal(codec dtcbor.CBORCodec, seal []byte) (*cose.Sign1Message, Manifest, Claims, error) {
	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(seal); err != nil {
		return nil, Manifest{}, Claims{}, err
	}
	var m Manifest
	if err := codec.UnmarshalInto(msg.Payload, &m); err != nil {
		return nil, Manifest{}, Claims{}, err
	}
	claims, err := claimsFromHeader(msg.Headers.Protected)
	if err != nil {
		return nil, Manifest{}, Claims{}, err
	}
	return &msg, m, claims, nil
}

func claimsFromHeader(h cose.ProtectedHeader) (Claims, error) {
	raw, ok := h[HeaderLabelCWTClaims]
	if !ok {
		return Claims{}, ErrNoSealClaims
	}
	// the decoded header holds a generic map, round trip it into Claims
	b, err := cbor.Marshal(raw)
	if err != nil {
		return Claims{}, err
	}
	var claims Claims
	if err := cbor.Unmarshal(b, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrNoSealClaims, err)
	}
	return claims, nil
}

// VerifySeal checks the seal signature with publicKey and that the sealed
// manifest is the one given.
func VerifySeal(codec dtcbor.CBORCodec, seal []byte, publicKey crypto.PublicKey, m Manifest) (Claims, error) {
	msg, sealed, claims, err := DecodeSeal(codec, seal)
	if err != nil {
		return Claims{}, err
	}
	alg, err := msg.Headers.Protected.Algorithm()
	if err != nil {
		return Claims{}, err
	}
	verifier, err := cose.NewVerifier(alg, publicKey)
	if err != nil {
		return Claims{}, err
	}
	if err := msg.Verify(nil, verifier); err != nil {
		return Claims{}, err
	}

	want, err := codec.MarshalCBOR(m)
	if err != nil {
		return Claims{}, err
	}
	got, err := codec.MarshalCBOR(sealed)
	if err != nil {
		return Claims{}, err
	}
	if string(want) != string(got) {
		return Claims{}, ErrSealMismatch
	}
	return claims, nil
}
