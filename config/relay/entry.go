package relay

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/flashbots/fee-manager/types"
	"github.com/flashbots/go-boost-utils/bls"
)

var (
	// ErrMissingRelayPubKey is returned if a new Entry has no public key.
	ErrMissingRelayPubKey = fmt.Errorf("missing relay public key")
	// ErrInvalidRelayURL is returned if a new Entry has malformed relayURL.
	ErrInvalidRelayURL = fmt.Errorf("invalid relay url")
	// ErrPointAtInfinityPubkey is returned if a new Entry has an all-zero public key.
	ErrPointAtInfinityPubkey = fmt.Errorf("relay public key cannot be the point-at-infinity")
	// ErrDuplicateRelayURL is returned if two entries of one set normalize to the same URL.
	ErrDuplicateRelayURL = fmt.Errorf("duplicate relay url")
)

// Entry is one relay override inside a relay set.
//
// The URL is the identity of the entry within its set. The optional fields
// override the enclosing scope for this relay only. Disabled entries are kept
// in storage but never emitted.
type Entry struct {
	URL          string
	PublicKey    types.PublicKey
	FeeRecipient types.Optional[string]
	GasLimit     types.Optional[string]
	MinValue     types.Optional[string]
	Disabled     bool
}

func (r Entry) String() string {
	return r.URL
}

// NewRelayEntry validates relayURL and publicKey and returns an entry keyed by the normalized URL.
func NewRelayEntry(relayURL, publicKey string) (Entry, error) {
	normalized, err := NormalizeURL(relayURL)
	if err != nil {
		return Entry{}, err
	}

	if strings.TrimSpace(publicKey) == "" {
		return Entry{}, fmt.Errorf("%w: %s", ErrMissingRelayPubKey, normalized)
	}

	pubKey, err := types.ParsePublicKey(publicKey)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %s", err, normalized)
	}

	// Check if the public key is the point-at-infinity.
	if pubKey.IsInfinity() {
		return Entry{}, fmt.Errorf("%w: %s", ErrPointAtInfinityPubkey, normalized)
	}

	if _, err := bls.PublicKeyFromBytes(pubKey[:]); err != nil {
		return Entry{}, fmt.Errorf("%w: not a BLS public key: %w: %s", types.ErrInvalidPublicKey, err, normalized)
	}

	return Entry{
		URL:       normalized,
		PublicKey: pubKey,
	}, nil
}

// WithOverrides validates and attaches the per-relay override fields.
func (r Entry) WithOverrides(feeRecipient, gasLimit, minValue types.Optional[string]) (Entry, error) {
	var err error
	if r.FeeRecipient, err = feeRecipient.Map(types.NormalizeAddress); err != nil {
		return Entry{}, fmt.Errorf("relay %s: %w", r.URL, err)
	}
	if r.GasLimit, err = gasLimit.Map(types.ParseGasLimit); err != nil {
		return Entry{}, fmt.Errorf("relay %s: %w", r.URL, err)
	}
	if r.MinValue, err = minValue.Map(types.ParseMinValue); err != nil {
		return Entry{}, fmt.Errorf("relay %s: %w", r.URL, err)
	}
	return r, nil
}

// NormalizeURL checks that relayURL is an absolute http(s) URL and returns it
// trimmed. The URL is otherwise kept as given since it is the merge key
// consumers see.
func NormalizeURL(relayURL string) (string, error) {
	relayURL = strings.TrimSpace(relayURL)

	parsedURL, err := url.ParseRequestURI(relayURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w: %s", ErrInvalidRelayURL, err, relayURL)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme: %s", ErrInvalidRelayURL, relayURL)
	}

	if parsedURL.Host == "" {
		return "", fmt.Errorf("%w: missing host: %s", ErrInvalidRelayURL, relayURL)
	}

	return relayURL, nil
}
