package filekeep

import (
	"crypto/hmac"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	stowrysign "github.com/sagarc03/stowry-go"
)

// MaxExpiresSeconds bounds the validity of a signed URL.
const MaxExpiresSeconds = 604800 // 7 days

// SecretStore looks up the secret key for an access key.
type SecretStore interface {
	// Lookup returns the secret key, or an error wrapping ErrUnauthorized if the
	// access key is unknown.
	Lookup(accessKey string) (string, error)
}

// PresignQuery returns the query parameters of a natively signed URL for
// method and path, valid for ttl from now.
func PresignQuery(accessKey, secretKey, method, path string, now time.Time, ttl time.Duration) url.Values {
	timestamp := now.Unix()
	expires := int64(ttl / time.Second)
	sig := stowrysign.Sign(secretKey, method, path, timestamp, expires)

	query := url.Values{}
	query.Set(stowrysign.StowryCredentialParam, accessKey)
	query.Set(stowrysign.StowryDateParam, strconv.FormatInt(timestamp, 10))
	query.Set(stowrysign.StowryExpiresParam, strconv.FormatInt(expires, 10))
	query.Set(stowrysign.StowrySignatureParam, sig)
	return query
}

// SignatureVerifier verifies natively signed URLs.
type SignatureVerifier struct {
	store SecretStore
	now   func() time.Time
}

func NewSignatureVerifier(store SecretStore) *SignatureVerifier {
	return &SignatureVerifier{store: store, now: time.Now}
}

// Verify checks the signature carried in the request's query string against
// the request method and path.
//
// Required query parameters:
//   - X-Stowry-Credential: access key
//   - X-Stowry-Date: unix timestamp of signing
//   - X-Stowry-Expires: validity in seconds (1-604800)
//   - X-Stowry-Signature: hex signature
//
// All failures wrap ErrUnauthorized.
func (v *SignatureVerifier) Verify(r *http.Request) error {
	query := r.URL.Query()

	accessKey := query.Get(stowrysign.StowryCredentialParam)
	dateStr := query.Get(stowrysign.StowryDateParam)
	expiresStr := query.Get(stowrysign.StowryExpiresParam)
	signature := query.Get(stowrysign.StowrySignatureParam)

	if accessKey == "" || dateStr == "" || expiresStr == "" || signature == "" {
		return fmt.Errorf("missing required signature parameters: %w", ErrUnauthorized)
	}

	timestamp, err := strconv.ParseInt(dateStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid date: %w", ErrUnauthorized)
	}

	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil || expires <= 0 || expires > MaxExpiresSeconds {
		return fmt.Errorf("invalid expires: must be between 1 and %d: %w", MaxExpiresSeconds, ErrUnauthorized)
	}

	if v.now().After(time.Unix(timestamp, 0).Add(time.Duration(expires) * time.Second)) {
		return fmt.Errorf("signature expired: %w", ErrUnauthorized)
	}

	secretKey, err := v.store.Lookup(accessKey)
	if err != nil {
		return fmt.Errorf("invalid access key: %w", err)
	}

	expected := stowrysign.Sign(secretKey, r.Method, r.URL.Path, timestamp, expires)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("signature mismatch: %w", ErrUnauthorized)
	}

	return nil
}
