package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows future algorithm migration.
const (
	DomainRequest = "qre/request/v1"
	DomainCircuit = "qre/circuit/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RequestID computes the content-addressed ID of an estimate request.
// The request object is built by the caller from the program, hardware,
// budget and estimator options. Identical requests hash identically across
// runs, which is what the store uses as its cache key.
func RequestID(request Object) (string, error) {
	obj := Object{
		"estimator_version": String(EstimatorVersion),
		"request":           request,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("RequestID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRequest, canonical), nil
}

// CircuitHash computes the content hash of a circuit's operation list.
func CircuitHash(c Circuit) (string, error) {
	canonical, err := MarshalCanonical(c.Canonical())
	if err != nil {
		return "", fmt.Errorf("CircuitHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCircuit, canonical), nil
}

// MustRequestID is like RequestID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustRequestID(request Object) string {
	id, err := RequestID(request)
	if err != nil {
		panic(err)
	}
	return id
}
