package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainWorkload = "contend/workload/v1"
	DomainSchedule = "contend/schedule/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	d := NewDigester(domain)
	d.h.Write(data)
	return d.Sum()
}

// Digester hashes a canonical JSON document written to it piece by piece,
// so large values never need to be held in memory whole. Callers emit the
// structural bytes themselves with WriteRaw and each leaf value with
// WriteValue; the result equals Digest(domain, v) when the pieces spell out
// MarshalCanonical(v).
type Digester struct {
	h hash.Hash
}

// NewDigester starts a hash already holding the domain prefix.
func NewDigester(domain string) *Digester {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	return &Digester{h: h}
}

// WriteRaw appends s verbatim. It must be valid canonical JSON syntax.
func (d *Digester) WriteRaw(s string) {
	io.WriteString(d.h, s)
}

// WriteValue appends the canonical JSON of v.
func (d *Digester) WriteValue(v any) error {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return err
	}
	d.h.Write(canonical)
	return nil
}

// Sum returns the hex digest of everything written so far.
func (d *Digester) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// Digest canonicalizes v and hashes it under domain.
// Two values produce the same digest iff their canonical JSON is identical.
func Digest(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", domain, err)
	}
	return hashWithDomain(domain, canonical), nil
}

// ScheduleDigest identifies a schedule independent of point order.
func ScheduleDigest(s Schedule) (string, error) {
	points := make([]any, 0, len(s))
	for _, p := range s.Sorted() {
		points = append(points, map[string]any{
			"marker": p.Marker,
			"rate":   p.Rate,
		})
	}
	return Digest(DomainSchedule, points)
}
