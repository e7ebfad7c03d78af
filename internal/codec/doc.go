// Package codec maps payload format names to encode/decode function pairs.
//
// A Registry is owned by a single queue store; there is no process-wide
// registry. Formats without a registered pair fall back to the default codec,
// which passes strings and byte slices through, stores nil as SQL NULL, and
// JSON-encodes everything else. The default decoder never fails: payloads that
// are not valid JSON come back as plain strings.
package codec
