// Package crypto holds the message authentication used to sign requests
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrEmptyHMACKey is returned when a HMAC is requested with a zero length key
var ErrEmptyHMACKey = errors.New("HMAC key is empty")

// HMACSHA256 returns the HMAC-SHA256 of input keyed by key
func HMACSHA256(input, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyHMACKey
	}
	h := hmac.New(sha256.New, key)
	if _, err := h.Write(input); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// HMACSHA256Hex returns the lowercase hex encoding of HMACSHA256
func HMACSHA256Hex(input, key []byte) (string, error) {
	mac, err := HMACSHA256(input, key)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(mac), nil
}
