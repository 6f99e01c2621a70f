// Package richtext rewrites attachment references embedded in rich-text
// bodies. Inside one install a reference is a token MAC-signed under the
// install's secret key; in a portable archive it is the bare (type, id)
// pair, which a different install can re-sign under its own key.
package richtext

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

const referencePurpose = "attachment-reference"

// Signer mints and verifies the signed reference tokens embedded in
// rich-text attachment nodes. Tokens signed by one install cannot be
// verified by another and must never be written to an archive.
type Signer struct {
	key []byte
}

func NewSigner(key []byte) *Signer {
	return &Signer{key: key}
}

type referenceClaims struct {
	RecordType string `json:"rt"`
	RecordID   string `json:"ri"`
	Purpose    string `json:"pur"`
	jwt.RegisteredClaims
}

func (s *Signer) Sign(recordType, recordID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, referenceClaims{
		RecordType: recordType,
		RecordID:   recordID,
		Purpose:    referencePurpose,
	})
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign reference %s/%s: %w", recordType, recordID, err)
	}
	return signed, nil
}

func (s *Signer) Verify(tokenStr string) (recordType, recordID string, err error) {
	claims := &referenceClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return "", "", err
	}
	if !token.Valid || claims.Purpose != referencePurpose {
		return "", "", errors.New("invalid reference token")
	}
	return claims.RecordType, claims.RecordID, nil
}
