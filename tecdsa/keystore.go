package tecdsa

import (
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tokenized/cl-ecdsa/curve"
)

// KeyStore is what a party persists after key-generation completes: its
// own secret share, the matching public share, and the joint public key
// both shares add up to, matching spec.md 3's KeyStore row.
type KeyStore struct {
	MyShare  curve.Scalar
	MyPublic curve.Point
	Joint    curve.Point
}

type keyStoreJSON struct {
	SecretShare    string `json:"secret_share"`
	PublicShare    string `json:"public_share"`
	JointPublicKey string `json:"joint_public_key"`
}

// MarshalJSON encodes the key store as hex fields, matching spec.md 6's
// persisted-key-store shape.
func (k KeyStore) MarshalJSON() ([]byte, error) {
	return json.Marshal(keyStoreJSON{
		SecretShare:    hex.EncodeToString(k.MyShare.Bytes()),
		PublicShare:    hex.EncodeToString(k.MyPublic.Bytes()),
		JointPublicKey: hex.EncodeToString(k.Joint.Bytes()),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (k *KeyStore) UnmarshalJSON(data []byte) error {
	var raw keyStoreJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "unmarshal key store")
	}

	shareBytes, err := hex.DecodeString(raw.SecretShare)
	if err != nil {
		return errors.Wrap(err, "decode secret_share")
	}
	k.MyShare = curve.ScalarFromBytes(shareBytes)

	publicBytes, err := hex.DecodeString(raw.PublicShare)
	if err != nil {
		return errors.Wrap(err, "decode public_share")
	}
	myPublic, err := curve.PointFromBytes(publicBytes)
	if err != nil {
		return errors.Wrap(err, "decode public_share point")
	}
	k.MyPublic = myPublic

	jointBytes, err := hex.DecodeString(raw.JointPublicKey)
	if err != nil {
		return errors.Wrap(err, "decode joint_public_key")
	}
	joint, err := curve.PointFromBytes(jointBytes)
	if err != nil {
		return errors.Wrap(err, "decode joint_public_key point")
	}
	k.Joint = joint

	return nil
}
