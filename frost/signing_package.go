package frost

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// SigningPackage is the coordinator-built message (spec §3) that bundles
// the message to sign with every participating signer's round-1
// commitments. The coordinator constructs one SigningPackage per message
// after gathering commitments and broadcasts it to every signing
// participant, who uses it to compute their round-2 share.
type SigningPackage struct {
	Commitments map[Identifier]*NonceCommitment
	Message     []byte
}

// CommitmentList returns the package's commitments as a slice sorted in
// ascending order by identifier, the order Signer.Round2 and
// Coordinator.Aggregate require.
func (sp *SigningPackage) CommitmentList() []*NonceCommitment {
	ids := make([]Identifier, 0, len(sp.Commitments))
	for id := range sp.Commitments {
		ids = append(ids, id)
	}
	sortIdentifiers(ids)

	list := make([]*NonceCommitment, len(ids))
	for i, id := range ids {
		list[i] = sp.Commitments[id]
	}
	return list
}

type signingPackageJSON struct {
	Commitments map[Identifier]nonceCommitmentJSON `json:"commitments"`
	Message     string                              `json:"message"`
}

// EncodeSigningPackage renders a SigningPackage to JSON using ciphersuite's
// point encoding for every commitment it carries.
func EncodeSigningPackage(ciphersuite Ciphersuite, sp *SigningPackage) ([]byte, error) {
	curve := ciphersuite.Curve()

	wire := signingPackageJSON{
		Commitments: make(map[Identifier]nonceCommitmentJSON, len(sp.Commitments)),
		Message:     hex.EncodeToString(sp.Message),
	}
	for id, c := range sp.Commitments {
		wire.Commitments[id] = nonceCommitmentJSON{
			Hiding:  hex.EncodeToString(curve.SerializePoint(c.Hiding())),
			Binding: hex.EncodeToString(curve.SerializePoint(c.Binding())),
		}
	}

	return json.Marshal(wire)
}

// DecodeSigningPackage parses a payload produced by EncodeSigningPackage.
func DecodeSigningPackage(ciphersuite Ciphersuite, data []byte) (*SigningPackage, error) {
	var wire signingPackageJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("invalid signing package JSON: %w", err)
	}

	message, err := hex.DecodeString(wire.Message)
	if err != nil {
		return nil, fmt.Errorf("invalid signing package message hex: %w", err)
	}

	curve := ciphersuite.Curve()
	commitments := make(map[Identifier]*NonceCommitment, len(wire.Commitments))
	for id, c := range wire.Commitments {
		hidingBytes, err := hex.DecodeString(c.Hiding)
		if err != nil {
			return nil, fmt.Errorf("invalid hiding commitment hex for signer [%s]: %w", id, err)
		}
		bindingBytes, err := hex.DecodeString(c.Binding)
		if err != nil {
			return nil, fmt.Errorf("invalid binding commitment hex for signer [%s]: %w", id, err)
		}
		hiding := curve.DeserializePoint(hidingBytes)
		if hiding == nil {
			return nil, fmt.Errorf("hiding commitment for signer [%s] is not a valid point", id)
		}
		binding := curve.DeserializePoint(bindingBytes)
		if binding == nil {
			return nil, fmt.Errorf("binding commitment for signer [%s] is not a valid point", id)
		}
		commitments[id] = NewNonceCommitment(id, hiding, binding)
	}

	return &SigningPackage{Commitments: commitments, Message: message}, nil
}
