package gjkr

import (
	"math/big"
	"testing"

	"threshold.network/frost-client/frost"
	"threshold.network/frost-client/internal/testutils"
)

type noopLogger struct{}

func (noopLogger) Infow(string, ...interface{})  {}
func (noopLogger) Warnw(string, ...interface{})  {}
func (noopLogger) Errorw(string, ...interface{}) {}

func runDKG(t *testing.T, ciphersuite frost.Ciphersuite, groupSize uint16, threshold int) (
	[]*frost.KeyPackage, *frost.PublicKeyPackage,
) {
	t.Helper()

	peers := make([]uint16, groupSize)
	for i := range peers {
		peers[i] = uint16(i + 1)
	}

	sessions := make(map[uint16]*Session, groupSize)
	round1 := make([]*Round1Message, 0, groupSize)
	for _, idx := range peers {
		s := NewSession(ciphersuite, "session-1", idx, groupSize, threshold, noopLogger{})
		sessions[idx] = s

		others := make([]uint16, 0, groupSize-1)
		for _, p := range peers {
			if p != idx {
				others = append(others, p)
			}
		}

		msg, err := s.Round1(others)
		if err != nil {
			t.Fatalf("round1 for member [%d]: %v", idx, err)
		}
		round1 = append(round1, msg)
	}

	for _, idx := range peers {
		if err := sessions[idx].ReceiveRound1(round1); err != nil {
			t.Fatalf("receive round1 for member [%d]: %v", idx, err)
		}
	}

	round2 := make(map[uint16]map[uint16]*Round2Message, groupSize)
	for _, idx := range peers {
		shares, err := sessions[idx].Round2()
		if err != nil {
			t.Fatalf("round2 for member [%d]: %v", idx, err)
		}
		round2[idx] = shares
	}

	for _, recipient := range peers {
		for _, sender := range peers {
			if sender == recipient {
				continue
			}
			msg := round2[sender][recipient]
			if err := sessions[recipient].ReceiveRound2(sender, msg); err != nil {
				t.Fatalf("receive round2 from [%d] to [%d]: %v", sender, recipient, err)
			}
		}
	}

	keyPackages := make([]*frost.KeyPackage, 0, groupSize)
	var pubKeyPackage *frost.PublicKeyPackage
	for _, idx := range peers {
		kp, pkp, err := sessions[idx].Finalize(peers)
		if err != nil {
			t.Fatalf("finalize for member [%d]: %v", idx, err)
		}
		keyPackages = append(keyPackages, kp)
		pubKeyPackage = pkp
	}

	return keyPackages, pubKeyPackage
}

func TestDKGRoundTrip(t *testing.T) {
	ciphersuite := frost.NewEd25519Ciphersuite()

	keyPackages, pubKeyPackage := runDKG(t, ciphersuite, 3, 2)

	groupKey := keyPackages[0].VerifyingKey
	for _, kp := range keyPackages[1:] {
		testutils.AssertBigIntsEqual(t, "group verifying key X", groupKey.X, kp.VerifyingKey.X)
		testutils.AssertBigIntsEqual(t, "group verifying key Y", groupKey.Y, kp.VerifyingKey.Y)
	}
	testutils.AssertBigIntsEqual(t, "public key package verifying key X", groupKey.X, pubKeyPackage.VerifyingKey.X)

	curve := ciphersuite.Curve()
	for _, kp := range keyPackages {
		expected := curve.EcBaseMul(kp.SigningShare.Scalar())
		actual := kp.VerifyingShare.Point
		testutils.AssertBigIntsEqual(t, "verifying share X", expected.X, actual.X)
		testutils.AssertBigIntsEqual(t, "verifying share Y", expected.Y, actual.Y)
	}
}

func TestDKGRejectsBadProofOfKnowledge(t *testing.T) {
	ciphersuite := frost.NewEd25519Ciphersuite()
	groupSize := uint16(3)
	threshold := 2

	peers := []uint16{1, 2, 3}
	sessions := make(map[uint16]*Session, groupSize)
	round1 := make([]*Round1Message, 0, groupSize)
	for _, idx := range peers {
		s := NewSession(ciphersuite, "session-1", idx, groupSize, threshold, noopLogger{})
		sessions[idx] = s

		others := make([]uint16, 0, 2)
		for _, p := range peers {
			if p != idx {
				others = append(others, p)
			}
		}

		msg, err := s.Round1(others)
		if err != nil {
			t.Fatalf("round1 for member [%d]: %v", idx, err)
		}
		round1 = append(round1, msg)
	}

	// Tamper with member 2's proof of knowledge before it reaches member 1.
	for _, msg := range round1 {
		if msg.SenderIndex == 2 {
			msg.PoKS.Add(msg.PoKS, ciphersuite.Curve().Order())
			msg.PoKS.Mod(msg.PoKS, ciphersuite.Curve().Order())
			msg.PoKS.Add(msg.PoKS, big.NewInt(1))
		}
	}

	if err := sessions[1].ReceiveRound1(round1); err == nil {
		t.Fatal("expected proof of knowledge verification to fail")
	}
}
