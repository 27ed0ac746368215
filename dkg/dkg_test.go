package dkg

import (
	"sync"
	"testing"

	"threshold.network/frost-client/frost"
	"threshold.network/frost-client/gjkr"
	"threshold.network/frost-client/internal/testutils"
)

type noopLogger struct{}

func (noopLogger) Infow(string, ...interface{})  {}
func (noopLogger) Warnw(string, ...interface{})  {}
func (noopLogger) Errorw(string, ...interface{}) {}

// inMemoryComms is a PeerComms backend for tests: it hands every outgoing
// message directly to every other party's inbox, with no serialization,
// exercising Run's orchestration independent of the wire codec (covered
// separately by TestRound1MessageRoundTrip/TestRound2MessageRoundTrip).
type inMemoryComms struct {
	myIndex uint16
	peers   []uint16

	round1Box map[uint16][]*gjkr.Round1Message
	round2Box map[uint16]map[uint16]*gjkr.Round2Message

	round1Ready *sync.Cond
	round2Ready *sync.Cond
}

func newHub(peers []uint16) map[uint16]*inMemoryComms {
	round1Box := make(map[uint16][]*gjkr.Round1Message)
	round2Box := make(map[uint16]map[uint16]*gjkr.Round2Message)
	for _, p := range peers {
		round2Box[p] = make(map[uint16]*gjkr.Round2Message)
	}
	mu := &sync.Mutex{}
	cond1 := sync.NewCond(mu)
	cond2 := sync.NewCond(mu)

	hub := make(map[uint16]*inMemoryComms, len(peers))
	for _, p := range peers {
		hub[p] = &inMemoryComms{
			myIndex:     p,
			peers:       peers,
			round1Box:   round1Box,
			round2Box:   round2Box,
			round1Ready: cond1,
			round2Ready: cond2,
		}
	}
	return hub
}

func (c *inMemoryComms) BroadcastRound1(msg *gjkr.Round1Message) ([]*gjkr.Round1Message, error) {
	c.round1Ready.L.Lock()
	for _, p := range c.peers {
		if p != c.myIndex {
			c.round1Box[p] = append(c.round1Box[p], msg)
		}
	}
	c.round1Ready.Broadcast()

	for len(c.round1Box[c.myIndex]) < len(c.peers)-1 {
		c.round1Ready.Wait()
	}
	received := append([]*gjkr.Round1Message(nil), c.round1Box[c.myIndex]...)
	c.round1Ready.L.Unlock()

	return received, nil
}

func (c *inMemoryComms) ExchangeRound2(outgoing map[uint16]*gjkr.Round2Message) (map[uint16]*gjkr.Round2Message, error) {
	c.round2Ready.L.Lock()
	for peer, msg := range outgoing {
		c.round2Box[peer][c.myIndex] = msg
	}
	c.round2Ready.Broadcast()

	for len(c.round2Box[c.myIndex]) < len(c.peers)-1 {
		c.round2Ready.Wait()
	}
	received := make(map[uint16]*gjkr.Round2Message, len(c.peers)-1)
	for sender, msg := range c.round2Box[c.myIndex] {
		received[sender] = msg
	}
	c.round2Ready.L.Unlock()

	return received, nil
}

func TestRunThreeOfThree(t *testing.T) {
	ciphersuite := frost.NewEd25519Ciphersuite()
	peers := []uint16{1, 2, 3}
	group := make([]Participant, len(peers))
	for i, p := range peers {
		group[i] = Participant{Identifier: p}
	}
	hub := newHub(peers)

	type result struct {
		kp  *frost.KeyPackage
		pkp *frost.PublicKeyPackage
		err error
	}
	results := make(chan result, len(peers))

	for _, p := range peers {
		go func(idx uint16) {
			kp, pkp, err := Run(ciphersuite, "session-1", idx, group, 3, hub[idx], noopLogger{})
			results <- result{kp: kp, pkp: pkp, err: err}
		}(p)
	}

	var groupKey *frost.Point
	for range peers {
		r := <-results
		if r.err != nil {
			t.Fatalf("dkg run failed: %v", r.err)
		}
		if groupKey == nil {
			groupKey = r.kp.VerifyingKey
		} else {
			testutils.AssertBigIntsEqual(t, "group verifying key X", groupKey.X, r.kp.VerifyingKey.X)
		}
	}
}
