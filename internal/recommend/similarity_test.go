package recommend

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
)

// fixedUUID builds a deterministic id whose string order follows n.
func fixedUUID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

func idList(ns ...int) []uuid.UUID {
	ids := make([]uuid.UUID, len(ns))
	for i, n := range ns {
		ids[i] = fixedUUID(n)
	}
	return ids
}

func TestTopPeers_OverlapIsIntersectionSize(t *testing.T) {
	own := IDSet(idList(1, 2, 3))
	peers := []PeerHistory{
		{UserID: fixedUUID(101), ProductIDs: idList(2, 3, 4)},
		{UserID: fixedUUID(102), ProductIDs: idList(1)},
		{UserID: fixedUUID(103), ProductIDs: idList(7, 8)},
	}

	scores, err := TopPeers(own, peers, 10)
	if err != nil {
		t.Fatalf("TopPeers returned error: %v", err)
	}

	if len(scores) != 2 {
		t.Fatalf("expected 2 scored peers, got %d", len(scores))
	}
	if scores[0].UserID != fixedUUID(101) || scores[0].Overlap != 2 {
		t.Errorf("expected peer 101 with overlap 2 first, got %v overlap %d", scores[0].UserID, scores[0].Overlap)
	}
	if scores[1].UserID != fixedUUID(102) || scores[1].Overlap != 1 {
		t.Errorf("expected peer 102 with overlap 1 second, got %v overlap %d", scores[1].UserID, scores[1].Overlap)
	}
}

func TestTopPeers_Symmetry(t *testing.T) {
	a := idList(1, 2, 3, 4)
	b := idList(3, 4, 5)

	forward, err := TopPeers(IDSet(a), []PeerHistory{{UserID: fixedUUID(101), ProductIDs: b}}, 1)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	backward, err := TopPeers(IDSet(b), []PeerHistory{{UserID: fixedUUID(102), ProductIDs: a}}, 1)
	if err != nil {
		t.Fatalf("backward: %v", err)
	}

	if forward[0].Overlap != backward[0].Overlap {
		t.Errorf("overlap not symmetric: %d vs %d", forward[0].Overlap, backward[0].Overlap)
	}
}

func TestTopPeers_DuplicatePurchasesCountOnce(t *testing.T) {
	own := IDSet(idList(1))
	peers := []PeerHistory{
		// The same product bought three times still overlaps once.
		{UserID: fixedUUID(101), ProductIDs: idList(1, 1, 1)},
	}

	scores, err := TopPeers(own, peers, 5)
	if err != nil {
		t.Fatalf("TopPeers returned error: %v", err)
	}
	if len(scores) != 1 || scores[0].Overlap != 1 {
		t.Fatalf("expected single peer with overlap 1, got %+v", scores)
	}
}

func TestTopPeers_TieBreakByPeerID(t *testing.T) {
	own := IDSet(idList(1, 2))
	// Both peers score 1; the lower UUID must win regardless of slice order.
	peers := []PeerHistory{
		{UserID: fixedUUID(103), ProductIDs: idList(2, 3, 4)},
		{UserID: fixedUUID(102), ProductIDs: idList(1, 3)},
	}

	scores, err := TopPeers(own, peers, 1)
	if err != nil {
		t.Fatalf("TopPeers returned error: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("expected 1 peer, got %d", len(scores))
	}
	if scores[0].UserID != fixedUUID(102) {
		t.Errorf("tie should resolve to the lower peer id, got %v", scores[0].UserID)
	}
}

func TestTopPeers_EdgeCases(t *testing.T) {
	t.Run("nil own set is invalid input", func(t *testing.T) {
		_, err := TopPeers(nil, []PeerHistory{{UserID: fixedUUID(101), ProductIDs: idList(1)}}, 3)
		if err != ErrInvalidInput {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("empty own set yields no peers", func(t *testing.T) {
		scores, err := TopPeers(IDSet(nil), []PeerHistory{{UserID: fixedUUID(101), ProductIDs: idList(1)}}, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(scores) != 0 {
			t.Errorf("expected no peers, got %d", len(scores))
		}
	})

	t.Run("zero overlap peers are dropped", func(t *testing.T) {
		scores, err := TopPeers(IDSet(idList(1)), []PeerHistory{{UserID: fixedUUID(101), ProductIDs: idList(9)}}, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(scores) != 0 {
			t.Errorf("expected no peers, got %d", len(scores))
		}
	})

	t.Run("k truncates the ranking", func(t *testing.T) {
		own := IDSet(idList(1, 2, 3))
		peers := []PeerHistory{
			{UserID: fixedUUID(101), ProductIDs: idList(1, 2, 3)},
			{UserID: fixedUUID(102), ProductIDs: idList(1, 2)},
			{UserID: fixedUUID(103), ProductIDs: idList(1)},
		}
		scores, err := TopPeers(own, peers, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(scores) != 2 {
			t.Fatalf("expected 2 peers, got %d", len(scores))
		}
		if scores[0].Overlap != 3 || scores[1].Overlap != 2 {
			t.Errorf("expected overlaps [3 2], got [%d %d]", scores[0].Overlap, scores[1].Overlap)
		}
	})
}
