// Package recommend holds the recommendation core: purchase-overlap
// similarity scoring, candidate generation from content-based and
// collaborative sources, and the external reranker adapter.
package recommend

import (
	"errors"
	"sort"

	"github.com/google/uuid"
)

// ErrInvalidInput reports a nil purchase-history set. An empty set is
// valid and yields no peers; nil means the caller never loaded one.
var ErrInvalidInput = errors.New("purchase history set is required")

// PeerHistory is one peer user's purchased-product-id set.
type PeerHistory struct {
	UserID     uuid.UUID
	ProductIDs []uuid.UUID
}

// PeerScore pairs a peer with its overlap against the requester.
type PeerScore struct {
	UserID  uuid.UUID
	Overlap int
}

// TopPeers ranks peers by the size of the intersection between their
// purchased-product sets and the requester's, descending. Ties break by
// ascending peer UUID so results are deterministic. Peers with no overlap
// are dropped; at most k peers are returned.
func TopPeers(own map[uuid.UUID]struct{}, peers []PeerHistory, k int) ([]PeerScore, error) {
	if own == nil {
		return nil, ErrInvalidInput
	}
	if len(own) == 0 || k <= 0 {
		return nil, nil
	}

	scores := make([]PeerScore, 0, len(peers))
	for _, peer := range peers {
		counted := make(map[uuid.UUID]struct{}, len(peer.ProductIDs))
		overlap := 0
		for _, id := range peer.ProductIDs {
			if _, dup := counted[id]; dup {
				continue
			}
			counted[id] = struct{}{}
			if _, ok := own[id]; ok {
				overlap++
			}
		}
		if overlap > 0 {
			scores = append(scores, PeerScore{UserID: peer.UserID, Overlap: overlap})
		}
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Overlap != scores[j].Overlap {
			return scores[i].Overlap > scores[j].Overlap
		}
		return scores[i].UserID.String() < scores[j].UserID.String()
	})

	if len(scores) > k {
		scores = scores[:k]
	}
	return scores, nil
}

// IDSet builds a membership set from a product-id slice. The result is
// never nil so it can feed TopPeers directly.
func IDSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
