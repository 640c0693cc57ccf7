package recommend

import (
	"errors"

	"github.com/google/uuid"

	"github.com/example/velora/internal/models"
)

// Tuning for the two recommendation modes. Blended merges both sources
// with a small peer group; the pure modes use one source with a deeper
// peer pool and tighter limits.
const (
	BlendedPeerK       = 3
	CollaborativePeerK = 5

	BlendedSourceLimit = 20
	PureSourceLimit    = 10

	BlendedPeerPool       = 50
	CollaborativePeerPool = 100
)

// ErrPreferencesNotSet reports a pure content-based request from a user
// who has not declared a hair type yet.
var ErrPreferencesNotSet = errors.New("user preferences are not set")

// ProductSource reads candidate products from the catalog.
type ProductSource interface {
	ActiveByHairTypes(hairTypes []string, limit int) ([]models.Product, error)
	ActiveByIDs(ids []uuid.UUID) ([]models.Product, error)
}

// ProfileSource reads purchase histories from the user store.
type ProfileSource interface {
	PurchasedProductIDs(userID uuid.UUID) ([]uuid.UUID, error)
	PeerHistories(excludeUserID uuid.UUID, limit int) ([]PeerHistory, error)
}

// Generator produces deduplicated candidate sets for a user.
type Generator struct {
	products ProductSource
	profiles ProfileSource
}

// NewGenerator constructs a Generator.
func NewGenerator(products ProductSource, profiles ProfileSource) *Generator {
	return &Generator{products: products, profiles: profiles}
}

// CandidateSet is a request-scoped, identity-deduplicated product set.
// Insertion order is preserved; re-adding an id keeps its position but
// the last-seen attributes win.
type CandidateSet struct {
	order []uuid.UUID
	byID  map[uuid.UUID]models.Product
}

// NewCandidateSet constructs an empty CandidateSet.
func NewCandidateSet() *CandidateSet {
	return &CandidateSet{byID: make(map[uuid.UUID]models.Product)}
}

// Add inserts or refreshes a candidate.
func (s *CandidateSet) Add(p models.Product) {
	if _, ok := s.byID[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.byID[p.ID] = p
}

// Len reports the number of distinct candidates.
func (s *CandidateSet) Len() int {
	return len(s.order)
}

// Products returns the candidates in insertion order.
func (s *CandidateSet) Products() []models.Product {
	out := make([]models.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Blended merges content-based and collaborative candidates. A missing
// hair-type preference simply leaves the content source empty.
func (g *Generator) Blended(user models.User) ([]models.Product, error) {
	set := NewCandidateSet()

	if user.Preferences.HairType != "" {
		content, err := g.products.ActiveByHairTypes([]string{user.Preferences.HairType}, BlendedSourceLimit)
		if err != nil {
			return nil, err
		}
		for _, p := range content {
			set.Add(p)
		}
	}

	collaborative, err := g.collaborative(user.ID, BlendedPeerK, BlendedPeerPool, BlendedSourceLimit)
	if err != nil {
		return nil, err
	}
	for _, p := range collaborative {
		set.Add(p)
	}

	return set.Products(), nil
}

// ContentBased returns products matching the user's declared hair type.
// It fails when preferences were never set.
func (g *Generator) ContentBased(user models.User) ([]models.Product, error) {
	if !user.Preferences.IsSet || user.Preferences.HairType == "" {
		return nil, ErrPreferencesNotSet
	}
	return g.products.ActiveByHairTypes([]string{user.Preferences.HairType}, PureSourceLimit)
}

// Collaborative returns products bought by the most similar peers that
// the user has not bought yet.
func (g *Generator) Collaborative(userID uuid.UUID) ([]models.Product, error) {
	return g.collaborative(userID, CollaborativePeerK, CollaborativePeerPool, PureSourceLimit)
}

func (g *Generator) collaborative(userID uuid.UUID, peerK, peerPool, limit int) ([]models.Product, error) {
	ownIDs, err := g.profiles.PurchasedProductIDs(userID)
	if err != nil {
		return nil, err
	}
	own := IDSet(ownIDs)

	peers, err := g.profiles.PeerHistories(userID, peerPool)
	if err != nil {
		return nil, err
	}

	top, err := TopPeers(own, peers, peerK)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return nil, nil
	}

	histories := make(map[uuid.UUID][]uuid.UUID, len(peers))
	for _, peer := range peers {
		histories[peer.UserID] = peer.ProductIDs
	}

	// Walk peers in similarity order, collecting product ids the requester
	// has not bought, up to the source limit.
	picked := make([]uuid.UUID, 0, limit)
	seen := make(map[uuid.UUID]struct{}, limit)
	for _, score := range top {
		for _, productID := range histories[score.UserID] {
			if _, bought := own[productID]; bought {
				continue
			}
			if _, dup := seen[productID]; dup {
				continue
			}
			seen[productID] = struct{}{}
			picked = append(picked, productID)
			if len(picked) == limit {
				break
			}
		}
		if len(picked) == limit {
			break
		}
	}

	if len(picked) == 0 {
		return nil, nil
	}

	products, err := g.products.ActiveByIDs(picked)
	if err != nil {
		return nil, err
	}

	// The store returns rows in arbitrary order; restore pick order.
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	ordered := make([]models.Product, 0, len(products))
	for _, id := range picked {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}
