package recommend

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/example/velora/internal/models"
)

// GormProductSource reads candidate products from postgres.
type GormProductSource struct {
	db *gorm.DB
}

// NewGormProductSource constructs a GormProductSource.
func NewGormProductSource(db *gorm.DB) GormProductSource {
	return GormProductSource{db: db}
}

// ActiveByHairTypes returns active products whose hair-type tags intersect
// the given set, best rated first.
func (s GormProductSource) ActiveByHairTypes(hairTypes []string, limit int) ([]models.Product, error) {
	var products []models.Product
	err := s.db.
		Where("is_active = ? AND hair_types && ?", true, pq.Array(hairTypes)).
		Order("average_rating desc, created_at desc").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// ActiveByIDs returns the active subset of the given products, in
// store order; callers reorder as needed.
func (s GormProductSource) ActiveByIDs(ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := s.db.
		Where("is_active = ? AND id IN ?", true, ids).
		Find(&products).Error
	return products, err
}

// GormProfileSource reads purchase histories from postgres.
type GormProfileSource struct {
	db *gorm.DB
}

// NewGormProfileSource constructs a GormProfileSource.
func NewGormProfileSource(db *gorm.DB) GormProfileSource {
	return GormProfileSource{db: db}
}

// PurchasedProductIDs returns the distinct product ids a user has bought.
func (s GormProfileSource) PurchasedProductIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.Model(&models.PurchaseItem{}).
		Joins("JOIN purchases ON purchases.id = purchase_items.purchase_id").
		Where("purchases.user_id = ?", userID).
		Distinct().
		Pluck("purchase_items.product_id", &ids).Error
	return ids, err
}

// PeerHistories returns purchase histories for up to limit other users.
// Peers are selected in ascending user-id order so the pool is stable
// between requests.
func (s GormProfileSource) PeerHistories(excludeUserID uuid.UUID, limit int) ([]PeerHistory, error) {
	var peerIDs []uuid.UUID
	err := s.db.Model(&models.Purchase{}).
		Where("user_id <> ?", excludeUserID).
		Distinct().
		Order("user_id asc").
		Limit(limit).
		Pluck("user_id", &peerIDs).Error
	if err != nil {
		return nil, err
	}
	if len(peerIDs) == 0 {
		return nil, nil
	}

	type row struct {
		UserID    uuid.UUID
		ProductID uuid.UUID
	}
	var rows []row
	err = s.db.Model(&models.PurchaseItem{}).
		Select("purchases.user_id AS user_id, purchase_items.product_id AS product_id").
		Joins("JOIN purchases ON purchases.id = purchase_items.purchase_id").
		Where("purchases.user_id IN ?", peerIDs).
		Order("purchases.user_id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	grouped := make(map[uuid.UUID][]uuid.UUID, len(peerIDs))
	for _, r := range rows {
		grouped[r.UserID] = append(grouped[r.UserID], r.ProductID)
	}

	histories := make([]PeerHistory, 0, len(peerIDs))
	for _, id := range peerIDs {
		if products, ok := grouped[id]; ok {
			histories = append(histories, PeerHistory{UserID: id, ProductIDs: products})
		}
	}
	return histories, nil
}
