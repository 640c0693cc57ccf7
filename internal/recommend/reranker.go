package recommend

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/velora/internal/models"
)

// MaxReranked caps the ordered list the reranker may return.
const MaxReranked = 10

// RankingClient is the external scoring oracle. It receives a prompt and
// answers with free-form text expected to contain a JSON array of ids.
type RankingClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// UserContext is the compact profile summary sent alongside candidates.
type UserContext struct {
	Preferences models.Preferences
	Purchases   []PurchasedProduct
}

// PurchasedProduct summarizes one past purchase for the ranking prompt.
type PurchasedProduct struct {
	Name     string
	Category string
}

// Reranker asks an external service to reorder candidates and falls back
// to the deterministic merge order when the response cannot be used.
type Reranker struct {
	client RankingClient
	log    zerolog.Logger
}

// NewReranker constructs a Reranker. A nil client disables the external
// call entirely; candidates then keep their merge order.
func NewReranker(client RankingClient, log zerolog.Logger) *Reranker {
	return &Reranker{client: client, log: log}
}

var (
	fencedBlock  = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	bracketArray = regexp.MustCompile(`\[[^\[\]]*\]`)
)

// Rerank returns at most MaxReranked candidates in externally ranked
// order. A transport failure from the client is returned as an error; an
// unusable response silently degrades to the first candidates in merge
// order. Identifiers that match no candidate are dropped.
func (r *Reranker) Rerank(ctx context.Context, user UserContext, candidates []models.Product) ([]models.Product, error) {
	if len(candidates) == 0 {
		return []models.Product{}, nil
	}

	limit := MaxReranked
	if len(candidates) < limit {
		limit = len(candidates)
	}
	fallback := candidates[:limit]

	if r.client == nil {
		return fallback, nil
	}

	raw, err := r.client.Complete(ctx, buildPrompt(user, candidates, limit))
	if err != nil {
		return nil, err
	}

	ids, ok := extractIDs(raw)
	if !ok {
		r.log.Warn().Msg("reranker response was not parseable, using merge order")
		return fallback, nil
	}

	byID := make(map[uuid.UUID]models.Product, len(candidates))
	for _, p := range candidates {
		byID[p.ID] = p
	}

	ranked := make([]models.Product, 0, limit)
	added := make(map[uuid.UUID]struct{}, limit)
	for _, raw := range ids {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		if _, dup := added[id]; dup {
			continue
		}
		product, known := byID[id]
		if !known {
			continue
		}
		added[id] = struct{}{}
		ranked = append(ranked, product)
		if len(ranked) == limit {
			break
		}
	}

	if len(ranked) == 0 {
		r.log.Warn().Msg("reranker returned no usable ids, using merge order")
		return fallback, nil
	}
	return ranked, nil
}

// extractIDs pulls a JSON string array out of free-form text: code fences
// are stripped, then a direct parse is tried, then a bracketed-array
// pattern match.
func extractIDs(raw string) ([]string, bool) {
	text := strings.TrimSpace(raw)
	if match := fencedBlock.FindStringSubmatch(text); match != nil {
		text = strings.TrimSpace(match[1])
	}

	var ids []string
	if err := json.Unmarshal([]byte(text), &ids); err == nil {
		return ids, true
	}

	if match := bracketArray.FindString(text); match != "" {
		if err := json.Unmarshal([]byte(match), &ids); err == nil {
			return ids, true
		}
	}

	return nil, false
}

func buildPrompt(user UserContext, candidates []models.Product, limit int) string {
	var b strings.Builder

	b.WriteString("You rank beauty products for a customer.\n\nCustomer profile:\n")
	fmt.Fprintf(&b, "- hair type: %s\n- skin type: %s\n", orNone(user.Preferences.HairType), orNone(user.Preferences.SkinType))
	if len(user.Preferences.BeautyGoals) > 0 {
		fmt.Fprintf(&b, "- beauty goals: %s\n", strings.Join(user.Preferences.BeautyGoals, ", "))
	}
	if user.Preferences.MaxPrice > 0 {
		fmt.Fprintf(&b, "- budget: %.2f to %.2f\n", user.Preferences.MinPrice, user.Preferences.MaxPrice)
	}

	if len(user.Purchases) > 0 {
		b.WriteString("\nPast purchases:\n")
		for _, p := range user.Purchases {
			fmt.Fprintf(&b, "- %s (%s)\n", p.Name, p.Category)
		}
	}

	b.WriteString("\nCandidate products:\n")
	for _, p := range candidates {
		fmt.Fprintf(&b, "- id=%s name=%q category=%s price=%.2f rating=%.1f hairTypes=%s\n",
			p.ID, p.Name, p.Category, p.Price, p.AverageRating, strings.Join(p.HairTypes, "/"))
	}

	fmt.Fprintf(&b, "\nReturn a JSON array with the ids of the best %d products for this customer, best first. Return only the JSON array.", limit)
	return b.String()
}

func orNone(v string) string {
	if v == "" {
		return "not specified"
	}
	return v
}
