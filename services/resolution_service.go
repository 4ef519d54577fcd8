package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"macrolog/apierr"
	"macrolog/logger"
	"macrolog/models"
	"macrolog/utils"
)

type Provenance string

const (
	ProvenanceCatalog Provenance = "catalog"
	ProvenanceOracle  Provenance = "oracle"
)

type FoodRequest struct {
	Name  string  `json:"name" binding:"required"`
	Grams float64 `json:"grams"`
}

type ResolvedItem struct {
	Name     string     `json:"name"`
	Grams    float64    `json:"grams,omitempty"`
	Protein  float64    `json:"protein"`
	Carb     float64    `json:"carb"`
	Fat      float64    `json:"fat"`
	Calories float64    `json:"calories"`
	Source   Provenance `json:"source"`
}

// Resolution is either the resolved items, catalog hits first, or the
// oracle's error message passed through unchanged.
type Resolution struct {
	Items       []ResolvedItem
	OracleError string
}

// MarshalJSON writes {"item_1": ..., "item_n": ...} in item order, or
// {"error": ...} for an oracle error.
func (r Resolution) MarshalJSON() ([]byte, error) {
	if r.OracleError != "" {
		return json.Marshal(map[string]string{"error": r.OracleError})
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range r.Items {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", fmt.Sprintf("item_%d", i+1))
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func itemFromMacros(name string, grams, protein, carb, fat float64, src Provenance) ResolvedItem {
	p, c, f := utils.RoundMacro(protein), utils.RoundMacro(carb), utils.RoundMacro(fat)
	return ResolvedItem{
		Name:     name,
		Grams:    grams,
		Protein:  p,
		Carb:     c,
		Fat:      f,
		Calories: utils.RoundMacro(CaloriesFromMacros(p, c, f)),
		Source:   src,
	}
}

// ScaleEntry computes a portion of grams from a per-100g catalog entry.
func ScaleEntry(e *models.CatalogEntry, grams float64) ResolvedItem {
	factor := grams / 100
	return itemFromMacros(e.Name, grams,
		e.ProteinPer100g*factor, e.CarbPer100g*factor, e.FatPer100g*factor, ProvenanceCatalog)
}

type ResolutionService struct {
	catalog  *CatalogService
	profiles ProfileStore
	oracle   Oracle
	queue    TaskQueue
	log      *logger.Logger
}

func NewResolutionService(catalog *CatalogService, profiles ProfileStore, oracle Oracle, queue TaskQueue, log *logger.Logger) *ResolutionService {
	return &ResolutionService{
		catalog:  catalog,
		profiles: profiles,
		oracle:   oracle,
		queue:    queue,
		log:      log.With("service", "ResolutionService"),
	}
}

// Resolve answers from the catalog where it can and asks the oracle once for
// the rest. Persistence of the result happens after the response, in the
// background.
func (s *ResolutionService) Resolve(ctx context.Context, profileID uuid.UUID, reqs []FoodRequest) (*Resolution, error) {
	if len(reqs) == 0 {
		return nil, apierr.Invalid("at least one food is required")
	}
	exists, err := s.profiles.ExistsByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	if !exists {
		return nil, profileNotFound()
	}

	var hits []ResolvedItem
	var misses []OracleItem
	for _, r := range reqs {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, apierr.Invalid("food name is required")
		}
		// without a positive weight an item cannot be scaled from the catalog
		if r.Grams > 0 {
			entry, err := s.catalog.FindByName(ctx, name)
			if err != nil {
				return nil, err
			}
			if entry != nil {
				hits = append(hits, ScaleEntry(entry, r.Grams))
				continue
			}
		}
		misses = append(misses, OracleItem{Name: name, Grams: max(r.Grams, 0)})
	}

	items := hits
	if len(misses) > 0 {
		started := time.Now()
		reply, err := s.oracle.EstimateMacros(ctx, misses)
		if err != nil {
			s.log.Warn("oracle call failed", "profile_id", profileID, "misses", len(misses), "error", err)
			return nil, err
		}
		s.log.Debug("oracle answered", "profile_id", profileID, "misses", len(misses),
			"elapsed", time.Since(started).String())
		if reply.Error != "" {
			return &Resolution{OracleError: reply.Error}, nil
		}
		merged, err := mergeOracle(reply.Items, misses)
		if err != nil {
			s.log.Warn("oracle reply rejected", "profile_id", profileID, "error", err)
			return nil, apierr.New(http.StatusBadGateway, "oracle_bad_reply", err)
		}
		items = append(items, merged...)
	}

	task := PersistTask{ProfileID: profileID, Items: make([]ResolvedItem, len(items))}
	copy(task.Items, items)
	s.queue.Enqueue(task)

	s.log.Info("foods resolved", "profile_id", profileID, "hits", len(hits), "misses", len(misses))
	return &Resolution{Items: items}, nil
}

// mergeOracle keeps the oracle's order; an item without grams takes the
// weight requested for the same name. Negative estimates are rejected.
func mergeOracle(estimates []OracleEstimate, misses []OracleItem) ([]ResolvedItem, error) {
	requested := make(map[string]float64, len(misses))
	for _, m := range misses {
		requested[models.NameKey(m.Name)] = m.Grams
	}
	out := make([]ResolvedItem, 0, len(estimates))
	for _, est := range estimates {
		if est.Protein < 0 || est.Carb < 0 || est.Fat < 0 {
			return nil, fmt.Errorf("oracle item %q: negative macros", est.Name)
		}
		grams := est.Grams
		if grams <= 0 {
			grams = requested[models.NameKey(est.Name)]
		}
		out = append(out, itemFromMacros(strings.TrimSpace(est.Name), grams,
			est.Protein, est.Carb, est.Fat, ProvenanceOracle))
	}
	return out, nil
}

// LedgerPersister stores what a resolution call returned: catalog entries
// for unknown foods and the consumption on the caller's current day.
type LedgerPersister struct {
	catalog *CatalogService
	ledger  *LedgerService
	events  EventBus
	log     *logger.Logger
}

func NewLedgerPersister(catalog *CatalogService, ledger *LedgerService, events EventBus, log *logger.Logger) *LedgerPersister {
	return &LedgerPersister{
		catalog: catalog,
		ledger:  ledger,
		events:  events,
		log:     log.With("component", "LedgerPersister"),
	}
}

// Handle is safe to repeat until the ledger save lands: catalog inserts
// never overwrite, and the consumption is applied in one save.
func (p *LedgerPersister) Handle(ctx context.Context, task PersistTask) error {
	entries := make([]Consumption, 0, len(task.Items))
	for _, item := range task.Items {
		if item.Grams > 0 {
			_, err := p.catalog.InsertSample(ctx, item.Name, item.Grams, item.Protein, item.Carb, item.Fat)
			if ae, ok := apierr.As(err); ok && !ae.Retryable() {
				p.log.Warn("catalog sample skipped", "task_id", task.ID, "name", item.Name, "error", err)
			} else if err != nil {
				return err
			}
		}
		entries = append(entries, Consumption{
			Protein:  item.Protein,
			Carb:     item.Carb,
			Fat:      item.Fat,
			Calories: item.Calories,
		})
	}

	sum, err := p.ledger.RecordConsumption(ctx, task.ProfileID, entries...)
	if err != nil {
		if ae, ok := apierr.As(err); ok && !ae.Retryable() {
			p.log.Warn("persist task rejected", "task_id", task.ID, "profile_id", task.ProfileID, "error", err)
			return nil
		}
		return err
	}

	if p.events != nil {
		ev := LedgerEvent{Kind: KindLedgerUpdated, ProfileID: task.ProfileID, Summary: sum, At: time.Now()}
		if err := p.events.Publish(ctx, ev); err != nil {
			p.log.Warn("ledger event not published", "profile_id", task.ProfileID, "error", err)
		}
	}
	return nil
}
