package pgstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/techjusticelab/opinion-ingest/internal/models"
)

// dimensionCache is the per-worker cache of spec.md §4.3: "cache entries
// are populated only after successful DB upsert, so concurrent workers
// converge to a single id." It is never shared across sessions.
type dimensionCache struct {
	mu        sync.Mutex
	courts    map[string]int64 // key: name + "\x00" + district
	caseTypes map[string]int64
	stages    map[string]int64
	docTypes  map[string]int64
	taxonomy  map[string]int64 // key: parentID + "\x00" + name + "\x00" + level
	statutes  map[string]int64 // key: jurisdiction + "\x00" + code
	judges    map[string]int64
}

func newDimensionCache() *dimensionCache {
	return &dimensionCache{
		courts:    make(map[string]int64),
		caseTypes: make(map[string]int64),
		stages:    make(map[string]int64),
		docTypes:  make(map[string]int64),
		taxonomy:  make(map[string]int64),
		statutes:  make(map[string]int64),
		judges:    make(map[string]int64),
	}
}

func courtKey(name, district string) string { return name + "\x00" + district }

// ensureCourt implements the get-or-create on (name, district) spec.md §3
// fixes as the court natural key (§9 open question, resolved in
// DESIGN.md).
func (d *dimensionCache) ensureCourt(ctx context.Context, tx pgx.Tx, name string, level models.CourtLevel, district, county string) (int64, error) {
	key := courtKey(name, district)
	d.mu.Lock()
	if id, ok := d.courts[key]; ok {
		d.mu.Unlock()
		return id, nil
	}
	d.mu.Unlock()

	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO court (name, level, district, county)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name, district) DO UPDATE SET level = EXCLUDED.level, county = EXCLUDED.county
		RETURNING id`, name, string(level), district, county).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensure court %q: %w", name, err)
	}

	d.mu.Lock()
	d.courts[key] = id
	d.mu.Unlock()
	return id, nil
}

func (d *dimensionCache) ensureCaseType(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	return d.ensureSimple(ctx, tx, d.caseTypes, "case_type", name)
}

func (d *dimensionCache) ensureStageType(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	return d.ensureSimple(ctx, tx, d.stages, "stage_type", name)
}

// ensureSimple handles the two single-column natural-key dimension
// tables (case_type, stage_type) with one code path.
func (d *dimensionCache) ensureSimple(ctx context.Context, tx pgx.Tx, cache map[string]int64, table, name string) (int64, error) {
	d.mu.Lock()
	if id, ok := cache[name]; ok {
		d.mu.Unlock()
		return id, nil
	}
	d.mu.Unlock()

	query := fmt.Sprintf(`
		INSERT INTO %s (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, table)

	var id int64
	if err := tx.QueryRow(ctx, query, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("ensure %s %q: %w", table, name, err)
	}

	d.mu.Lock()
	cache[name] = id
	d.mu.Unlock()
	return id, nil
}

func (d *dimensionCache) ensureDocumentType(ctx context.Context, tx pgx.Tx, name string, role models.DocumentTypeRole, hasDecision, isAdversarial bool, strategy models.ProcessingStrategy) (int64, error) {
	d.mu.Lock()
	if id, ok := d.docTypes[name]; ok {
		d.mu.Unlock()
		return id, nil
	}
	d.mu.Unlock()

	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_type (name, role, has_decision, is_adversarial, processing_strategy)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET role = EXCLUDED.role, has_decision = EXCLUDED.has_decision,
			is_adversarial = EXCLUDED.is_adversarial, processing_strategy = EXCLUDED.processing_strategy
		RETURNING id`, name, string(role), hasDecision, isAdversarial, string(strategy)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensure document_type %q: %w", name, err)
	}

	d.mu.Lock()
	d.docTypes[name] = id
	d.mu.Unlock()
	return id, nil
}

func (d *dimensionCache) ensureJudge(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	d.mu.Lock()
	if id, ok := d.judges[name]; ok {
		d.mu.Unlock()
		return id, nil
	}
	d.mu.Unlock()

	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO judge (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensure judge %q: %w", name, err)
	}

	d.mu.Lock()
	d.judges[name] = id
	d.mu.Unlock()
	return id, nil
}

func (d *dimensionCache) ensureStatute(ctx context.Context, tx pgx.Tx, jurisdiction, code, title, section string) (int64, error) {
	key := jurisdiction + "\x00" + code
	d.mu.Lock()
	if id, ok := d.statutes[key]; ok {
		d.mu.Unlock()
		return id, nil
	}
	d.mu.Unlock()

	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO statute (jurisdiction, code, title, section)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (jurisdiction, code) DO UPDATE SET title = EXCLUDED.title, section = EXCLUDED.section
		RETURNING id`, jurisdiction, code, title, section).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensure statute %s/%s: %w", jurisdiction, code, err)
	}

	d.mu.Lock()
	d.statutes[key] = id
	d.mu.Unlock()
	return id, nil
}

// ensureTaxonomyPath walks case_type -> category -> subcategory,
// creating any missing nodes, and returns the deepest node's id
// (spec.md §4.9 step 5: "taxonomy_id to the deepest node").
func (d *dimensionCache) ensureTaxonomyPath(ctx context.Context, tx pgx.Tx, caseType, category, subcategory string) (int64, error) {
	caseTypeID, err := d.ensureTaxonomyNode(ctx, tx, nil, caseType, models.TaxonomyCaseType)
	if err != nil {
		return 0, err
	}
	if category == "" {
		return caseTypeID, nil
	}
	categoryID, err := d.ensureTaxonomyNode(ctx, tx, &caseTypeID, category, models.TaxonomyCategory)
	if err != nil {
		return 0, err
	}
	if subcategory == "" {
		return categoryID, nil
	}
	return d.ensureTaxonomyNode(ctx, tx, &categoryID, subcategory, models.TaxonomySubcategory)
}

func (d *dimensionCache) ensureTaxonomyNode(ctx context.Context, tx pgx.Tx, parentID *int64, name string, level models.TaxonomyLevel) (int64, error) {
	var parentKey int64 = -1
	if parentID != nil {
		parentKey = *parentID
	}
	key := fmt.Sprintf("%d\x00%s\x00%s", parentKey, name, level)

	d.mu.Lock()
	if id, ok := d.taxonomy[key]; ok {
		d.mu.Unlock()
		return id, nil
	}
	d.mu.Unlock()

	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO legal_taxonomy (parent_id, name, level)
		VALUES ($1, $2, $3)
		ON CONFLICT (COALESCE(parent_id, -1), name, level) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, parentID, name, string(level)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensure taxonomy node %q: %w", name, err)
	}

	d.mu.Lock()
	d.taxonomy[key] = id
	d.mu.Unlock()
	return id, nil
}
