package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/techjusticelab/opinion-ingest/internal/models"
)

// dimensionCache mirrors pgstore's per-worker cache (spec.md §4.3).
type dimensionCache struct {
	mu        sync.Mutex
	courts    map[string]int64
	caseTypes map[string]int64
	stages    map[string]int64
	docTypes  map[string]int64
	taxonomy  map[string]int64
	statutes  map[string]int64
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

func (d *dimensionCache) ensureCourt(ctx context.Context, tx *sql.Tx, name string, level models.CourtLevel, district, county string) (int64, error) {
	key := name + "\x00" + district
	d.mu.Lock()
	if id, ok := d.courts[key]; ok {
		d.mu.Unlock()
		return id, nil
	}
	d.mu.Unlock()

	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO court (name, level, district, county) VALUES (?, ?, ?, ?)
		ON CONFLICT (name, district) DO UPDATE SET level = excluded.level, county = excluded.county
		RETURNING id`, name, string(level), district, county).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensure court %q: %w", name, err)
	}

	d.mu.Lock()
	d.courts[key] = id
	d.mu.Unlock()
	return id, nil
}

func (d *dimensionCache) ensureCaseType(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	return d.ensureSimple(ctx, tx, d.caseTypes, "case_type", name)
}

func (d *dimensionCache) ensureStageType(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	return d.ensureSimple(ctx, tx, d.stages, "stage_type", name)
}

func (d *dimensionCache) ensureSimple(ctx context.Context, tx *sql.Tx, cache map[string]int64, table, name string) (int64, error) {
	d.mu.Lock()
	if id, ok := cache[name]; ok {
		d.mu.Unlock()
		return id, nil
	}
	d.mu.Unlock()

	query := fmt.Sprintf(`
		INSERT INTO %s (name) VALUES (?)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name
		RETURNING id`, table)

	var id int64
	if err := tx.QueryRowContext(ctx, query, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("ensure %s %q: %w", table, name, err)
	}

	d.mu.Lock()
	cache[name] = id
	d.mu.Unlock()
	return id, nil
}

func (d *dimensionCache) ensureDocumentType(ctx context.Context, tx *sql.Tx, name string, role models.DocumentTypeRole, hasDecision, isAdversarial bool, strategy models.ProcessingStrategy) (int64, error) {
	d.mu.Lock()
	if id, ok := d.docTypes[name]; ok {
		d.mu.Unlock()
		return id, nil
	}
	d.mu.Unlock()

	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO document_type (name, role, has_decision, is_adversarial, processing_strategy)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET role = excluded.role, has_decision = excluded.has_decision,
			is_adversarial = excluded.is_adversarial, processing_strategy = excluded.processing_strategy
		RETURNING id`, name, string(role), hasDecision, isAdversarial, string(strategy)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensure document_type %q: %w", name, err)
	}

	d.mu.Lock()
	d.docTypes[name] = id
	d.mu.Unlock()
	return id, nil
}

func (d *dimensionCache) ensureJudge(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	d.mu.Lock()
	if id, ok := d.judges[name]; ok {
		d.mu.Unlock()
		return id, nil
	}
	d.mu.Unlock()

	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO judge (name) VALUES (?)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name
		RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensure judge %q: %w", name, err)
	}

	d.mu.Lock()
	d.judges[name] = id
	d.mu.Unlock()
	return id, nil
}

func (d *dimensionCache) ensureStatute(ctx context.Context, tx *sql.Tx, jurisdiction, code, title, section string) (int64, error) {
	key := jurisdiction + "\x00" + code
	d.mu.Lock()
	if id, ok := d.statutes[key]; ok {
		d.mu.Unlock()
		return id, nil
	}
	d.mu.Unlock()

	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO statute (jurisdiction, code, title, section) VALUES (?, ?, ?, ?)
		ON CONFLICT (jurisdiction, code) DO UPDATE SET title = excluded.title, section = excluded.section
		RETURNING id`, jurisdiction, code, title, section).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensure statute %s/%s: %w", jurisdiction, code, err)
	}

	d.mu.Lock()
	d.statutes[key] = id
	d.mu.Unlock()
	return id, nil
}

func (d *dimensionCache) ensureTaxonomyPath(ctx context.Context, tx *sql.Tx, caseType, category, subcategory string) (int64, error) {
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

func (d *dimensionCache) ensureTaxonomyNode(ctx context.Context, tx *sql.Tx, parentID *int64, name string, level models.TaxonomyLevel) (int64, error) {
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
	err := tx.QueryRowContext(ctx, `
		INSERT INTO legal_taxonomy (parent_id, name, level) VALUES (?, ?, ?)
		ON CONFLICT (coalesce(parent_id, -1), name, level) DO UPDATE SET name = excluded.name
		RETURNING id`, parentID, name, string(level)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensure taxonomy node %q: %w", name, err)
	}

	d.mu.Lock()
	d.taxonomy[key] = id
	d.mu.Unlock()
	return id, nil
}
