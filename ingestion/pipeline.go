package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/campaignrec/ai"
	"github.com/poiesic/campaignrec/core"
	"github.com/poiesic/campaignrec/storage"
)

// Pipeline orchestrates one extract → transform → load batch run that fully
// replaces the contents of the four persistent stores.
type Pipeline struct {
	source    Source
	embedder  ai.Embedder
	documents storage.DocumentStore
	vectors   storage.VectorStore
	graph     storage.GraphStore
	analytics storage.AnalyticsStore

	pool    *ants.Pool
	running atomic.Bool
	logger  *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	source Source,
	embedder ai.Embedder,
	documents storage.DocumentStore,
	vectors storage.VectorStore,
	graph storage.GraphStore,
	analytics storage.AnalyticsStore,
	opts ...Option,
) (*Pipeline, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if documents == nil || vectors == nil || graph == nil || analytics == nil {
		return nil, ErrStoreRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		source:    source,
		embedder:  embedder,
		documents: documents,
		vectors:   vectors,
		graph:     graph,
		analytics: analytics,
		pool:      pool,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Run executes one full batch: extract, validate+embed, then clear-then-insert
// into the document, vector, graph and analytics stores, in that order.
//
// Extract and transform failures halt the run before any store is touched.
// The load stage is NOT transactional across stores: a failure partway
// through leaves earlier stores on the new batch and later stores on the
// previous one, until the next successful run replaces everything.
//
// Runs are exclusive per pipeline; a concurrent call returns ErrRunInProgress.
func (p *Pipeline) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	defer p.running.Store(false)

	raw, err := p.source.Extract(ctx)
	if err != nil {
		p.logger.Error("extract failed, aborting run", "err", err)
		return err
	}
	if len(raw) == 0 {
		p.logger.Error("extract produced no records, aborting run")
		return ErrNoRawRecords
	}
	p.logger.Info("extracted raw records", "records", len(raw))

	records, err := p.transform(ctx, raw)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		p.logger.Error("no records survived transformation, aborting run")
		return ErrNothingToLoad
	}
	p.logger.Info("transformed records", "valid", len(records), "dropped", len(raw)-len(records))

	return p.load(ctx, records)
}

// transform validates each raw record and embeds the survivors.
// Invalid records and records with empty embeddings are dropped and logged;
// an embedder failure aborts the whole run.
func (p *Pipeline) transform(ctx context.Context, raw []map[string]any) ([]*core.ConversationRecord, error) {
	valid := make([]*core.ConversationRecord, 0, len(raw))
	for _, item := range raw {
		record, err := core.DecodeRecord(item)
		if err != nil {
			p.logger.Warn("invalid record skipped", "message_id", item["message_id"], "err", err)
			continue
		}
		valid = append(valid, record)
	}

	if len(valid) == 0 {
		return nil, nil
	}

	// Embed concurrently, preserving record order.
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		embedErr error
	)
	for i := range valid {
		record := valid[i]
		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			vector, err := p.embedder.EmbedText(ctx, record.Message)
			if err != nil {
				mu.Lock()
				if embedErr == nil {
					embedErr = fmt.Errorf("embedding record %s: %w", record.MessageID, err)
				}
				mu.Unlock()
				return
			}
			record.Embedding = vector
		}); err != nil {
			wg.Done()
			return nil, err
		}
	}
	wg.Wait()

	if embedErr != nil {
		p.logger.Error("embedding failed, aborting run", "err", embedErr)
		return nil, embedErr
	}

	embedded := make([]*core.ConversationRecord, 0, len(valid))
	for _, record := range valid {
		if len(record.Embedding) == 0 {
			p.logger.Warn("empty embedding, record skipped", "message_id", record.MessageID)
			continue
		}
		embedded = append(embedded, record)
	}
	return embedded, nil
}

// load replaces the contents of the four stores in fixed order.
func (p *Pipeline) load(ctx context.Context, records []*core.ConversationRecord) error {
	if err := p.documents.ReplaceAll(ctx, records); err != nil {
		return fmt.Errorf("loading document store: %w", err)
	}

	entries := make([]*core.SimilarityEntry, len(records))
	for i, record := range records {
		entries[i] = &core.SimilarityEntry{
			MessageID: record.MessageID,
			UserID:    record.UserID,
			Embedding: record.Embedding,
		}
	}
	if err := p.vectors.ReplaceAll(ctx, entries); err != nil {
		return fmt.Errorf("loading vector store: %w", err)
	}

	if err := p.graph.ReplaceAll(ctx, records); err != nil {
		return fmt.Errorf("loading graph store: %w", err)
	}

	if err := p.analytics.ReplaceAll(ctx, GroupEngagement(records)); err != nil {
		return fmt.Errorf("loading analytics store: %w", err)
	}

	p.logger.Info("load complete", "records", len(records))
	return nil
}

// GroupEngagement counts records per (user, campaign) pair.
// Row order is not significant; rows are sorted for stable logs and tests.
func GroupEngagement(records []*core.ConversationRecord) []core.EngagementAggregate {
	counts := make(map[[2]string]int64)
	for _, record := range records {
		counts[[2]string{record.UserID, record.CampaignID}]++
	}

	aggregates := make([]core.EngagementAggregate, 0, len(counts))
	for pair, count := range counts {
		aggregates = append(aggregates, core.EngagementAggregate{
			UserID:          pair[0],
			CampaignID:      pair[1],
			EngagementCount: count,
		})
	}
	sort.Slice(aggregates, func(i, j int) bool {
		if aggregates[i].UserID != aggregates[j].UserID {
			return aggregates[i].UserID < aggregates[j].UserID
		}
		return aggregates[i].CampaignID < aggregates[j].CampaignID
	})
	return aggregates
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
