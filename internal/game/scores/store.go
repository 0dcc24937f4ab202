package scores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/party-bet/internal/game/domain"
)

// Limit é o tamanho máximo do placar persistido
const Limit = 6

// BlobStore guarda o placar como um único blob JSON
type BlobStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, blob []byte) error
}

var ErrNotFound = errors.New("scores blob not found")

// PersistenceError encapsula falhas de leitura/escrita do blob
type PersistenceError struct {
	Op  string // "load" | "save"
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("scores %s: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

// Store mantém o top do placar em memória e persiste após cada merge
// Depois de uma falha de persistência fica só em memória até a próxima sessão (Resume)
type Store struct {
	mu       sync.Mutex
	blob     BlobStore
	log      *zap.Logger
	entries  []domain.ScoreEntry
	loaded   bool
	degraded bool
	warning  string
	timeout  time.Duration

	OnPersistError func(op string) // métricas
}

// Option configura o Store antes da leitura inicial
type Option func(*Store)

// WithPersistErrorHook registra o callback de falhas (inclusive a do load inicial)
func WithPersistErrorHook(fn func(op string)) Option {
	return func(s *Store) { s.OnPersistError = fn }
}

// NewStore lê o blob uma vez. Ausente ou corrompido = placar vazio.
// blob nil significa placar só em memória.
func NewStore(ctx context.Context, blob BlobStore, log *zap.Logger, opts ...Option) *Store {
	s := &Store{blob: blob, log: log, timeout: 500 * time.Millisecond}
	for _, opt := range opts {
		opt(s)
	}
	if blob == nil {
		s.degraded = true
		return s
	}
	if err := s.load(ctx); err != nil {
		s.fail(err)
	}
	return s
}

// load lê o blob e junta com o que já está em memória. Só erro de I/O é retornado.
func (s *Store) load(ctx context.Context) *PersistenceError {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	raw, err := s.blob.Load(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		s.loaded = true
		return nil
	case err != nil:
		return &PersistenceError{Op: "load", Err: err}
	}

	s.loaded = true
	var saved []domain.ScoreEntry
	if err := json.Unmarshal(raw, &saved); err != nil {
		s.log.Info("saved scores unreadable, starting empty", zap.Error(err))
		return nil
	}
	s.entries = normalize(append(saved, s.entries...))
	return nil
}

// Resume volta a persistir no início de uma nova sessão. Se o load inicial
// tinha falhado ele é refeito primeiro; falhando de novo o Store segue degradado.
func (s *Store) Resume(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blob == nil || !s.degraded {
		return
	}
	if !s.loaded {
		if err := s.load(ctx); err != nil {
			s.fail(err)
			return
		}
	}
	s.degraded = false
	s.warning = ""
	s.log.Info("score persistence resumed")
}

// Top retorna uma cópia do placar atual
func (s *Store) Top() []domain.ScoreEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Warning é a mensagem não fatal exibida quando a persistência falhou
func (s *Store) Warning() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warning
}

// Merge faz o upsert dos jogadores, persiste e devolve o top
func (s *Store) Merge(ctx context.Context, players []domain.Player) []domain.ScoreEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = MergeEntries(s.entries, players)
	top := slices.Clone(s.entries)

	if s.degraded {
		return top
	}
	raw, err := json.Marshal(top)
	if err != nil {
		s.fail(&PersistenceError{Op: "save", Err: err})
		return top
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.blob.Save(ctx, raw); err != nil {
		s.fail(&PersistenceError{Op: "save", Err: err})
	}
	return top
}

func (s *Store) fail(err *PersistenceError) {
	s.degraded = true
	s.warning = "High scores could not be saved; keeping them for this session only."
	s.log.Warn("score persistence failed, using in-memory scores", zap.String("op", err.Op), zap.Error(err))
	if s.OnPersistError != nil {
		s.OnPersistError(err.Op)
	}
}

// MergeEntries é o merge puro: upsert por nome mantendo o maior score,
// ordena desc, deduplica e corta no Limit
func MergeEntries(existing []domain.ScoreEntry, players []domain.Player) []domain.ScoreEntry {
	merged := slices.Clone(existing)
	for _, p := range players {
		score := p.Balance.Round(0).IntPart()
		idx := slices.IndexFunc(merged, func(e domain.ScoreEntry) bool { return e.Name == p.Name })
		if idx >= 0 {
			merged[idx].Score = max(merged[idx].Score, score)
			continue
		}
		merged = append(merged, domain.ScoreEntry{Name: p.Name, Score: score})
	}
	return normalize(merged)
}

func normalize(entries []domain.ScoreEntry) []domain.ScoreEntry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b domain.ScoreEntry) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	seen := make(map[string]struct{}, len(sorted))
	out := make([]domain.ScoreEntry, 0, min(len(sorted), Limit))
	for _, e := range sorted {
		if _, dup := seen[e.Name]; dup {
			continue
		}
		seen[e.Name] = struct{}{}
		out = append(out, e)
		if len(out) == Limit {
			break
		}
	}
	return out
}
