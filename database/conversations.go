package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kev1N916/trial-bot/internal/jsonstore"
	"github.com/kev1N916/trial-bot/internal/models"
	"gorm.io/gorm"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationStore keeps the references used for proactive messages,
// keyed by conversation ID.
type ConversationStore interface {
	Save(ctx context.Context, ref models.ConversationReference) error
	Get(ctx context.Context, conversationID string) (models.ConversationReference, error)
	Delete(ctx context.Context, conversationID string) error
	List(ctx context.Context) ([]models.ConversationReference, error)
}

type MemoryConversationStore struct {
	mu   sync.RWMutex
	refs map[string]models.ConversationReference
}

func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{refs: make(map[string]models.ConversationReference)}
}

func (s *MemoryConversationStore) Save(_ context.Context, ref models.ConversationReference) error {
	if ref.ConversationID == "" {
		return fmt.Errorf("conversation ID is required")
	}
	ref.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[ref.ConversationID] = ref
	return nil
}

func (s *MemoryConversationStore) Get(_ context.Context, conversationID string) (models.ConversationReference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.refs[conversationID]
	if !ok {
		return models.ConversationReference{}, fmt.Errorf("%w: %s", ErrConversationNotFound, conversationID)
	}
	return ref, nil
}

func (s *MemoryConversationStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refs, conversationID)
	return nil
}

func (s *MemoryConversationStore) List(_ context.Context) ([]models.ConversationReference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedRefs(s.refs), nil
}

// FileConversationStore keeps every reference in a single JSON document.
// The mutex only serializes writers inside this process.
type FileConversationStore struct {
	mu   sync.Mutex
	path string
}

func NewFileConversationStore(path string) *FileConversationStore {
	return &FileConversationStore{path: path}
}

func (s *FileConversationStore) read() (map[string]models.ConversationReference, error) {
	refs := make(map[string]models.ConversationReference)
	if err := jsonstore.Load(s.path, &refs); err != nil {
		if errors.Is(err, jsonstore.ErrFileNotFound) {
			return refs, nil
		}
		return nil, err
	}
	return refs, nil
}

func (s *FileConversationStore) Save(_ context.Context, ref models.ConversationReference) error {
	if ref.ConversationID == "" {
		return fmt.Errorf("conversation ID is required")
	}
	ref.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	refs, err := s.read()
	if err != nil {
		return err
	}
	refs[ref.ConversationID] = ref
	return jsonstore.Store(s.path, refs)
}

func (s *FileConversationStore) Get(_ context.Context, conversationID string) (models.ConversationReference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	refs, err := s.read()
	if err != nil {
		return models.ConversationReference{}, err
	}
	ref, ok := refs[conversationID]
	if !ok {
		return models.ConversationReference{}, fmt.Errorf("%w: %s", ErrConversationNotFound, conversationID)
	}
	return ref, nil
}

func (s *FileConversationStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	refs, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := refs[conversationID]; !ok {
		return nil
	}
	delete(refs, conversationID)
	return jsonstore.Store(s.path, refs)
}

func (s *FileConversationStore) List(_ context.Context) ([]models.ConversationReference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	refs, err := s.read()
	if err != nil {
		return nil, err
	}
	return sortedRefs(refs), nil
}

type GormConversationStore struct {
	DB *gorm.DB
}

func (s *GormConversationStore) Save(ctx context.Context, ref models.ConversationReference) error {
	if ref.ConversationID == "" {
		return fmt.Errorf("conversation ID is required")
	}
	if result := s.DB.WithContext(ctx).Save(&ref); result.Error != nil {
		return fmt.Errorf("failed to save conversation reference: %w", result.Error)
	}
	return nil
}

func (s *GormConversationStore) Get(ctx context.Context, conversationID string) (models.ConversationReference, error) {
	var ref models.ConversationReference
	err := s.DB.WithContext(ctx).First(&ref, "conversation_id = ?", conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ref, fmt.Errorf("%w: %s", ErrConversationNotFound, conversationID)
	}
	if err != nil {
		return ref, fmt.Errorf("failed to load conversation reference: %w", err)
	}
	return ref, nil
}

func (s *GormConversationStore) Delete(ctx context.Context, conversationID string) error {
	result := s.DB.WithContext(ctx).Delete(&models.ConversationReference{}, "conversation_id = ?", conversationID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete conversation reference: %w", result.Error)
	}
	return nil
}

func (s *GormConversationStore) List(ctx context.Context) ([]models.ConversationReference, error) {
	var refs []models.ConversationReference
	if err := s.DB.WithContext(ctx).Order("conversation_id").Find(&refs).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversation references: %w", err)
	}
	return refs, nil
}

func sortedRefs(m map[string]models.ConversationReference) []models.ConversationReference {
	refs := make([]models.ConversationReference, 0, len(m))
	for _, ref := range m {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ConversationID < refs[j].ConversationID })
	return refs
}
