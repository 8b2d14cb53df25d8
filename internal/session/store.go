package session

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookchat/bookchat/internal/chat"
	"github.com/bookchat/bookchat/internal/log"
)

// Store owns the persisted session and conversation transcript.
//
// Every operation is fail-soft: storage and parse errors are logged at debug
// level and reported as absence, never returned. The identifiers involved
// disambiguate local state only, so no cryptographic strength is required of
// them.
type Store struct {
	storage Storage
	logger  log.Logger
}

// New creates a Store over the given storage capability.
// A nil logger discards output.
func New(storage Storage, logger log.Logger) *Store {
	if storage == nil {
		storage = Discard{}
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{storage: storage, logger: logger}
}

// Current returns the persisted session if present and unexpired. An expired
// stored session is deleted together with its transcript before absence is
// reported.
func (s *Store) Current() (*Session, bool) {
	data, err := s.storage.Read(keySession)
	if err != nil {
		s.logger.Debug("no stored session", "error", err)
		return nil, false
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.Debug("malformed stored session", "error", err)
		return nil, false
	}

	if !sess.Valid(time.Now()) {
		s.logger.Debug("stored session expired", "id", sess.ID, "expired_at", sess.ExpiresAt)
		s.Delete()
		return nil, false
	}

	return &sess, true
}

// Create builds and persists a new session, overwriting any previous one.
// The per-installation browser identifier is reused when present and created
// once otherwise.
func (s *Store) Create(pageContext string) *Session {
	now := time.Now()
	sess := &Session{
		ID:          uuid.New(),
		BrowserID:   s.browserID(),
		CreatedAt:   now,
		ExpiresAt:   now.Add(TTL),
		PageContext: pageContext,
	}

	data, err := json.Marshal(sess)
	if err != nil {
		s.logger.Debug("marshal session", "error", err)
		return sess
	}
	if err := s.storage.Write(keySession, data); err != nil {
		s.logger.Debug("persist session", "error", err)
	}

	s.logger.Debug("created session", "id", sess.ID, "expires_at", sess.ExpiresAt)
	return sess
}

// SaveConversation persists the full message list, replacing prior content.
func (s *Store) SaveConversation(messages []chat.Message) {
	data, err := json.Marshal(messages)
	if err != nil {
		s.logger.Debug("marshal conversation", "error", err)
		return
	}
	if err := s.storage.Write(keyConversation, data); err != nil {
		s.logger.Debug("persist conversation", "error", err)
	}
}

// ConversationHistory returns the persisted transcript, or absence when
// nothing is stored or the stored value does not parse.
func (s *Store) ConversationHistory() ([]chat.Message, bool) {
	data, err := s.storage.Read(keyConversation)
	if err != nil {
		s.logger.Debug("no stored conversation", "error", err)
		return nil, false
	}

	var messages []chat.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		s.logger.Debug("malformed stored conversation", "error", err)
		return nil, false
	}
	return messages, true
}

// ClearConversation deletes the persisted transcript only. The session
// itself remains valid.
func (s *Store) ClearConversation() {
	if err := s.storage.Remove(keyConversation); err != nil {
		s.logger.Debug("clear conversation", "error", err)
	}
}

// Delete removes both the session and its transcript. The browser
// identifier is retained.
func (s *Store) Delete() {
	if err := s.storage.Remove(keySession); err != nil {
		s.logger.Debug("delete session", "error", err)
	}
	if err := s.storage.Remove(keyConversation); err != nil {
		s.logger.Debug("delete conversation", "error", err)
	}
}

// browserID returns the stable per-installation identifier, creating and
// persisting it on first use. A storage failure yields a fresh identifier
// for this process only.
func (s *Store) browserID() uuid.UUID {
	if data, err := s.storage.Read(keyBrowserID); err == nil {
		if id, err := uuid.Parse(strings.TrimSpace(string(data))); err == nil {
			return id
		}
		s.logger.Debug("malformed stored browser id, regenerating")
	}

	id := uuid.New()
	if err := s.storage.Write(keyBrowserID, []byte(id.String())); err != nil {
		s.logger.Debug("persist browser id", "error", err)
	}
	return id
}
