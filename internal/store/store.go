package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/abdusco/shortly/internal"
	"github.com/abdusco/shortly/internal/validation"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/rs/zerolog/log"
)

// registryKey is the single kv key holding the whole registry as a JSON
// array. Every mutation reads and rewrites the full blob; concurrent
// processes are last-writer-wins.
const registryKey = "links"

type Store struct {
	mu      sync.Mutex
	db      *sql.DB
	baseURL string
}

func New(db *sql.DB, baseURL string) *Store {
	return &Store{db: db, baseURL: strings.TrimRight(baseURL, "/")}
}

// Create validates the URL, generates an identifier if no alias is given and
// inserts the new link at the front of the registry. A taken identifier is
// rejected outright, generated ones included.
func (s *Store) Create(ctx context.Context, originalURL, alias string) (*internal.ShortLink, error) {
	if err := validation.ValidateURL(originalURL); err != nil {
		log.Warn().Str("url", originalURL).Msg("rejected invalid url")
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	id := alias
	if id == "" {
		id = GenerateID()
	}

	log.Debug().Str("id", id).Str("url", originalURL).Msg("creating link")

	if slices.ContainsFunc(links, func(l internal.ShortLink) bool { return l.ID == id }) {
		log.Warn().Str("id", id).Msg("identifier already taken")
		return nil, internal.ErrAliasTaken
	}

	link := internal.ShortLink{
		ID:          id,
		OriginalURL: originalURL,
		ShortURL:    s.baseURL + "/" + id,
		CreatedAt:   internal.Date(time.Now().UTC()),
		Clicks:      0,
		Alias:       alias,
	}

	links = append([]internal.ShortLink{link}, links...)
	if err := s.save(ctx, links); err != nil {
		return nil, err
	}

	log.Info().Str("id", link.ID).Str("url", link.OriginalURL).Msg("link created successfully")
	return &link, nil
}

// Resolve looks up a link by identifier and records the visit by bumping its
// click counter before returning it.
func (s *Store) Resolve(ctx context.Context, id string) (*internal.ShortLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(links, func(l internal.ShortLink) bool { return l.ID == id })
	if i < 0 {
		log.Debug().Str("id", id).Msg("link not found")
		return nil, internal.ErrLinkNotFound
	}

	links[i].Clicks++
	if err := s.save(ctx, links); err != nil {
		return nil, err
	}

	link := links[i]
	log.Debug().Str("id", id).Int64("clicks", link.Clicks).Msg("link resolved")
	return &link, nil
}

// Delete removes the link with the given identifier. Deleting an unknown
// identifier is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.load(ctx)
	if err != nil {
		return err
	}

	remaining := slices.DeleteFunc(links, func(l internal.ShortLink) bool { return l.ID == id })
	if len(remaining) == len(links) {
		return nil
	}

	if err := s.save(ctx, remaining); err != nil {
		return err
	}

	log.Info().Str("id", id).Msg("link deleted")
	return nil
}

// List returns all links in display order, newest first.
func (s *Store) List(ctx context.Context) ([]internal.ShortLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) ([]internal.ShortLink, error) {
	executor := goqu.New("sqlite3", s.db)

	query := executor.From("kv").Where(goqu.Ex{"key": registryKey}).Select("value")

	var value string
	found, err := query.Executor().ScanValContext(ctx, &value)
	if err != nil {
		log.Error().Err(err).Msg("failed to read registry")
		return nil, err
	}

	if !found {
		return []internal.ShortLink{}, nil
	}

	var links []internal.ShortLink
	if err := json.Unmarshal([]byte(value), &links); err != nil {
		log.Error().Err(err).Msg("failed to parse registry")
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	return links, nil
}

func (s *Store) save(ctx context.Context, links []internal.ShortLink) error {
	data, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("serialize registry: %w", err)
	}

	executor := goqu.New("sqlite3", s.db)

	query := executor.Insert("kv").
		Rows(goqu.Record{"key": registryKey, "value": string(data)}).
		OnConflict(goqu.DoUpdate("key", goqu.Record{"value": string(data)}))

	if _, err := query.Executor().ExecContext(ctx); err != nil {
		log.Error().Err(err).Msg("failed to write registry")
		return err
	}

	return nil
}

func GenerateID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	id := make([]byte, 6)
	for i := range id {
		id[i] = charset[rand.IntN(len(charset))]
	}
	return string(id)
}
