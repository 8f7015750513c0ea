// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/cache"
	"github.com/reelrank/reelrank/internal/recommend"
)

// movieKeyPrefix namespaces catalog entries in BadgerDB.
const movieKeyPrefix = "movie:"

// importChunkSize bounds how many movies a single import transaction
// writes, keeping transactions under Badger's size limits.
const importChunkSize = 100

// BadgerCatalog is the durable movie catalog. Movies live in BadgerDB;
// two in-memory indexes, rebuilt from a full scan at startup and
// maintained on every write, serve the genre-overlap and top-rated
// queries without scanning.
type BadgerCatalog struct {
	db     *badger.DB
	logger zerolog.Logger

	mu sync.RWMutex
	// byGenre maps a lowercased genre to the IDs and ratings of the
	// movies carrying it. Ratings are duplicated here so overlap
	// queries can rank candidates before touching the database.
	byGenre map[string]map[string]float64
	// display preserves the first-seen casing of each genre for
	// listings.
	display  map[string]string
	topRated *cache.RankHeap[string]
	count    int
}

// NewBadgerCatalog opens the catalog over db and rebuilds its indexes
// from the stored movies. indexSize bounds the top-rated index.
func NewBadgerCatalog(db *badger.DB, indexSize int, logger zerolog.Logger) (*BadgerCatalog, error) {
	if indexSize <= 0 {
		indexSize = DefaultConfig().TopRatedIndexSize
	}
	c := &BadgerCatalog{
		db:       db,
		logger:   logger.With().Str("component", "catalog").Logger(),
		byGenre:  make(map[string]map[string]float64),
		display:  make(map[string]string),
		topRated: cache.NewRankHeap[string](indexSize),
	}
	if err := c.rebuild(); err != nil {
		return nil, fmt.Errorf("rebuilding catalog indexes: %w", err)
	}
	return c, nil
}

// rebuild scans every stored movie and populates the in-memory indexes.
func (c *BadgerCatalog) rebuild() error {
	start := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(movieKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var movie recommend.Movie
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &movie)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", item.Key(), err)
			}
			c.indexLocked(movie)
			c.count++
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info().
		Int("movies", c.count).
		Int("genres", len(c.byGenre)).
		Dur("took", time.Since(start)).
		Msg("Catalog indexes rebuilt")
	return nil
}

// FindByID returns the movie stored under id.
func (c *BadgerCatalog) FindByID(ctx context.Context, id string) (*recommend.Movie, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: movie id required", recommend.ErrInvalidInput)
	}

	var movie recommend.Movie
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(movieKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("movie %s: %w", id, recommend.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get movie: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &movie)
		})
	})
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// FindByGenreOverlap returns movies sharing at least one genre with the
// given set, ordered by rating descending with ties broken by ID. Genre
// matching is case-insensitive.
func (c *BadgerCatalog) FindByGenreOverlap(ctx context.Context, genres []string, limit int) ([]recommend.Movie, error) {
	if len(genres) == 0 {
		return nil, nil
	}

	type candidate struct {
		id     string
		rating float64
	}

	c.mu.RLock()
	seen := make(map[string]struct{})
	candidates := make([]candidate, 0, 64)
	for _, genre := range genres {
		for id, rating := range c.byGenre[strings.ToLower(genre)] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			candidates = append(candidates, candidate{id: id, rating: rating})
		}
	}
	c.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].rating != candidates[j].rating {
			return candidates[i].rating > candidates[j].rating
		}
		return candidates[i].id < candidates[j].id
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	ids := make([]string, len(candidates))
	for i, cand := range candidates {
		ids[i] = cand.id
	}
	return c.loadMovies(ids)
}

// FindTopRated returns the highest-rated movies, best first. Results
// come from the bounded ranking index, so the largest possible answer
// is the index size.
func (c *BadgerCatalog) FindTopRated(ctx context.Context, limit int) ([]recommend.Movie, error) {
	return c.loadMovies(c.topRated.TopDesc(limit))
}

// Upsert stores or replaces a movie and updates the indexes.
func (c *BadgerCatalog) Upsert(ctx context.Context, movie *recommend.Movie) error {
	if movie == nil || movie.ID == "" {
		return fmt.Errorf("%w: movie id required", recommend.ErrInvalidInput)
	}
	if movie.Title == "" {
		return fmt.Errorf("%w: movie %s has no title", recommend.ErrInvalidInput, movie.ID)
	}

	var previous *recommend.Movie
	err := updateWithRetry(c.db, func(txn *badger.Txn) error {
		previous = nil
		var existing recommend.Movie
		found, err := readJSON(txn, movieKeyPrefix+movie.ID, &existing)
		if err != nil {
			return err
		}
		if found {
			previous = &existing
		}
		return writeJSON(txn, movieKeyPrefix+movie.ID, movie)
	})
	if err != nil {
		return fmt.Errorf("upsert movie %s: %w", movie.ID, err)
	}

	c.mu.Lock()
	if previous != nil {
		c.deindexLocked(*previous)
	} else {
		c.count++
	}
	c.indexLocked(*movie)
	c.mu.Unlock()
	return nil
}

// ImportBatch stores movies in chunked transactions. Entries without an
// ID or title are skipped. It returns how many movies were written and
// how many were skipped; on error the counts cover the chunks committed
// before the failure.
func (c *BadgerCatalog) ImportBatch(ctx context.Context, movies []recommend.Movie) (imported, skipped int, err error) {
	valid := make([]recommend.Movie, 0, len(movies))
	for _, movie := range movies {
		if movie.ID == "" || movie.Title == "" {
			skipped++
			continue
		}
		valid = append(valid, movie)
	}

	for start := 0; start < len(valid); start += importChunkSize {
		if err := ctx.Err(); err != nil {
			return imported, skipped, err
		}
		end := start + importChunkSize
		if end > len(valid) {
			end = len(valid)
		}
		chunk := valid[start:end]

		// previous versions are collected for index maintenance.
		previous := make(map[string]*recommend.Movie, len(chunk))
		err := updateWithRetry(c.db, func(txn *badger.Txn) error {
			clear(previous)
			for i := range chunk {
				movie := &chunk[i]
				var existing recommend.Movie
				found, err := readJSON(txn, movieKeyPrefix+movie.ID, &existing)
				if err != nil {
					return err
				}
				if found {
					prev := existing
					previous[movie.ID] = &prev
				}
				if err := writeJSON(txn, movieKeyPrefix+movie.ID, movie); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return imported, skipped, fmt.Errorf("importing movies %d-%d: %w", start, end-1, err)
		}

		c.mu.Lock()
		for i := range chunk {
			if prev := previous[chunk[i].ID]; prev != nil {
				c.deindexLocked(*prev)
			} else {
				c.count++
			}
			c.indexLocked(chunk[i])
		}
		c.mu.Unlock()
		imported += len(chunk)
	}

	c.logger.Info().
		Int("imported", imported).
		Int("skipped", skipped).
		Msg("Catalog import finished")
	return imported, skipped, nil
}

// Count returns the number of movies in the catalog.
func (c *BadgerCatalog) Count(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.count, nil
}

// Genres returns every genre present in the catalog, sorted, in the
// casing it first appeared with.
func (c *BadgerCatalog) Genres(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	genres := make([]string, 0, len(c.display))
	for _, name := range c.display {
		genres = append(genres, name)
	}
	c.mu.RUnlock()

	sort.Strings(genres)
	return genres, nil
}

// loadMovies fetches the movies for ids in order, skipping any that
// vanished between index lookup and read.
func (c *BadgerCatalog) loadMovies(ids []string) ([]recommend.Movie, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	movies := make([]recommend.Movie, 0, len(ids))
	err := c.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get([]byte(movieKeyPrefix + id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get movie %s: %w", id, err)
			}

			var movie recommend.Movie
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &movie)
			}); err != nil {
				return fmt.Errorf("decode movie %s: %w", id, err)
			}
			movies = append(movies, movie)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movies, nil
}

// indexLocked adds a movie to the in-memory indexes. Caller holds mu.
func (c *BadgerCatalog) indexLocked(movie recommend.Movie) {
	for _, genre := range movie.Genres {
		key := strings.ToLower(genre)
		if key == "" {
			continue
		}
		ids, ok := c.byGenre[key]
		if !ok {
			ids = make(map[string]float64)
			c.byGenre[key] = ids
			c.display[key] = genre
		}
		ids[movie.ID] = movie.Rating
	}
	c.topRated.Push(movie.ID, movie.Rating, movie.ID)
}

// deindexLocked removes a movie's previous index entries. Caller holds mu.
func (c *BadgerCatalog) deindexLocked(movie recommend.Movie) {
	for _, genre := range movie.Genres {
		key := strings.ToLower(genre)
		ids, ok := c.byGenre[key]
		if !ok {
			continue
		}
		delete(ids, movie.ID)
		if len(ids) == 0 {
			delete(c.byGenre, key)
			delete(c.display, key)
		}
	}
	c.topRated.Remove(movie.ID)
}
