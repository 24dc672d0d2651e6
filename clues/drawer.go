package clues

import (
	"context"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"

	"trivia/jservice"
)

// Source is the slice of the clue API the drawer needs.
type Source interface {
	Random(ctx context.Context, count int) ([]jservice.Record, error)
	CluesByCategory(ctx context.Context, categoryID, offset int) ([]jservice.Record, error)
	Categories(ctx context.Context, count, offset int) ([]jservice.Category, error)
}

// Drawer assembles clue pools for sessions. Source errors never abort a
// draw; acquisition degrades to whatever was collected. One drawer serves
// every channel, so its RNG is lock-protected.
type Drawer struct {
	source        Source
	defaultPoints int
	rngMu         sync.Mutex
	rng           *rand.Rand
	log           zerolog.Logger
}

func NewDrawer(source Source, defaultPoints int, rng *rand.Rand, log zerolog.Logger) *Drawer {
	return &Drawer{source: source, defaultPoints: defaultPoints, rng: rng, log: log}
}

// DrawRandom collects up to num random clues, requesting batches until the
// target is met or the source stops yielding usable records.
func (d *Drawer) DrawRandom(ctx context.Context, num int, history map[int]struct{}) []Clue {
	pool := make([]Clue, 0, num)
	seen := make(map[int]struct{}, num)

	for len(pool) < num {
		records, err := d.source.Random(ctx, num+5)
		if err != nil {
			d.log.Error().Err(err).Msg("random clue fetch failed")
			break
		}
		if len(records) == 0 {
			break
		}
		before := len(pool)
		for _, rec := range records {
			if len(pool) == num {
				break
			}
			if !usable(rec, seen, history) {
				continue
			}
			pool = append(pool, New(rec, d.defaultPoints))
			seen[rec.ID] = struct{}{}
		}
		if len(pool) == before {
			// whole batch rejected, the source has nothing new for us
			break
		}
	}
	return pool
}

// DrawCategories collects up to num clues from the given categories. With
// shuffle set and more than one category, each category contributes roughly
// the first fifth of num before moving on; once every category has been
// visited, a second pass runs with the cap lifted. A single category smaller
// than num shrinks the target to what it holds. Per-category fetch errors
// log and advance to the next category.
func (d *Drawer) DrawCategories(ctx context.Context, categoryIDs []int, num int, shuffle bool, history map[int]struct{}) []Clue {
	pool := make([]Clue, 0, num)
	if len(categoryIDs) == 0 {
		return pool
	}
	seen := make(map[int]struct{}, num)
	target := num
	k := 0

	for len(pool) < target && k <= len(categoryIDs) {
		for _, id := range categoryIDs {
			if len(pool) == target || k > len(categoryIDs) {
				break
			}
			records, err := d.source.CluesByCategory(ctx, id, 0)
			if err != nil {
				d.log.Error().Err(err).Int("category", id).Msg("category clue fetch failed")
				k++
				continue
			}
			if len(records) == 0 {
				k++
				continue
			}
			cluesCount := records[0].Category.CluesCount
			if cluesCount < target && len(categoryIDs) == 1 {
				target = cluesCount
			}
			// the source pages in windows of 100
			for offset := 100; offset <= 500; offset += 100 {
				if cluesCount <= offset {
					break
				}
				page, err := d.source.CluesByCategory(ctx, id, offset)
				if err != nil {
					d.log.Error().Err(err).Int("category", id).Int("offset", offset).
						Msg("category page fetch failed")
					break
				}
				records = append(records, page...)
			}
			j := 0
			for _, rec := range records {
				if len(pool) == target || k > len(categoryIDs) {
					break
				}
				if shuffle && k == len(categoryIDs) {
					// every category visited once; recycle without the cap
					shuffle = false
					k = 0
				}
				if shuffle && float64(j) >= 0.2*float64(target) {
					break
				}
				if !usable(rec, seen, history) {
					continue
				}
				pool = append(pool, New(rec, d.defaultPoints))
				seen[rec.ID] = struct{}{}
				j++
			}
			k++
		}
	}
	return pool
}

// RandomCategoryIDs picks a random page of the category listing and returns
// the ids with enough clues to be worth playing.
func (d *Drawer) RandomCategoryIDs(ctx context.Context) ([]int, error) {
	d.rngMu.Lock()
	offset := d.rng.Intn(251) * 100
	d.rngMu.Unlock()
	categories, err := d.source.Categories(ctx, 100, offset)
	if err != nil {
		return nil, err
	}
	d.rngMu.Lock()
	d.rng.Shuffle(len(categories), func(i, j int) {
		categories[i], categories[j] = categories[j], categories[i]
	})
	d.rngMu.Unlock()
	ids := make([]int, 0, len(categories))
	for _, c := range categories {
		if c.CluesCount > 9 {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

// Finalize orders a freshly drawn pool for consumption from the tail:
// reversed so the oldest collected clue is asked first, or shuffled when
// randomized play is requested.
func (d *Drawer) Finalize(pool []Clue, shuffle bool) []Clue {
	if shuffle {
		d.rngMu.Lock()
		d.rng.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
		d.rngMu.Unlock()
		return pool
	}
	for i, j := 0, len(pool)-1; i < j; i, j = i+1, j-1 {
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool
}
