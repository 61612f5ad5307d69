// Package resolver tracks the occupied names of each directory touched by a
// plan and turns desired destination names into guaranteed-unique ones.
package resolver

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/harrison/bulkrename/internal/models"
)

// MaxAttempts bounds the numeric suffixes tried for one desired name.
const MaxAttempts = 10000

// ErrExhausted is returned when no free name was found within MaxAttempts.
var ErrExhausted = errors.New("conflict resolution exhausted")

type provenance int

const (
	onDisk provenance = iota
	claimed
)

// Resolution describes the outcome of ClaimOverwrite.
type Resolution struct {
	Name       string // Final name claimed
	Conflict   bool   // Name was changed by suffixing
	Overwrites bool   // Name replaces a file on disk outside the batch
}

// Resolver is the single source of truth for destination-name uniqueness.
// One instance should serve a directory at a time. All methods are
// goroutine-safe.
type Resolver struct {
	mu              sync.Mutex
	caseInsensitive bool
	dirs            map[string]map[string]provenance // dir key → folded name → provenance
}

// New creates an empty resolver. When caseInsensitive is set, names are
// stored and compared case-folded.
func New(caseInsensitive bool) *Resolver {
	return &Resolver{
		caseInsensitive: caseInsensitive,
		dirs:            make(map[string]map[string]provenance),
	}
}

func (r *Resolver) names(dir string) map[string]provenance {
	key := models.NormalizeName(filepath.Clean(dir), r.caseInsensitive)
	set, ok := r.dirs[key]
	if !ok {
		set = make(map[string]provenance)
		r.dirs[key] = set
	}
	return set
}

func (r *Resolver) fold(name string) string {
	return models.NormalizeName(name, r.caseInsensitive)
}

// SeedExisting marks names already present on disk as occupied.
func (r *Resolver) SeedExisting(dir string, names []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.names(dir)
	for _, n := range names {
		k := r.fold(n)
		if _, exists := set[k]; !exists {
			set[k] = onDisk
		}
	}
}

// Release frees names that the current batch will vacate.
func (r *Resolver) Release(dir string, names []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.names(dir)
	for _, n := range names {
		delete(set, r.fold(n))
	}
}

// IsOccupied reports whether name is taken in dir.
func (r *Resolver) IsOccupied(dir, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.names(dir)[r.fold(name)]
	return exists
}

// Claim takes name if it is free and reports whether it did.
func (r *Resolver) Claim(dir, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.names(dir)
	k := r.fold(name)
	if _, exists := set[k]; exists {
		return false
	}
	set[k] = claimed
	return true
}

// Resolve claims desired if it is free. Otherwise it claims the first free
// candidate of the form stem_N.ext and reports a conflict.
func (r *Resolver) Resolve(dir, desired string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.resolveLocked(r.names(dir), dir, desired)
}

func (r *Resolver) resolveLocked(set map[string]provenance, dir, desired string) (string, bool, error) {
	if _, exists := set[r.fold(desired)]; !exists {
		set[r.fold(desired)] = claimed
		return desired, false, nil
	}

	stem, ext := models.SplitName(desired)
	for i := 1; i <= MaxAttempts; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		k := r.fold(candidate)
		if _, exists := set[k]; !exists {
			set[k] = claimed
			return candidate, true, nil
		}
	}
	return "", false, fmt.Errorf("%w: no free name for %q in %s after %d attempts", ErrExhausted, desired, dir, MaxAttempts)
}

// ClaimOverwrite implements the overwrite policy. A name held only by a file
// on disk outside the batch is taken over; a name already claimed by the
// batch is resolved by suffixing, so two operations never share a destination.
func (r *Resolver) ClaimOverwrite(dir, desired string) (Resolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.names(dir)
	k := r.fold(desired)
	if p, exists := set[k]; exists && p == onDisk {
		set[k] = claimed
		return Resolution{Name: desired, Overwrites: true}, nil
	}

	name, conflict, err := r.resolveLocked(set, dir, desired)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Name: name, Conflict: conflict}, nil
}
