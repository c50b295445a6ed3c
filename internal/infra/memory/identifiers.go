package memory

import (
	"context"
	"slices"

	"bakery/internal/domain/model"
)

type identifierRepository struct {
	tx *txRepos
}

func (r *identifierRepository) LockSmallestExcluded(ctx context.Context, kind model.IdentifierKind) (int64, bool, error) {
	ids := r.tx.st.excluded[kind]
	if len(ids) == 0 {
		return 0, false, nil
	}
	first := true
	var smallest int64
	for id := range ids {
		if first || id < smallest {
			smallest = id
			first = false
		}
	}
	return smallest, true, nil
}

func (r *identifierRepository) DeleteExcluded(ctx context.Context, kind model.IdentifierKind, id int64) error {
	delete(r.tx.st.excluded[kind], id)
	return nil
}

func (r *identifierRepository) InsertExcluded(ctx context.Context, kind model.IdentifierKind, id int64) error {
	ids, ok := r.tx.st.excluded[kind]
	if !ok {
		ids = make(map[int64]struct{})
		r.tx.st.excluded[kind] = ids
	}
	ids[id] = struct{}{}
	return nil
}

func (r *identifierRepository) ClearExcluded(ctx context.Context, kind model.IdentifierKind) (int64, error) {
	n := int64(len(r.tx.st.excluded[kind]))
	delete(r.tx.st.excluded, kind)
	return n, nil
}

func (r *identifierRepository) ListExcluded(ctx context.Context, kind model.IdentifierKind) ([]int64, error) {
	out := make([]int64, 0, len(r.tx.st.excluded[kind]))
	for id := range r.tx.st.excluded[kind] {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

func (r *identifierRepository) NextValue(ctx context.Context, kind model.IdentifierKind) (int64, error) {
	r.tx.st.counters[kind]++
	return r.tx.st.counters[kind], nil
}
