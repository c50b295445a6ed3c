package memory

import (
	"context"
	"fmt"
	"sort"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
)

type productRepository struct {
	tx *txRepos
}

func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	rows := make([]productRow, 0, len(r.tx.st.products))
	for _, row := range r.tx.st.products {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.product)
	}
	return out, nil
}

func (r *productRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	row, ok := r.tx.st.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return row.product, nil
}

// トランザクション全体が排他なのでロックは不要
func (r *productRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *productRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if _, exists := r.tx.st.products[p.ID]; exists {
		return model.Product{}, fmt.Errorf("duplicate key products.id=%d", p.ID)
	}
	now := r.tx.now()
	p.CreatedAt = now
	p.UpdatedAt = now

	r.tx.st.productSeq++
	r.tx.st.products[p.ID] = productRow{product: p, seq: r.tx.st.productSeq}
	return p, nil
}

// 明細が参照していたら外部キー違反と同じ扱い
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := r.tx.st.products[id]; !ok {
		return repo.ErrNotFound
	}
	for _, it := range r.tx.st.lineItems {
		if it.ProductID == id {
			return fmt.Errorf("%w: products.id=%d", repo.ErrReferenced, id)
		}
	}
	delete(r.tx.st.products, id)
	return nil
}

type inventoryRepository struct {
	tx *txRepos
}

func (r *inventoryRepository) ApplyDeltaIfEnough(ctx context.Context, productID int64, delta int64) (bool, error) {
	row, ok := r.tx.st.products[productID]
	if !ok || row.product.Stock+delta < 0 {
		return false, nil
	}
	row.product.Stock += delta
	row.product.UpdatedAt = r.tx.now()
	r.tx.st.products[productID] = row
	return true, nil
}
