package ledger

import (
	"sort"

	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
)

// StockBalance implementa la regla del libro: stock = Σ IN − Σ OUT (en bolsas).
func StockBalance(moves []*entity.StockMove) int64 {
	var total int64
	for _, m := range moves {
		total += m.SignedQty()
	}
	return total
}

// RequestedBags agrupa las bolsas pedidas por producto. Devuelve también los IDs
// en orden de bloqueo (ver LockOrder).
func RequestedBags(items []*entity.SaleItem) (map[string]int64, []string) {
	requested := make(map[string]int64, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		requested[it.ProductID] += it.QtyBag
		ids = append(ids, it.ProductID)
	}
	return requested, LockOrder(ids)
}

// LockOrder devuelve los IDs sin repetir y ordenados. Toda transacción que bloquea
// filas de productos lo hace en este orden, así dos transacciones no se esperan en ciclo.
func LockOrder(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
