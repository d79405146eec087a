package statements

import (
	"encoding/json"
	"net/http"

	"github.com/CarolinePackom/finance-dashboard-app-sub001/api"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/jobs"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/store"
)

const maxManualBatchSize = 5000

// RunRecategorizationHandler triggers the re-categorization job on demand,
// outside its nightly schedule. Useful right after adding rules.
func RunRecategorizationHandler(st *store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			BatchSize int `json:"batch_size"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		if req.BatchSize <= 0 {
			req.BatchSize = 500
		}
		if req.BatchSize > maxManualBatchSize {
			req.BatchSize = maxManualBatchSize
		}

		updated, err := jobs.ProcessUncategorizedTransactions(st, req.BatchSize)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"updated": updated,
		})
	})
}
