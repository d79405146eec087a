package statements

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/CarolinePackom/finance-dashboard-app-sub001/api"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/api/utils"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/categorize"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/logger"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/store"
)

type listRequest struct {
	Limit  *int `json:"limit"`
	Offset *int `json:"offset"`
}

// ListTransactionsHandler returns all transactions, optionally paginated via
// a JSON body {"limit": n, "offset": m}.
func ListTransactionsHandler(st *store.Store) http.Handler {
	return listHandler(st.ListTransactions)
}

// ListUncategorizedHandler returns transactions still on the fallback
// category and untouched by the user, for review screens.
func ListUncategorizedHandler(st *store.Store) http.Handler {
	return listHandler(st.ListUncategorized)
}

func listHandler(list func(ctx context.Context, limit, offset *int) ([]store.Transaction, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req listRequest
		switch r.Method {
		case http.MethodPost:
			// Body is optional; an empty or absent one means "everything".
			_ = json.NewDecoder(r.Body).Decode(&req)
		case http.MethodGet:
			if r.URL.Query().Get("page") != "" || r.URL.Query().Get("limit") != "" {
				params, err := utils.ExtractPagination(r)
				if err != nil {
					api.RespondWithError(w, http.StatusBadRequest, err.Error())
					return
				}
				req.Limit = &params.Limit
				req.Offset = &params.Offset
			}
		}

		txns, err := list(r.Context(), req.Limit, req.Offset)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", txns)
	})
}

type recategorizeRequest struct {
	TransactionID string `json:"transaction_id"`
	NewCategoryID string `json:"new_category_id"`
}

// RecategorizeHandler applies a user's category correction to one or more
// transactions and feeds each correction to the learner so future imports of
// the same merchant land in the corrected category. Accepts either a single
// object or {"corrections": [...]}.
func RecategorizeHandler(st *store.Store) http.Handler {
	learner := categorize.NewLearner(st)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ctx := r.Context()

		var body struct {
			recategorizeRequest
			Corrections []recategorizeRequest `json:"corrections"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		reqs := body.Corrections
		if len(reqs) == 0 {
			reqs = []recategorizeRequest{body.recategorizeRequest}
		}

		results := make([]map[string]interface{}, 0, len(reqs))
		for _, req := range reqs {
			results = append(results, applyCorrection(ctx, st, learner, req))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": api.IsBulkSuccess(results),
			"results": results,
		})
	})
}

func applyCorrection(ctx context.Context, st *store.Store, learner *categorize.Learner, req recategorizeRequest) map[string]interface{} {
	fail := func(msg string) map[string]interface{} {
		api.LogError("recategorize %s: %s", req.TransactionID, msg)
		return map[string]interface{}{"success": false, "transaction_id": req.TransactionID, "error": msg}
	}

	if req.TransactionID == "" || req.NewCategoryID == "" {
		return fail("transaction_id and new_category_id are required")
	}

	txn, err := st.GetTransaction(ctx, req.TransactionID)
	if err != nil {
		return fail(err.Error())
	}
	if txn.CategoryID == req.NewCategoryID {
		// No-op correction: nothing to learn from, nothing to write.
		return map[string]interface{}{"success": true, "transaction_id": req.TransactionID, "unchanged": true}
	}

	// Learn from the pre-correction state before the row is rewritten.
	learner.LearnFromCorrection(ctx, categorize.Correction{
		Description:        txn.Description,
		TxnType:            txn.Type,
		IsExpense:          txn.Amount < 0,
		PreviousCategoryID: txn.CategoryID,
	}, req.NewCategoryID)

	if err := st.UpdateTransactionCategory(ctx, req.TransactionID, req.NewCategoryID); err != nil {
		return fail(err.Error())
	}

	logger.GlobalLogger.LogAudit(fmt.Sprintf(
		"Recategorized %s: %s -> %s", req.TransactionID, txn.CategoryID, req.NewCategoryID))
	return map[string]interface{}{
		"success":           true,
		"transaction_id":    req.TransactionID,
		"previous_category": txn.CategoryID,
		"new_category":      req.NewCategoryID,
	}
}
