package statements

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/CarolinePackom/finance-dashboard-app-sub001/api"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/categorize"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/store"
)

// CreateCategoryHandler upserts a user-defined category. User categories
// shadow built-in ones with the same id.
func CreateCategoryHandler(st *store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			CategoryID string `json:"category_id"`
			Name       string `json:"name"`
			Kind       string `json:"kind"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		req.CategoryID = strings.TrimSpace(strings.ToLower(req.CategoryID))
		if req.CategoryID == "" || req.Name == "" {
			api.RespondWithError(w, http.StatusBadRequest, "category_id and name are required")
			return
		}

		kind := categorize.CategoryKind(req.Kind)
		switch kind {
		case categorize.KindExpense, categorize.KindIncome, categorize.KindAny:
		case "":
			kind = categorize.KindAny
		default:
			api.RespondWithError(w, http.StatusBadRequest, "kind must be expense, income or any")
			return
		}

		err := st.CreateCategory(r.Context(), categorize.Category{
			ID:   req.CategoryID,
			Name: req.Name,
			Kind: kind,
		})
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithResult(w, true, "")
	})
}

// ListCategoriesHandler returns the merged category set (defaults plus user
// definitions) with the rules attached to each category.
func ListCategoriesHandler(st *store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ctx := r.Context()

		snap, err := st.LoadRuleSnapshot(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		rules, err := st.ListRules(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		byCategory := make(map[string][]categorize.Rule)
		for _, rule := range rules {
			byCategory[rule.CategoryID] = append(byCategory[rule.CategoryID], rule)
		}

		type categoryRow struct {
			categorize.Category
			Rules []categorize.Rule `json:"rules"`
		}
		out := make([]categoryRow, 0, len(snap.Categories))
		for _, cat := range snap.CategoryList() {
			row := categoryRow{Category: cat, Rules: byCategory[cat.ID]}
			if row.Rules == nil {
				row.Rules = []categorize.Rule{}
			}
			out = append(out, row)
		}
		api.RespondWithPayload(w, true, "", out)
	})
}

// CreateRuleHandler persists a user-authored categorization rule.
func CreateRuleHandler(st *store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			CategoryID string `json:"category_id"`
			Pattern    string `json:"pattern"`
			Field      string `json:"field"`
			Priority   int    `json:"priority"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if req.CategoryID == "" || strings.TrimSpace(req.Pattern) == "" {
			api.RespondWithError(w, http.StatusBadRequest, "category_id and pattern are required")
			return
		}

		field := categorize.Field(req.Field)
		if field == "" {
			field = categorize.FieldDescription
		}
		if field != categorize.FieldDescription && field != categorize.FieldType {
			api.RespondWithError(w, http.StatusBadRequest, "field must be description or type")
			return
		}
		if req.Priority <= 0 {
			req.Priority = 100
		}

		rule := categorize.Rule{
			ID:         uuid.New().String(),
			CategoryID: req.CategoryID,
			Pattern:    strings.TrimSpace(req.Pattern),
			Field:      field,
			Priority:   req.Priority,
			IsActive:   true,
		}
		if err := st.CreateRule(r.Context(), rule); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "rule_id": rule.ID})
	})
}

// ToggleRuleHandler enables or disables a stored rule. Disabling is the way
// to retire a learned rule that went wrong; nothing is deleted.
func ToggleRuleHandler(st *store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			RuleID   string `json:"rule_id"`
			IsActive bool   `json:"is_active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if req.RuleID == "" {
			api.RespondWithError(w, http.StatusBadRequest, "rule_id is required")
			return
		}

		if err := st.SetRuleActive(r.Context(), req.RuleID, req.IsActive); err != nil {
			api.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		api.RespondWithResult(w, true, "")
	})
}
