package statements

import (
	"fmt"
	"log"
	"net/http"

	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/serviceiface"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/store"
)

// StatementsService exposes statement ingestion, transaction review and
// categorization management over HTTP on its own port, fronted by the
// gateway.
type StatementsService struct {
	config map[string]interface{}
	store  *store.Store
}

func NewStatementsService(cfg map[string]interface{}, st *store.Store) serviceiface.Service {
	return &StatementsService{config: cfg, store: st}
}

func (s *StatementsService) Name() string {
	return "statements"
}

func (s *StatementsService) Start() error {
	port := 7143
	if p, ok := s.config["port"].(int); ok && p > 0 {
		port = p
	}
	go StartStatementsService(s.store, port)
	return nil
}

func (s *StatementsService) Stop() error {
	return nil
}

// StartStatementsService wires the handlers and serves until the process
// exits.
func StartStatementsService(st *store.Store, port int) {
	mux := http.NewServeMux()

	mux.Handle("/statements/upload", UploadStatementHandler(st))
	mux.Handle("/statements/preview", PreviewStatementHandler(st))
	mux.Handle("/transactions/all", ListTransactionsHandler(st))
	mux.Handle("/transactions/uncategorized", ListUncategorizedHandler(st))
	mux.Handle("/transactions/recategorize", RecategorizeHandler(st))
	mux.Handle("/categories/create", CreateCategoryHandler(st))
	mux.Handle("/categories/all", ListCategoriesHandler(st))
	mux.Handle("/rules/create", CreateRuleHandler(st))
	mux.Handle("/rules/toggle", ToggleRuleHandler(st))
	mux.Handle("/jobs/categorize/run", RunRecategorizationHandler(st))

	log.Printf("Statements Service started on :%d", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
		log.Fatalf("Statements Service failed: %v", err)
	}
}
