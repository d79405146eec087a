package statements

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	"github.com/CarolinePackom/finance-dashboard-app-sub001/api"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/categorize"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/checksum"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/config"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/ingest"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/logger"
	"github.com/CarolinePackom/finance-dashboard-app-sub001/internal/store"
)

// importedFiles flags re-uploads of a statement already seen by this process.
// Duplicates still import; the response carries a warning.
var importedFiles = checksum.NewRegistry()

// fileResult is the per-file outcome reported back for an upload or preview.
type fileResult struct {
	Filename     string               `json:"filename"`
	BatchID      string               `json:"batch_id,omitempty"`
	Rows         int                  `json:"rows"`
	Transactions []store.Transaction  `json:"transactions,omitempty"`
	Errors       []ingest.ParseError  `json:"errors"`
	Mapping      ingest.ColumnMapping `json:"detected_mapping"`
	DuplicateOf  string               `json:"duplicate_of,omitempty"`
}

// UploadStatementHandler imports one or more statement files: parse,
// categorize with a fresh rule snapshot, persist. Row-level defects never
// fail the upload; they come back in the per-file error lists.
func UploadStatementHandler(st *store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ctx := r.Context()

		if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Failed to parse multipart form")
			return
		}
		files := r.MultipartForm.File["file"]
		if len(files) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, "No files uploaded")
			return
		}

		// One snapshot for the whole request; corrections made after this
		// point are picked up by the next import.
		snap, err := st.LoadRuleSnapshot(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Failed to load rules: "+err.Error())
			return
		}
		engine := categorize.NewEngine(snap)

		results := make([]fileResult, 0, len(files))
		batchIDs := make([]string, 0, len(files))
		for _, fh := range files {
			res, digest, err := parseUpload(fh)
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest,
					fmt.Sprintf("Failed to read %s: %v", fh.Filename, err))
				return
			}

			duplicateOf, seen := importedFiles.Check(digest, fh.Filename)
			if seen {
				logger.GlobalLogger.LogAudit(fmt.Sprintf(
					"Duplicate upload detected: %s matches earlier import %s", fh.Filename, duplicateOf))
			}

			batchID := uuid.New().String()
			txns := materialize(res, engine, batchID)
			if err := st.InsertTransactions(ctx, txns); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError,
					fmt.Sprintf("Failed to store %s: %v", fh.Filename, err))
				return
			}

			logger.GlobalLogger.LogAudit(fmt.Sprintf(
				"Imported %s: %d transactions, %d row errors (batch %s)",
				fh.Filename, len(txns), len(res.Errors), batchID))

			batchIDs = append(batchIDs, batchID)
			results = append(results, fileResult{
				Filename:    res.Filename,
				BatchID:     batchID,
				Rows:        len(txns),
				Errors:      res.Errors,
				Mapping:     res.Mapping,
				DuplicateOf: duplicateOf,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   true,
			"batch_ids": batchIDs,
			"files":     results,
		})
	})
}

// PreviewStatementHandler parses and categorizes without persisting, so the
// user can check the detected mapping before committing an import.
func PreviewStatementHandler(st *store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Failed to parse multipart form")
			return
		}
		files := r.MultipartForm.File["file"]
		if len(files) != 1 {
			api.RespondWithError(w, http.StatusBadRequest, "Exactly one file expected for preview")
			return
		}

		snap, err := st.LoadRuleSnapshot(r.Context())
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Failed to load rules: "+err.Error())
			return
		}
		engine := categorize.NewEngine(snap)

		res, _, err := parseUpload(files[0])
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Failed to read file: "+err.Error())
			return
		}
		txns := materialize(res, engine, "")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"file": fileResult{
				Filename:     res.Filename,
				Rows:         len(txns),
				Transactions: txns,
				Errors:       res.Errors,
				Mapping:      res.Mapping,
			},
		})
	})
}

func parseUpload(fh *multipart.FileHeader) (*ingest.ParseResult, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	res, err := ingest.ParseStatement(fh.Filename, bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	return res, checksum.Digest(data), nil
}

// materialize turns parsed rows into transaction entities: signed amount,
// detected type, categorization result, fresh identifiers.
func materialize(res *ingest.ParseResult, engine *categorize.Engine, batchID string) []store.Transaction {
	txns := make([]store.Transaction, 0, len(res.Rows))
	for _, row := range res.Rows {
		amount := row.Amount()
		isExpense := amount < 0

		txnType := row.Type
		if txnType == "" {
			txnType = engine.DetectType(row.Description)
		}

		txns = append(txns, store.Transaction{
			ID:          uuid.New().String(),
			BatchID:     batchID,
			Filename:    res.Filename,
			Date:        row.Date,
			Description: row.Description,
			Type:        txnType,
			Amount:      amount,
			CategoryID:  engine.Categorize(row.Description, row.Type, isExpense),
			Source:      "import",
		})
	}
	return txns
}
