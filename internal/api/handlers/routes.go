package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/dvloznov/ai-accountant/internal/api/middleware"
)

// Router groups the handlers served by the API.
type Router struct {
	Auth         *AuthHandler
	Transactions *TransactionsHandler
	Entries      *EntriesHandler
	Chat         *ChatHandler
	Reports      *ReportsHandler
	Jobs         *JobsHandler
}

// PublicPaths are served without a bearer token.
var PublicPaths = []string{"/health", "/api/auth/login", "/api/auth/register"}

// Mux builds the request multiplexer. Handlers left nil are not mounted.
func (rt Router) Mux() *http.ServeMux {
	mux := http.NewServeMux()

	if rt.Auth != nil {
		mux.HandleFunc("/api/auth/register", only(http.MethodPost, rt.Auth.Register))
		mux.HandleFunc("/api/auth/login", only(http.MethodPost, rt.Auth.Login))
		mux.HandleFunc("/api/auth/logout", only(http.MethodPost, rt.Auth.Logout))
		mux.HandleFunc("/api/auth/me", only(http.MethodGet, rt.Auth.Me))
	}

	if h := rt.Transactions; h != nil {
		mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				h.ListTransactions(w, r)
			case http.MethodPost:
				h.CreateTransaction(w, r)
			default:
				WriteMethodNotAllowed(w)
			}
		})

		mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
			id, action, _ := strings.Cut(rest, "/")
			switch {
			case id == "":
				middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
			case id == "pending" && action == "":
				only(http.MethodGet, h.ListPending)(w, r)
			case action == "status":
				if r.Method != http.MethodPut {
					WriteMethodNotAllowed(w)
					return
				}
				h.UpdateStatus(w, r, id)
			case action != "":
				http.NotFound(w, r)
			case r.Method == http.MethodGet:
				h.GetTransaction(w, r, id)
			case r.Method == http.MethodDelete:
				h.DeleteTransaction(w, r, id)
			default:
				WriteMethodNotAllowed(w)
			}
		})
	}

	if h := rt.Entries; h != nil {
		mux.HandleFunc("/api/entries", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				h.ListEntries(w, r)
			case http.MethodPost:
				h.CreateEntry(w, r)
			default:
				WriteMethodNotAllowed(w)
			}
		})

		mux.HandleFunc("/api/entries/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/api/entries/")
			id, action, _ := strings.Cut(rest, "/")
			switch {
			case id == "":
				middleware.WriteError(w, http.StatusBadRequest, "Entry ID is required")
			case id == "pending" && action == "":
				only(http.MethodGet, h.ListPending)(w, r)
			case action == "":
				if r.Method != http.MethodGet {
					WriteMethodNotAllowed(w)
					return
				}
				h.GetEntry(w, r, id)
			case r.Method != http.MethodPost:
				WriteMethodNotAllowed(w)
			case action == "approve":
				h.Approve(w, r, id)
			case action == "reject":
				h.Reject(w, r, id)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if h := rt.Chat; h != nil {
		mux.HandleFunc("/api/chat/messages", only(http.MethodPost, h.SendMessage))
		mux.HandleFunc("/api/chat/upload", only(http.MethodPost, h.UploadFile))
		mux.HandleFunc("/api/chat/confirm", only(http.MethodPost, h.Confirm))
		mux.HandleFunc("/api/chat/dismiss", only(http.MethodPost, h.Dismiss))
		mux.HandleFunc("/api/chat/history", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				h.History(w, r)
			case http.MethodDelete:
				h.ClearHistory(w, r)
			default:
				WriteMethodNotAllowed(w)
			}
		})
	}

	if h := rt.Reports; h != nil {
		mux.HandleFunc("/api/reports", only(http.MethodGet, h.Report))
		mux.HandleFunc("/api/dashboard", only(http.MethodGet, h.Dashboard))
	}

	if h := rt.Jobs; h != nil {
		mux.HandleFunc("/api/jobs", only(http.MethodGet, h.ListJobs))
		mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				WriteMethodNotAllowed(w)
				return
			}
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			h.GetJob(w, r, jobID)
		})
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return mux
}

func only(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			WriteMethodNotAllowed(w)
			return
		}
		h(w, r)
	}
}
