package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pankajverma010101-svg/predict-cpi/internal/extract"
	"github.com/pankajverma010101-svg/predict-cpi/internal/model"
	"github.com/pankajverma010101-svg/predict-cpi/internal/pricing"
	"github.com/pankajverma010101-svg/predict-cpi/internal/store"
	"github.com/pankajverma010101-svg/predict-cpi/pkg/anthropic"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the extraction and pricing API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		engine, err := loadEngine()
		if err != nil {
			return err
		}

		var client anthropic.Client
		if cfg.Anthropic.Key != "" {
			client = anthropic.NewClient(cfg.Anthropic.Key)
		}

		a := &api{
			extractor:  extract.New(),
			classifier: extract.NewTypeClassifier(client, cfg.Anthropic.Model),
			engine:     engine,
			store:      st,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: a.router(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background()) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

type api struct {
	extractor  *extract.Extractor
	classifier *extract.TypeClassifier
	engine     *pricing.Engine
	store      store.Store
}

func (a *api) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/v1/extract", a.handleExtract)
	r.Post("/v1/price", a.handlePrice)
	r.Post("/v1/submit", a.handleSubmit)
	r.Get("/v1/bids", a.handleListBids)

	return r
}

type extractRequest struct {
	Body string `json:"body"`
}

type extractResponse struct {
	extract.Result
	BusinessType string `json:"business_type"`
}

func (a *api) extractBody(ctx context.Context, body string) extractResponse {
	result := a.extractor.Extract(body)
	return extractResponse{
		Result:       result,
		BusinessType: string(a.classifier.Classify(ctx, result.Text)),
	}
}

func (a *api) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Body == "" {
		writeError(w, http.StatusBadRequest, "body is required")
		return
	}
	writeJSON(w, http.StatusOK, a.extractBody(r.Context(), req.Body))
}

func (a *api) handlePrice(w http.ResponseWriter, r *http.Request) {
	var req pricing.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := a.engine.Resolve(req)
	if err != nil {
		writePricingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type submitResponse struct {
	extractResponse
	Quotes []pricing.Response `json:"quotes"`
	BidIDs []string           `json:"bid_ids"`
}

// handleSubmit runs the full pipeline for one email body: extract, classify,
// price each record, persist.
func (a *api) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Body == "" {
		writeError(w, http.StatusBadRequest, "body is required")
		return
	}

	ex := a.extractBody(r.Context(), req.Body)
	out := submitResponse{extractResponse: ex}

	conversation := uuid.New().String()
	for i, rec := range ex.Records {
		quote, err := a.engine.Resolve(pricing.Request{
			BusinessType: ex.BusinessType,
			Market:       rec.Get("market"),
			IR:           rec.Get("ir"),
			LOI:          rec.Get("loi"),
			ClientName:   rec.Get("client_name"),
			Fields:       map[string]string(rec),
		})
		if err != nil {
			zap.L().Warn("submit: pricing failed for record", zap.Int("record", i), zap.Error(err))
			quote = pricing.Response{Status: "unpriced"}
		}
		out.Quotes = append(out.Quotes, quote)

		fields := map[string]string(rec.Clone())
		fields["business_type"] = ex.BusinessType

		bid := model.Bid{
			ConversationID: store.SuffixConversationID(conversation, i+1, len(ex.Records)),
			Subject:        ex.Metadata.Subject,
			Sender:         ex.Metadata.From,
			Fields:         fields,
			FinalCPI:       ex.FinalCPI,
			PredictedPrice: quote.PredictedPrice.String(),
			PriceSource:    string(quote.Source),
		}
		if _, err := a.store.InsertBid(r.Context(), bid); err != nil {
			zap.L().Error("submit: insert bid failed", zap.Error(err))
			continue
		}
		out.BidIDs = append(out.BidIDs, bid.ConversationID)
	}

	writeJSON(w, http.StatusOK, out)
}

func (a *api) handleListBids(w http.ResponseWriter, r *http.Request) {
	filter := store.BidFilter{Sender: r.URL.Query().Get("sender")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	bids, err := a.store.ListBids(r.Context(), filter)
	if err != nil {
		zap.L().Error("list bids failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list bids failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bids": bids})
}

// writePricingError maps the engine's error classes onto HTTP statuses.
func writePricingError(w http.ResponseWriter, err error) {
	switch {
	case eris.Is(err, pricing.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case eris.Is(err, pricing.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case eris.Is(err, pricing.ErrNoRows), eris.Is(err, pricing.ErrNoMatch):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		zap.L().Error("pricing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "pricing failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
