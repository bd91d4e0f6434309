package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/stvnw/fundval"
	"github.com/stvnw/fundval/date"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loadState fetches funds and the price cache, rebased against the funds'
// split histories. Every read endpoint starts here.
func (s *Server) loadState(r *http.Request) ([]fundval.Fund, *fundval.PriceCache, error) {
	funds, err := s.store.Funds(r.Context())
	if err != nil {
		return nil, nil, err
	}
	cache, err := s.store.PriceCache(r.Context())
	if err != nil {
		return nil, nil, err
	}
	return funds, cache.Rebase(funds), nil
}

func (s *Server) handleListFunds(w http.ResponseWriter, r *http.Request) {
	funds, cache, err := s.loadState(r)
	if err != nil {
		s.log.Error().Err(err).Msg("Listing funds failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"funds":   funds,
		"cache":   cache,
		"gains":   fundval.ComputeRowGains(funds, cache),
		"summary": fundval.FundsCachedValue(funds, cache, s.now()),
	})
}

func (s *Server) handleSaveFund(w http.ResponseWriter, r *http.Request) {
	var f fundval.Fund
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.ID == 0 {
		s.writeError(w, http.StatusBadRequest, "fund id must be set")
		return
	}
	if strings.TrimSpace(f.Name) == "" {
		s.writeError(w, http.StatusBadRequest, "fund name must not be empty")
		return
	}
	if err := s.store.SaveFund(r.Context(), f); err != nil {
		s.log.Error().Err(err).Int64("id", int64(f.ID)).Msg("Saving fund failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleDeleteFund(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid fund id")
		return
	}
	if err := s.store.DeleteFund(r.Context(), fundval.Id(id)); err != nil {
		s.log.Error().Err(err).Int64("id", id).Msg("Deleting fund failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFundItems(w http.ResponseWriter, r *http.Request) {
	funds, cache, err := s.loadState(r)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	viewSold := queryBool(r, "sold")
	today := date.FromTime(s.now())
	s.writeJSON(w, http.StatusOK, fundval.FundItems(funds, cache, today, viewSold))
}

func (s *Server) handleFundLines(w http.ResponseWriter, r *http.Request) {
	funds, cache, err := s.loadState(r)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	viewSold := queryBool(r, "sold")
	today := date.FromTime(s.now())
	s.writeJSON(w, http.StatusOK, fundval.FundLines(funds, cache, today, viewSold))
}

func (s *Server) handleFundLinesMode(w http.ResponseWriter, r *http.Request) {
	mode, err := fundval.ParseMode(chi.URLParam(r, "mode"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	funds, cache, err := s.loadState(r)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	viewSold := queryBool(r, "sold")
	today := date.FromTime(s.now())
	lines := fundval.FundLines(funds, cache, today, viewSold)[mode]
	if lines == nil {
		lines = []fundval.ChartLine{}
	}
	s.writeJSON(w, http.StatusOK, lines)
}

func (s *Server) handleFundPrices(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid fund id")
		return
	}
	_, cache, err := s.loadState(r)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	points := fundval.PricesForRow(cache, fundval.Id(id))
	if points == nil {
		s.writeError(w, http.StatusNotFound, "fund has no price history")
		return
	}
	s.writeJSON(w, http.StatusOK, points)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	funds, cache, err := s.loadState(r)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	today := date.FromTime(s.now())
	items := fundval.Portfolio(funds, cache, today)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"on":    today,
		"items": items,
	})
}

func (s *Server) handleCash(w http.ResponseWriter, r *http.Request) {
	snap, ok, err := s.store.LatestSnapshot(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "no net worth snapshot recorded")
		return
	}
	funds, cache, err := s.loadState(r)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	spending := queryFloat(r, "spending", 0)
	today := date.FromTime(s.now())
	s.writeJSON(w, http.StatusOK, fundval.ComputeCashBreakdown(snap, funds, cache, spending, today))
}

func (s *Server) handleAddSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap fundval.NetWorthSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if snap.Date.IsZero() {
		s.writeError(w, http.StatusBadRequest, "snapshot date must be set")
		return
	}
	if err := s.store.AddSnapshot(r.Context(), snap); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleBuckets(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.store.Buckets(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	investment, err := s.store.InvestmentBucket(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	funds, _, err := s.loadState(r)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	months := int(queryFloat(r, "months", 1))
	if months < 1 {
		months = 1
	}
	scaled := fundval.ScaleExpectedValues(buckets, months)
	display, err := fundval.MoveBucketRemainderToCatchAll(scaled)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	today := date.FromTime(s.now())
	invested := fundval.InvestmentsBetweenDates(funds, today.AddMonths(-months), today)
	expected := fundval.ExpectedTotals(scaled, investment)
	actual := fundval.ActualTotals(display, invested)
	healthy, health := fundval.HealthStatus(expected, actual)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"buckets":          display,
		"investmentBucket": investment,
		"expected":         expected,
		"actual":           actual,
		"healthy":          healthy,
		"health":           health,
	})
}

func (s *Server) handleUpsertBucket(w http.ResponseWriter, r *http.Request) {
	var b fundval.Bucket
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.store.UpsertBucket(r.Context(), b)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	b.ID = id
	s.writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleSetInvestmentBucket(w http.ResponseWriter, r *http.Request) {
	var b fundval.InvestmentBucket
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.SetInvestmentBucket(r.Context(), b.ExpectedValue); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, b)
}

// handleRefreshQuotes fetches live quotes for every fund with a ticker and
// folds them into the stored price cache.
func (s *Server) handleRefreshQuotes(w http.ResponseWriter, r *http.Request) {
	if s.quotes == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no quote source configured")
		return
	}
	funds, err := s.store.Funds(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	cache, err := s.store.PriceCache(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	quotes, fetched, err := s.quotes.Fetch(funds)
	if err != nil {
		s.log.Error().Err(err).Msg("Quote fetch failed")
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	merged := cache.MergeLiveQuotes(quotes, fetched)
	if err := s.store.SavePriceCache(r.Context(), merged); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Info().Int("quotes", len(quotes)).Msg("Merged live quotes")
	s.writeJSON(w, http.StatusOK, map[string]any{
		"quoted":  len(quotes),
		"fetched": fetched,
	})
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
