package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"evm-wallet-inspector/internal/domain/entity"
	"evm-wallet-inspector/internal/domain/service"
	"evm-wallet-inspector/internal/infrastructure/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// Server exposes the inspector services over a small JSON HTTP API
type Server struct {
	events   service.EventQueryService
	decoder  service.TransactionDecoderService
	holdings service.HoldingsService
	curated  entity.CuratedList
	logger   *logger.Logger
}

// NewServer creates a new API server
func NewServer(
	events service.EventQueryService,
	decoder service.TransactionDecoderService,
	holdings service.HoldingsService,
	curated entity.CuratedList,
	log *logger.Logger,
) *Server {
	return &Server{
		events:   events,
		decoder:  decoder,
		holdings: holdings,
		curated:  curated,
		logger:   log.WithComponent("api"),
	}
}

// Handler returns the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/holdings/{wallet}", s.handleHoldings)
	mux.HandleFunc("GET /v1/tx/{hash}/decode", s.handleDecodeTransaction)
	mux.HandleFunc("GET /v1/contracts/{address}/events", s.handleQueryEvents)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	wallet, err := entity.NormalizeAddress(r.PathValue("wallet"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	includeBatch, _ := strconv.ParseBool(r.URL.Query().Get("include_batch"))

	holdings, err := s.holdings.Aggregate(r.Context(), wallet, s.curated, includeBatch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"wallet":   wallet.Hex(),
		"holdings": holdings,
	})
}

func (s *Server) handleDecodeTransaction(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("hash")
	hashBytes, err := hexutil.Decode(raw)
	if err != nil || len(hashBytes) != common.HashLength {
		s.writeError(w, fmt.Errorf("%w: transaction hash %q", entity.ErrInvalidAddress, raw))
		return
	}
	txHash := common.BytesToHash(hashBytes)

	call, err := s.decoder.DecodeTransaction(r.Context(), txHash, chainParam(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, call)
}

func (s *Server) handleQueryEvents(w http.ResponseWriter, r *http.Request) {
	address, err := entity.NormalizeAddress(r.PathValue("address"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	q := r.URL.Query()
	query := entity.EventQuery{
		Address:   address,
		Chain:     chainParam(r),
		Event:     q.Get("name"),
		Signature: q.Get("signature"),
	}
	if query.Event == "" {
		http.Error(w, `{"error":"missing event name"}`, http.StatusBadRequest)
		return
	}
	if from := q.Get("from"); from != "" {
		start, err := strconv.ParseInt(from, 10, 64)
		if err != nil {
			http.Error(w, `{"error":"invalid from block"}`, http.StatusBadRequest)
			return
		}
		query.Range.Start = start
	}
	if to := q.Get("to"); to != "" && to != "latest" {
		end, err := strconv.ParseUint(to, 10, 64)
		if err != nil {
			http.Error(w, `{"error":"invalid to block"}`, http.StatusBadRequest)
			return
		}
		query.Range.End = &end
	}

	events, err := s.events.QueryEvents(r.Context(), query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"contract": address.Hex(),
		"events":   events,
	})
}

func chainParam(r *http.Request) entity.ChainID {
	if chain := r.URL.Query().Get("chain"); chain != "" {
		return entity.ChainID(chain)
	}
	return entity.ChainEthereum
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrInvalidAddress),
		errors.Is(err, entity.ErrAmbiguousEvent),
		errors.Is(err, entity.ErrUnknownChain),
		errors.Is(err, entity.ErrDecode):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrABINotFound),
		errors.Is(err, entity.ErrEventNotFound),
		errors.Is(err, entity.ErrUnknownSelector),
		errors.Is(err, entity.ErrContractResolution),
		errors.Is(err, entity.ErrABIUnavailable):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrTransport):
		status = http.StatusBadGateway
	}

	s.logger.Warn("Request failed", zap.Int("status", status), zap.Error(err))
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
