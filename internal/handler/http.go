package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/arcade-leaderboard/internal/config"
	"github.com/arcade-leaderboard/internal/domain"
	"github.com/arcade-leaderboard/internal/postgres"
	"github.com/arcade-leaderboard/internal/redis"
	"github.com/arcade-leaderboard/internal/service"
	"github.com/arcade-leaderboard/internal/worker"
)

// Handler provides HTTP handlers for the arcade API
type Handler struct {
	scores  *service.ScoreService
	profile *service.ProfileService
	rank    *service.RankService
	shop    *service.ShopService
	store    *postgres.Repository
	boards   *redis.Boards
	assets   *redis.AssetCache
	snapshot *worker.SnapshotWorker
	config   *config.BoardConfig
	logger   *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	scores *service.ScoreService,
	profile *service.ProfileService,
	rank *service.RankService,
	shop *service.ShopService,
	store *postgres.Repository,
	boards *redis.Boards,
	assets *redis.AssetCache,
	snapshot *worker.SnapshotWorker,
	cfg *config.BoardConfig,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		scores:   scores,
		profile:  profile,
		rank:     rank,
		shop:     shop,
		store:    store,
		boards:   boards,
		assets:   assets,
		snapshot: snapshot,
		config:   cfg,
		logger:   logger,
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Score operations
		r.Post("/scores", h.SubmitScore)
		r.Post("/scores/batch", h.SubmitScoreBatch)

		// Games and boards
		r.Route("/games", func(r chi.Router) {
			r.Get("/", h.ListGames)
			r.Route("/{gameID}", func(r chi.Router) {
				r.Get("/top", h.GetTop)
				r.Get("/players/{playerID}/rank", h.GetPlayerRank)
			})
		})

		// Player profiles
		r.Route("/players/{playerID}", func(r chi.Router) {
			r.Get("/profile", h.GetProfile)
			r.Get("/avatars", h.GetOwnedAvatars)
		})

		// Shop
		r.Route("/shop", func(r chi.Router) {
			r.Get("/catalog", h.GetCatalog)
			r.Post("/purchase", h.Purchase)
		})

		// Avatar assets
		r.Get("/avatars/{avatarID}/image", h.GetAvatarImage)
	})

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess writes a successful JSON response
func (h *Handler) writeSuccess(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError writes an error JSON response
func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   err.Error(),
	})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]interface{}{
		"status":          "ready",
		"snapshot_worker": h.snapshot.IsRunning(),
	})
}

// SubmitScore handles score submission
func (h *Handler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var submission domain.ScoreSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if submission.PlayerID == "" || submission.GameID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if err := h.scores.SubmitScore(r.Context(), submission); err != nil {
		if domain.IsNotFoundError(err) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to submit score", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, map[string]string{"status": "accepted"})
}

// SubmitScoreBatch handles batch score submission
func (h *Handler) SubmitScoreBatch(w http.ResponseWriter, r *http.Request) {
	var batch domain.BatchScoreSubmission
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if len(batch.Scores) == 0 {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if err := h.scores.SubmitScoreBatch(r.Context(), batch); err != nil {
		h.logger.Error("failed to submit score batch", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, map[string]interface{}{
		"status":   "accepted",
		"received": len(batch.Scores),
	})
}

// ListGames returns all games
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.store.ListGames(r.Context())
	if err != nil {
		h.logger.Error("failed to list games", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, games)
}

// GetTop returns the top N entries of a game's board snapshot
func (h *Handler) GetTop(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if gameID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	limit := h.config.DefaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if limit > h.config.MaxLimit {
		limit = h.config.MaxLimit
	}

	game, err := h.store.GetGame(r.Context(), gameID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to get game", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	entries, err := h.boards.TopN(r.Context(), gameID, limit, game.LowerIsBetter)
	if err != nil {
		h.logger.Error("failed to get top", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	total, err := h.boards.Count(r.Context(), gameID)
	if err != nil {
		h.logger.Warn("failed to count board", "game_id", gameID, "error", err)
		total = int64(len(entries))
	}

	h.writeSuccess(w, map[string]interface{}{
		"entries":       entries,
		"total_players": total,
	})
}

// GetPlayerRank returns a player's best score and rank for a game
func (h *Handler) GetPlayerRank(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	playerID := chi.URLParam(r, "playerID")
	if gameID == "" || playerID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	ranked, err := h.rank.RankOf(r.Context(), playerID, gameID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to get player rank", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, ranked)
}

// GetProfile returns a player's public profile card
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	profile, err := h.profile.PublicProfile(r.Context(), playerID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to get profile", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, profile)
}

// GetOwnedAvatars returns the avatars a player owns
func (h *Handler) GetOwnedAvatars(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	avatarIDs, err := h.store.GetOwnedAvatars(r.Context(), playerID)
	if err != nil {
		h.logger.Error("failed to get owned avatars", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, map[string]interface{}{"avatar_ids": avatarIDs})
}

// GetCatalog returns all active shop listings
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListActiveListings(r.Context())
	if err != nil {
		h.logger.Error("failed to get catalog", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, items)
}

// Purchase executes an avatar purchase
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req domain.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if req.PlayerID == "" || req.AvatarID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	receipt, err := h.shop.Purchase(r.Context(), req.PlayerID, req.AvatarID)
	if err != nil {
		// Purchase rejections are terminal outcomes reported verbatim.
		switch {
		case err == domain.ErrAlreadyOwned:
			h.writeError(w, http.StatusConflict, err)
		case err == domain.ErrInsufficientFunds:
			h.writeError(w, http.StatusPaymentRequired, err)
		case domain.IsNotFoundError(err) || err == domain.ErrItemNotAvailable:
			h.writeError(w, http.StatusNotFound, err)
		default:
			h.logger.Error("purchase failed", "error", err)
			h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		}
		return
	}

	h.writeSuccess(w, receipt)
}

// GetAvatarImage returns an avatar's image URL, reading through the asset
// cache on a miss.
func (h *Handler) GetAvatarImage(w http.ResponseWriter, r *http.Request) {
	avatarID := chi.URLParam(r, "avatarID")
	if avatarID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	url, ok, err := h.assets.Get(r.Context(), avatarID)
	if err != nil {
		h.logger.Warn("asset cache read failed", "avatar_id", avatarID, "error", err)
	}

	if !ok {
		item, err := h.store.GetActiveListing(r.Context(), avatarID)
		if err != nil {
			if err == domain.ErrItemNotAvailable {
				h.writeError(w, http.StatusNotFound, err)
				return
			}
			h.logger.Error("failed to get listing for asset", "error", err)
			h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
			return
		}
		url = item.ImageURL

		if warmErr := h.assets.Warm(r.Context(), map[string]string{avatarID: url}); warmErr != nil {
			h.logger.Warn("failed to warm asset cache", "avatar_id", avatarID, "error", warmErr)
		}
	}

	h.writeSuccess(w, map[string]string{"avatar_id": avatarID, "image_url": url})
}
