package scoringhttp

import (
	"github.com/Black-And-White-Club/golf-scoring/config"
	"github.com/go-chi/chi/v5"
)

// WriteScope is required on every route that changes a stored game.
const WriteScope = "scoring:write"

// RouteOptions configure the scoring routes.
type RouteOptions struct {
	// Tokens validates bearer tokens. Nil leaves write routes open.
	Tokens *TokenProvider
	// Limits supplies the read and write rate limits. Zero values fall back
	// to the config defaults.
	Limits config.HTTPConfig
}

// Mount registers the scoring API under /api/scoring. Reads are limited per
// client IP, writes per token subject.
func Mount(router chi.Router, h *Handlers, opts RouteOptions) {
	lim := opts.Limits
	reads := NewClientLimiter(orDefault(lim.RateLimit, 20), orDefault(lim.Burst, 40), ClientIP)
	writes := NewClientLimiter(orDefault(lim.WriteRateLimit, 5), orDefault(lim.WriteBurst, 10), TokenSubject)

	router.Route("/api/scoring", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(Throttle(reads))
			r.Get("/specs", h.ListSpecs)
			r.Get("/specs/{name}", h.GetSpec)
			r.Post("/scoreboards", h.ComputeScoreboard)
			r.Post("/scorecards/parse", h.ParseScorecard)
			r.Post("/played-at", h.ParsePlayedAt)
		})

		r.Route("/games/{gameID}", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(Throttle(reads))
				r.Get("/scoreboard", h.GetScoreboard)
				r.Get("/chart.png", h.RunningTotalsChart)
				r.Get("/postings", h.ListPostings)
				r.Get("/postings/{playerID}/preview", h.PreviewPosting)
				r.Post("/settlement", h.Settle)
			})

			r.Group(func(r chi.Router) {
				if opts.Tokens != nil {
					r.Use(BearerAuth(opts.Tokens, WriteScope))
				}
				r.Use(Throttle(writes))
				r.Put("/", h.SaveGame)
				r.Post("/recompute", h.RecomputeGame)
				r.Post("/scores", h.RecordScore)
				r.Post("/scorecard", h.ImportScorecard)
				r.Post("/postings", h.SubmitPosting)
			})
		})
	})
}

func orDefault[T int | float64](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}
