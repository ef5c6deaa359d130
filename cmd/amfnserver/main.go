// Command amfnserver is the Gin HTTP boundary adapter (A5): it exposes
// evaluate/expand/compress/solve/convert as JSON endpoints, the way the
// teacher's main.go exposes /loans over Gin with a worker-pool-bounded
// goroutine per request. It performs no schema validation of its own — a
// body that decodes but does not map onto the event model surfaces as an
// ordinary amfnerr.SchemaInvalid; a body that is not valid JSON is answered
// with 400 and the decoder's error.
package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/amfn-io/amfn/amfnerr"
	"github.com/amfn-io/amfn/engine"
	"github.com/amfn-io/amfn/fx"
	"github.com/amfn-io/amfn/internal/cashflowio"
	"github.com/amfn-io/amfn/internal/config"
	"github.com/amfn-io/amfn/internal/logging"
	"github.com/amfn-io/amfn/internal/metrics"
	"github.com/amfn-io/amfn/internal/ratecache"
	"github.com/amfn-io/amfn/solver"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// solvePool bounds how many concurrent solve() calls run at once — a
// solve() re-runs the whole expand/accrual/compress pipeline up to
// solver.MaxIterations times, the one operation in this package expensive
// enough to need the teacher's workerPool := make(chan struct{}, N) idiom.
var solvePool = make(chan struct{}, 32)

type server struct {
	log   *logging.Logger
	cache *ratecache.Client
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("config: %v; continuing with defaults", err)
	}

	logger, err := logging.New(cfg.LogDir)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}

	var cache *ratecache.Client
	if cfg.RedisAddr != "" {
		cache = ratecache.New(ratecache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.RateCacheTTL,
		})
		defer cache.Close()
	}

	srv := &server{log: logger, cache: cache}

	gin.DefaultWriter = io.MultiWriter(os.Stdout)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.Use(requestIDMiddleware)

	router.GET("/info", srv.info)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/cashflows/evaluate", srv.evaluate)
	router.POST("/cashflows/expand", srv.expand)
	router.POST("/cashflows/compress", srv.compress)
	router.POST("/cashflows/solve", srv.solve)
	router.GET("/fx/convert", srv.convert)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("amfnserver listening", "addr", cfg.ServerAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// requestIDMiddleware stamps every request with a UUID, echoed back as
// X-Request-Id; the evaluate handler threads it into its per-request logger
// via logging.Logger.WithEvaluation so evaluate calls can be correlated
// across the log file.
func requestIDMiddleware(c *gin.Context) {
	requestID := uuid.NewString()
	c.Set("request_id", requestID)
	c.Header("X-Request-Id", requestID)
	c.Next()
}

func (s *server) info(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, gin.H{
		"service":     "amfn",
		"description": "Amortization and cashflow computation engine",
		"endpoints": gin.H{
			"POST /cashflows/evaluate": "Expand and compress a cashflow, returning elements, compressed runs, and balance result",
			"POST /cashflows/expand":   "Expand a cashflow into amortization elements, stopping short of compression",
			"POST /cashflows/compress": "Expand a cashflow and compress its element list into repeating runs",
			"POST /cashflows/solve":    "Solve for an unknown event value, rate, or periods count",
			"GET /fx/convert":          "Convert an amount between two currencies via the exchange-rate graph",
		},
	})
}

func (s *server) evaluate(c *gin.Context) {
	start := time.Now()
	var req cashflowio.CashflowDoc
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RecordEvaluation("evaluate", "bad_request", time.Since(start).Seconds())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cf, err := req.ToCashflow()
	if err != nil {
		s.fail(c, "evaluate", start, err)
		return
	}
	reqLog := s.log.WithEvaluation(c.GetString("request_id"), len(cf.Events))
	result, err := engine.Evaluate(cf)
	if err != nil {
		reqLog.Error("evaluate failed", "error", err)
		s.fail(c, "evaluate", start, err)
		return
	}
	reqLog.Info("evaluate ok", "duration", time.Since(start).String())
	metrics.RecordEvaluation("evaluate", "ok", time.Since(start).Seconds())
	c.JSON(http.StatusOK, result)
}

func (s *server) expand(c *gin.Context) {
	start := time.Now()
	var req cashflowio.CashflowDoc
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RecordEvaluation("expand", "bad_request", time.Since(start).Seconds())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cf, err := req.ToCashflow()
	if err != nil {
		s.fail(c, "expand", start, err)
		return
	}
	elements, balance, err := engine.Expand(cf)
	if err != nil {
		s.fail(c, "expand", start, err)
		return
	}
	metrics.RecordEvaluation("expand", "ok", time.Since(start).Seconds())
	c.JSON(http.StatusOK, gin.H{"elements": elements, "balance": balance})
}

func (s *server) compress(c *gin.Context) {
	start := time.Now()
	var req cashflowio.CashflowDoc
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RecordEvaluation("compress", "bad_request", time.Since(start).Seconds())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cf, err := req.ToCashflow()
	if err != nil {
		s.fail(c, "compress", start, err)
		return
	}
	elements, _, err := engine.Expand(cf)
	if err != nil {
		s.fail(c, "compress", start, err)
		return
	}
	metrics.RecordEvaluation("compress", "ok", time.Since(start).Seconds())
	c.JSON(http.StatusOK, engine.Compress(elements))
}

type solveRequestDTO struct {
	Cashflow cashflowio.CashflowDoc `json:"cashflow"`
	Target   struct {
		Kind                    string `json:"kind"`
		EventOriginIndex        int    `json:"event_origin_index"`
		StatisticName           string `json:"statistic_name"`
		ObserveCurrentValue     bool   `json:"observe_current_value"`
		CurrentValueOriginIndex int    `json:"current_value_origin_index"`
		TargetAmount            string `json:"target_amount"`
		DecimalDigits           int32  `json:"decimal_digits"`
		InitialGuess            string `json:"initial_guess"`
		SecondGuess             string `json:"second_guess"`
	} `json:"target"`
}

func (s *server) solve(c *gin.Context) {
	start := time.Now()
	var req solveRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RecordEvaluation("solve", "bad_request", time.Since(start).Seconds())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cf, err := req.Cashflow.ToCashflow()
	if err != nil {
		s.fail(c, "solve", start, err)
		return
	}
	target, err := req.toTarget()
	if err != nil {
		s.fail(c, "solve", start, err)
		return
	}

	solvePool <- struct{}{}
	defer func() { <-solvePool }()

	result, err := engine.Solve(cf, target)
	if err != nil {
		status := "no_convergence"
		if amfnerr.Is(err, amfnerr.SolverTargetUnreachable) {
			status = "target_unreachable"
		}
		metrics.RecordSolverIterations(status, result.Iterations)
		s.fail(c, "solve", start, err)
		return
	}
	metrics.RecordSolverIterations("converged", result.Iterations)
	metrics.RecordEvaluation("solve", "ok", time.Since(start).Seconds())
	c.JSON(http.StatusOK, result)
}

func (req solveRequestDTO) toTarget() (solver.Target, error) {
	amount, err := decimalOrZero(req.Target.TargetAmount)
	if err != nil {
		return solver.Target{}, err
	}
	x0, err := decimalOrZero(req.Target.InitialGuess)
	if err != nil {
		return solver.Target{}, err
	}
	x1, err := decimalOrZero(req.Target.SecondGuess)
	if err != nil {
		return solver.Target{}, err
	}
	return solver.Target{
		Kind:                    solver.UnknownKind(req.Target.Kind),
		EventOriginIndex:        req.Target.EventOriginIndex,
		StatisticName:           req.Target.StatisticName,
		ObserveCurrentValue:     req.Target.ObserveCurrentValue,
		CurrentValueOriginIndex: req.Target.CurrentValueOriginIndex,
		TargetAmount:            amount,
		DecimalDigits:           req.Target.DecimalDigits,
		InitialGuess:            x0,
		SecondGuess:             x1,
	}, nil
}

// convert runs the convert() operation (spec §6) over an exchange-rate
// graph built from repeated "?rate=FROM:TO:VALUE" query parameters, the
// query-string shape a GET request can carry. The graph is wrapped in an
// fx.CachedGraph so repeat from/to lookups are served out of
// internal/ratecache instead of re-walking the graph's BFS every time.
func (s *server) convert(c *gin.Context) {
	start := time.Now()
	from := c.Query("from")
	to := c.Query("to")

	amount, err := decimalOrZero(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var pairs []fx.Pair
	for _, raw := range c.QueryArray("rate") {
		pair, err := parseRatePair(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		pairs = append(pairs, pair)
	}

	graph := fx.NewCachedGraph(fx.NewGraph(pairs), s.cache)
	rate, err := graph.Rate(c.Request.Context(), from, to)
	if err != nil {
		s.fail(c, "convert", start, err)
		return
	}

	metrics.RecordEvaluation("convert", "ok", time.Since(start).Seconds())
	c.JSON(http.StatusOK, gin.H{
		"from":   from,
		"to":     to,
		"rate":   rate.String(),
		"amount": amount.Mul(rate).String(),
	})
}

func (s *server) fail(c *gin.Context, operation string, start time.Time, err error) {
	metrics.RecordEvaluation(operation, "error", time.Since(start).Seconds())
	status := http.StatusUnprocessableEntity
	if amfnerr.Is(err, amfnerr.SchemaInvalid) {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
