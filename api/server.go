package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/egaotan/solana-registry/registry"
	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is the read-only inspection api over the registry.
type Server struct {
	registry   *registry.Registry
	log        *zap.Logger
	router     *gin.Engine
	httpServer *http.Server
}

func NewServer(reg *registry.Registry, gatherer prometheus.Gatherer, listen string) *Server {
	server := &Server{
		registry: reg,
		log:      reg.Logger().Named("api"),
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/health", server.health)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	g := router.Group("/api")
	g.GET("/pairs/:a/:b", server.pair)
	g.GET("/pools/:address", server.pool)
	g.GET("/tokens/:mint/legit", server.legit)
	g.GET("/tokens/:mint/neighbors", server.neighbors)
	g.GET("/state", server.state)
	server.router = router
	server.httpServer = &http.Server{
		Addr:    listen,
		Handler: router,
	}
	return server
}

func (server *Server) Handler() http.Handler {
	return server.router
}

func (server *Server) Start() {
	server.log.Info("start api server", zap.String("listen", server.httpServer.Addr))
	go func() {
		if err := server.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.log.Error("listen and serve", zap.Error(err))
		}
	}()
}

func (server *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.httpServer.Shutdown(ctx); err != nil {
		server.log.Warn("shutdown api server", zap.Error(err))
		return
	}
	server.log.Info("api server has stopped")
}

func keyParam(c *gin.Context, name string) (solana.PublicKey, bool) {
	key, err := solana.PublicKeyFromBase58(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + ": " + err.Error()})
		return solana.PublicKey{}, false
	}
	return key, true
}

func (server *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "slot": server.registry.State().Slot()})
}

func (server *Server) pair(c *gin.Context) {
	a, ok := keyParam(c, "a")
	if !ok {
		return
	}
	b, ok := keyParam(c, "b")
	if !ok {
		return
	}
	list := server.registry.PoolsByPair(a, b)
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pair not found"})
		return
	}
	clock := server.registry.State()
	views := make([]*PoolView, 0, list.Len())
	for _, pool := range list.Pools() {
		views = append(views, NewPoolView(pool, clock))
	}
	c.JSON(http.StatusOK, views)
}

func (server *Server) pool(c *gin.Context) {
	address, ok := keyParam(c, "address")
	if !ok {
		return
	}
	pool, found := server.registry.PoolByAddress(address)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "pool not found"})
		return
	}
	if c.Query("refresh") == "true" {
		if err := server.registry.RefreshPool(c.Request.Context(), pool); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, NewPoolView(pool, server.registry.State()))
}

func (server *Server) legit(c *gin.Context) {
	mint, ok := keyParam(c, "mint")
	if !ok {
		return
	}
	// The answer is cached for the process lifetime, a client going away must not turn it negative.
	ctx := context.WithoutCancel(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"mint": mint.String(), "legit": server.registry.IsLegitToken(ctx, mint)})
}

func (server *Server) neighbors(c *gin.Context) {
	mint, ok := keyParam(c, "mint")
	if !ok {
		return
	}
	neighbors := server.registry.Neighbors(mint)
	tokens := make([]string, 0, len(neighbors))
	for _, token := range neighbors {
		tokens = append(tokens, token.String())
	}
	c.JSON(http.StatusOK, gin.H{"mint": mint.String(), "neighbors": tokens})
}

func (server *Server) state(c *gin.Context) {
	state := server.registry.State()
	c.JSON(http.StatusOK, &StateView{
		Slot:      state.Slot(),
		Blockhash: state.Blockhash().String(),
		Updated:   state.Updated(),
		Stats:     server.registry.Stats(),
	})
}
