package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla_ws "github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/SAYREKAS/CryptoSphereAPI/internal/service"
	"github.com/SAYREKAS/CryptoSphereAPI/internal/websocket"
	"github.com/SAYREKAS/CryptoSphereAPI/lib/errs"
	"github.com/SAYREKAS/CryptoSphereAPI/lib/trade"
	"github.com/SAYREKAS/CryptoSphereAPI/lib/validate"
)

type Handler struct {
	usersService        service.UsersService
	coinsService        service.CoinsService
	transactionsService service.TransactionsService
	wsManager           *websocket.Manager
	upgrader            gorilla_ws.Upgrader
	log                 *slog.Logger
}

func NewHandler(
	usersService service.UsersService,
	coinsService service.CoinsService,
	transactionsService service.TransactionsService,
	wsManager *websocket.Manager,
	log *slog.Logger,
) *Handler {
	return &Handler{
		usersService:        usersService,
		coinsService:        coinsService,
		transactionsService: transactionsService,
		wsManager:           wsManager,
		upgrader: gorilla_ws.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		users := api.Group("/users")
		{
			users.POST("", h.createUser)
			users.GET("", h.getAllUsers)
			users.GET("/:username", h.getUser)
			users.DELETE("/:username", h.deleteUser)
		}

		coins := api.Group("/coins")
		{
			coins.POST("", h.addCoin)
			coins.GET("", h.getAllCoins)
			coins.DELETE("", h.deleteCoin)
		}

		api.POST("/transactions", h.createTransaction)
		api.GET("/statistics", h.getStatistics)
		api.GET("/ws", h.wsConnect)
	}
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	username, err := validate.Username(req.Username)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email, err := validate.Email(req.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validate.Password(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.usersService.CreateUser(c.Request.Context(), username, email, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "username or email already exists"})
			return
		}
		h.log.Error("failed to create user", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	c.JSON(http.StatusCreated, user.View())
}

func (h *Handler) getAllUsers(c *gin.Context) {
	users, err := h.usersService.GetAllUsers(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list users", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) getUser(c *gin.Context) {
	username, err := validate.Username(c.Param("username"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.usersService.GetUserByUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.log.Error("failed to get user", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get user"})
		return
	}

	c.JSON(http.StatusOK, user.View())
}

type deleteUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) deleteUser(c *gin.Context) {
	var req deleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	username, err := validate.Username(c.Param("username"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email, err := validate.Email(req.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.usersService.DeleteUser(c.Request.Context(), username, email, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user with the provided credentials not found"})
			return
		}
		h.log.Error("failed to delete user", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user"})
		return
	}

	c.JSON(http.StatusOK, user.View())
}

type coinRequest struct {
	Username   string `json:"username" binding:"required"`
	CoinName   string `json:"coin_name" binding:"required"`
	CoinSymbol string `json:"coin_symbol" binding:"required"`
}

// normalized resolves the canonical forms of the identifying fields.
func (req *coinRequest) normalized() (username, name, symbol string, err error) {
	if username, err = validate.Username(req.Username); err != nil {
		return
	}
	if name, err = validate.CoinName(req.CoinName); err != nil {
		return
	}
	symbol, err = validate.CoinSymbol(req.CoinSymbol)
	return
}

func (h *Handler) addCoin(c *gin.Context) {
	var req coinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	username, name, symbol, err := req.normalized()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coin, err := h.coinsService.AddCoin(c.Request.Context(), username, name, symbol)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, errs.ErrAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "coin already on the watchlist"})
		default:
			h.log.Error("failed to add coin", slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add coin"})
		}
		return
	}

	c.JSON(http.StatusCreated, coin.View())
}

func (h *Handler) getAllCoins(c *gin.Context) {
	username, err := validate.Username(c.Query("username"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coins, err := h.coinsService.GetAllCoins(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.log.Error("failed to list coins", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list coins"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"coins": coins})
}

func (h *Handler) deleteCoin(c *gin.Context) {
	var req coinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	username, name, symbol, err := req.normalized()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.coinsService.DeleteCoin(c.Request.Context(), username, name, symbol); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "coin not found for user"})
			return
		}
		h.log.Error("failed to delete coin", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete coin"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"coin_name": name, "coin_symbol": symbol})
}

type transactionRequest struct {
	Username   string `json:"username" binding:"required"`
	CoinName   string `json:"coin_name" binding:"required"`
	CoinSymbol string `json:"coin_symbol" binding:"required"`

	Buy          decimal.Decimal `json:"buy"`
	Sell         decimal.Decimal `json:"sell"`
	Paid         decimal.Decimal `json:"paid"`
	AveragePrice decimal.Decimal `json:"average_price"`
	Fee          decimal.Decimal `json:"fee"`
}

func (h *Handler) createTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	username, name, symbol, err := (&coinRequest{
		Username:   req.Username,
		CoinName:   req.CoinName,
		CoinSymbol: req.CoinSymbol,
	}).normalized()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	op := trade.Operation{
		Buy:          req.Buy,
		Sell:         req.Sell,
		Paid:         req.Paid,
		AveragePrice: req.AveragePrice,
		Fee:          req.Fee,
	}

	view, err := h.transactionsService.Apply(c.Request.Context(), username, name, symbol, op)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, errs.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user or coin not found"})
		case errors.Is(err, errs.ErrConcurrency):
			c.JSON(http.StatusConflict, gin.H{"error": "concurrent update conflict, retry the transaction"})
		default:
			h.log.Error("failed to apply transaction", slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not apply transaction"})
		}
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *Handler) getStatistics(c *gin.Context) {
	username, name, symbol, err := (&coinRequest{
		Username:   c.Query("username"),
		CoinName:   c.Query("coin_name"),
		CoinSymbol: c.Query("coin_symbol"),
	}).normalized()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.transactionsService.GetStatistics(c.Request.Context(), username, name, symbol)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no statistics for this coin yet"})
			return
		}
		h.log.Error("failed to get statistics", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get statistics"})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) wsConnect(c *gin.Context) {
	username, err := validate.Username(c.Query("username"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.usersService.GetUserByUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.log.Error("ws: cannot get user", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not open websocket"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("failed to upgrade connection", slog.Any("error", err))
		return
	}

	client := &websocket.Client{
		Manager: h.wsManager,
		Conn:    conn,
		UserID:  user.ID,
		Send:    make(chan []byte, 256),
	}

	client.Manager.Register(client)

	go client.Writer()
	go client.Reader()
}
