package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	basketsvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/basket"
	checkoutsvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/checkout"
	identitysvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/identity"
	quotesvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/quote"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdentityService is the identity surface the handlers need.
type IdentityService interface {
	Signup(ctx context.Context, in identitysvc.SignupInput) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*domain.Account, string, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.Account, error)
	Verify(ctx context.Context, accountID string) (*domain.Account, error)
	AccessTTLSeconds() int
}

type BasketService interface {
	Get(ctx context.Context, owner basketsvc.Owner) (domain.Basket, error)
	AddItem(ctx context.Context, owner basketsvc.Owner, policy domain.Policy, in basketsvc.AddItemInput) (domain.Basket, error)
	RemoveItem(ctx context.Context, owner basketsvc.Owner, itemID string) (domain.Basket, error)
	UpdateQuantity(ctx context.Context, owner basketsvc.Owner, itemID string, quantity int) (domain.Basket, error)
	ToggleBulkPricing(ctx context.Context, owner basketsvc.Owner, itemID string) (domain.Basket, error)
	Clear(ctx context.Context, owner basketsvc.Owner) error
	MergeOnSignIn(ctx context.Context, deviceID string, account domain.Account) (int, error)
}

type CheckoutService interface {
	Start(ctx context.Context, account domain.Account, source checkoutsvc.Source, quoteID string) (checkoutsvc.Session, error)
	Get(sessionID, accountID string) (checkoutsvc.Session, error)
	SelectAddresses(ctx context.Context, sessionID, accountID string, in checkoutsvc.AddressSelection) (checkoutsvc.Session, error)
	Advance(sessionID, accountID string) (checkoutsvc.Session, error)
	Back(sessionID, accountID string) (checkoutsvc.Session, error)
	AcceptTerms(sessionID, accountID string, accepted bool) (checkoutsvc.Session, error)
	PlaceOrder(ctx context.Context, sessionID, accountID string) (checkoutsvc.Session, error)
	CompletePayment(ctx context.Context, sessionID, accountID string, outcome checkoutsvc.PaymentOutcome) (string, error)
	Abandon(sessionID, accountID string)
}

type QuoteService interface {
	Submit(ctx context.Context, account domain.Account, basket domain.Basket, in quotesvc.SubmitInput) (*domain.Quote, error)
	Get(ctx context.Context, accountID, id string) (*domain.Quote, error)
	List(ctx context.Context, accountID string) ([]domain.Quote, error)
	Decide(ctx context.Context, id string, approve bool) (*domain.Quote, error)
}

type OrderService interface {
	Get(ctx context.Context, accountID, id string) (*domain.Order, error)
	List(ctx context.Context, accountID string) ([]domain.Order, error)
}

type PartService interface {
	List(ctx context.Context) ([]domain.Part, error)
	Get(ctx context.Context, id string) (*domain.Part, error)
}

type CategoryRepo interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type AddressRepo interface {
	ListByAccount(ctx context.Context, accountID string) ([]domain.Address, error)
	Create(ctx context.Context, a domain.Address) (*domain.Address, error)
}

// Deps carries the handler dependencies.
type Deps struct {
	IdentitySvc  IdentityService
	BasketSvc    BasketService
	CheckoutSvc  CheckoutService
	QuoteSvc     QuoteService
	OrderSvc     OrderService
	PartSvc      PartService
	CategoryRepo CategoryRepo
	AddressRepo  AddressRepo
	AdminToken   string
}

const accountCtxKey = "httpserver.account"

// deviceHeader carries the anonymous device identifier for basket requests
// made without a bearer token.
const deviceHeader = "X-Device-ID"

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", deviceHeader},
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.POST("/auth/signup", signupHandler(deps.IdentitySvc))
	router.POST("/auth/login", loginHandler(deps.IdentitySvc, deps.BasketSvc))

	router.GET("/parts", listPartsHandler(deps.PartSvc))
	router.GET("/parts/:id", getPartHandler(deps.PartSvc))
	router.GET("/categories", listCategoriesHandler(deps.CategoryRepo))

	identified := identityMiddleware(deps.IdentitySvc)

	basket := router.Group("/basket", identified)
	{
		basket.GET("", getBasketHandler(deps.BasketSvc))
		basket.DELETE("", clearBasketHandler(deps.BasketSvc))
		basket.POST("/items", addItemHandler(deps.BasketSvc))
		basket.PATCH("/items/:itemId", updateQuantityHandler(deps.BasketSvc))
		basket.POST("/items/:itemId/bulk-pricing", toggleBulkPricingHandler(deps.BasketSvc))
		basket.DELETE("/items/:itemId", removeItemHandler(deps.BasketSvc))
	}

	me := router.Group("/me", identified, requireAccount())
	{
		me.GET("", meHandler())
		me.GET("/addresses", listAddressesHandler(deps.AddressRepo))
		me.POST("/addresses", createAddressHandler(deps.AddressRepo))
	}

	quotes := router.Group("/quotes", identified, requireAccount())
	{
		quotes.POST("", submitQuoteHandler(deps.QuoteSvc, deps.BasketSvc))
		quotes.GET("", listQuotesHandler(deps.QuoteSvc))
		quotes.GET("/:id", getQuoteHandler(deps.QuoteSvc))
	}

	checkout := router.Group("/checkout/sessions", identified, requireAccount())
	{
		checkout.POST("", startCheckoutHandler(deps.CheckoutSvc))
		checkout.GET("/:id", getCheckoutHandler(deps.CheckoutSvc))
		checkout.PUT("/:id/addresses", selectAddressesHandler(deps.CheckoutSvc))
		checkout.POST("/:id/advance", advanceCheckoutHandler(deps.CheckoutSvc))
		checkout.POST("/:id/back", backCheckoutHandler(deps.CheckoutSvc))
		checkout.POST("/:id/terms", acceptTermsHandler(deps.CheckoutSvc))
		checkout.POST("/:id/order", placeOrderHandler(deps.CheckoutSvc))
		checkout.POST("/:id/payment", completePaymentHandler(deps.CheckoutSvc))
		checkout.DELETE("/:id", abandonCheckoutHandler(deps.CheckoutSvc))
	}

	orders := router.Group("/orders", identified, requireAccount())
	{
		orders.GET("", listOrdersHandler(deps.OrderSvc))
		orders.GET("/:id", getOrderHandler(deps.OrderSvc))
	}

	admin := router.Group("/admin", adminMiddleware(deps.AdminToken))
	{
		admin.POST("/quotes/:id/decision", decideQuoteHandler(deps.QuoteSvc))
		admin.POST("/accounts/:id/verify", verifyAccountHandler(deps.IdentitySvc))
	}

	return router, nil
}

// identityMiddleware resolves the caller: a valid bearer token binds the
// request to an account; otherwise the device header (if any) identifies an
// anonymous basket owner. Requests with neither proceed unauthenticated.
func identityMiddleware(identity IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimPrefix(header, "Bearer ")
			account, err := identity.LookupByToken(c.Request.Context(), token)
			if err == nil {
				c.Set(accountCtxKey, account)
				c.Next()
				return
			}
			if errors.Is(err, identitysvc.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
			return
		}
		c.Next()
	}
}

func requireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := accountFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}
		c.Next()
	}
}

func adminMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" || c.GetHeader("X-Admin-Token") != token {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden"})
			return
		}
		c.Next()
	}
}

func accountFrom(c *gin.Context) (*domain.Account, bool) {
	v, ok := c.Get(accountCtxKey)
	if !ok {
		return nil, false
	}
	account, ok := v.(*domain.Account)
	return account, ok
}

// ownerFrom derives the basket owner for the request. Identified requests
// always address the account basket; the device header is ignored once a
// bearer token is present.
func ownerFrom(c *gin.Context) (basketsvc.Owner, bool) {
	if account, ok := accountFrom(c); ok {
		return basketsvc.Owner{AccountID: account.ID}, true
	}
	if deviceID := c.GetHeader(deviceHeader); deviceID != "" {
		return basketsvc.Owner{DeviceID: deviceID}, true
	}
	return basketsvc.Owner{}, false
}

// policyFrom resolves the capacity policy for the request's identity.
func policyFrom(c *gin.Context) domain.Policy {
	if account, ok := accountFrom(c); ok {
		return account.Policy()
	}
	return domain.GuestPolicy()
}
