package server

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skintellect/storefront/internal/catalog"
	errx "github.com/skintellect/storefront/internal/core/error"
	"github.com/skintellect/storefront/internal/model"
	"github.com/skintellect/storefront/internal/store"
)

// SessionHeader carries the shopper session id in both directions.
const SessionHeader = "X-Session-ID"

const sessionContextKey = "session"

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// withSession resolves the shopper session, minting a new id when the header is missing
// or malformed. The id in use is always echoed back.
func withSession(sessions *store.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if !sessionIDPattern.MatchString(id) {
			id = uuid.NewString()
		}
		c.Header(SessionHeader, id)

		sess, err := sessions.Session(c.Request.Context(), id)
		if err != nil {
			fail(c, errx.Internal(err))
			return
		}
		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *store.Session {
	return c.MustGet(sessionContextKey).(*store.Session)
}

type cartView struct {
	Items         []model.CartItem `json:"items"`
	Wishlist      []string         `json:"wishlist"`
	SavedForLater []string         `json:"savedForLater"`
	CartCount     int              `json:"cartCount"`
}

func viewCart(cart *store.CartStore) cartView {
	return cartView{
		Items:         cart.Items(),
		Wishlist:      cart.Wishlist(),
		SavedForLater: cart.Saved(),
		CartCount:     cart.CartCount(),
	}
}

type addToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func GetCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok(c, viewCart(currentSession(c).Cart))
	}
}

// AddToCart handles POST /api/session/cart. Quantity defaults to one.
func AddToCart(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addToCartRequest
		if !bindJSON(c, &req) {
			return
		}
		p, found := cat.Get(req.ProductID)
		if !found {
			fail(c, errx.NotFound(productNotFoundMessage))
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		sess := currentSession(c)
		sess.Cart.AddToCart(c.Request.Context(), p.ID, req.Quantity)
		sess.Toasts.Show(fmt.Sprintf("%d x %s added to cart", req.Quantity, p.Name), store.ToastSuccess)
		ok(c, viewCart(sess.Cart))
	}
}

// UpdateCartItem handles PUT /api/session/cart/:productId. A quantity below one removes
// the line.
func UpdateCartItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateQuantityRequest
		if !bindJSON(c, &req) {
			return
		}
		sess := currentSession(c)
		sess.Cart.UpdateQuantity(c.Request.Context(), c.Param("productId"), *req.Quantity)
		ok(c, viewCart(sess.Cart))
	}
}

func RemoveCartItem(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("productId")
		sess := currentSession(c)
		sess.Cart.RemoveFromCart(c.Request.Context(), id)
		if p, found := cat.Get(id); found {
			sess.Toasts.Show(p.Name+" removed from cart", store.ToastInfo)
		}
		ok(c, viewCart(sess.Cart))
	}
}

func ClearCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		sess.Cart.ClearCart(c.Request.Context())
		sess.Toasts.Show("Cart cleared", store.ToastInfo)
		ok(c, viewCart(sess.Cart))
	}
}

func ToggleWishlist(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, found := lookupProduct(c, cat)
		if !found {
			return
		}
		sess := currentSession(c)
		msg := p.Name + " removed from wishlist"
		if sess.Cart.ToggleWishlist(c.Request.Context(), p.ID) {
			msg = p.Name + " added to wishlist"
		}
		sess.Toasts.Show(msg, store.ToastInfo)
		ok(c, viewCart(sess.Cart))
	}
}

func ToggleSaved(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, found := lookupProduct(c, cat)
		if !found {
			return
		}
		sess := currentSession(c)
		msg := p.Name + " removed from saved items"
		if sess.Cart.ToggleSaveForLater(c.Request.Context(), p.ID) {
			msg = p.Name + " saved for later"
		}
		sess.Toasts.Show(msg, store.ToastInfo)
		ok(c, viewCart(sess.Cart))
	}
}

func MoveToCart(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, found := lookupProduct(c, cat)
		if !found {
			return
		}
		sess := currentSession(c)
		sess.Cart.MoveToCart(c.Request.Context(), p.ID)
		sess.Toasts.Show(p.Name+" moved to cart", store.ToastSuccess)
		ok(c, viewCart(sess.Cart))
	}
}

// EndSession handles DELETE /api/session. It forgets the session and deletes its persisted
// cart, wishlist and saved list.
func EndSession(sessions *store.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := currentSession(c).ID
		if err := sessions.Drop(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"sessionId": id})
	}
}

func GetToasts() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok(c, currentSession(c).Toasts.Active())
	}
}

func DismissToast() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		sess.Toasts.Remove(c.Param("id"))
		ok(c, sess.Toasts.Active())
	}
}
