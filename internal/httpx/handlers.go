package httpx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ariefcatur/go-freshbite.git/internal/auth"
	"github.com/ariefcatur/go-freshbite.git/internal/catalog"
	"github.com/ariefcatur/go-freshbite.git/internal/discount"
	"github.com/ariefcatur/go-freshbite.git/internal/orders"
	"github.com/ariefcatur/go-freshbite.git/internal/pricing"
	"github.com/ariefcatur/go-freshbite.git/internal/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// API serves the storefront. Every route except the menu needs X-Client-ID.
type API struct {
	Menu       catalog.Source
	Workspaces *Workspaces
	Limiter    ratelimit.Limiter
	Orders     *orders.Service
	Discounts  *discount.Resolver
	Log        *zap.Logger
}

func (a *API) Register(r chi.Router) {
	r.Get("/menu", a.listMenu)
	r.Get("/menu/categories", a.listCategories)
	r.Get("/menu/{id}", a.getMenuItem)
	r.Post("/discounts/apply", a.applyDiscount)
	r.Post("/auth/password-strength", a.passwordStrength)

	r.Group(func(r chi.Router) {
		r.Use(a.Workspaces.requireClient)

		r.Get("/searches", a.listSearches)
		r.Post("/searches", a.addSearch)
		r.Delete("/searches", a.clearSearches)

		r.Get("/cart", a.getCart)
		r.Post("/cart/items", a.addCartItem)
		r.Patch("/cart/items/{id}", a.updateCartItem)
		r.Delete("/cart/items/{id}", a.removeCartItem)
		r.Delete("/cart", a.clearCart)
		r.Post("/cart/toggle", a.toggleCart)
		r.Post("/cart/close", a.closeCart)
		r.Get("/cart/summary", a.cartSummary)

		r.Post("/auth/login", a.login)
		r.Post("/auth/register", a.register)
		r.Post("/auth/logout", a.logout)
		r.Get("/auth/me", a.me)
		r.Patch("/auth/me", a.updateMe)

		r.Post("/checkout", a.checkout)
		r.Get("/orders/{id}", a.getOrder)
		r.Post("/orders/{id}/cancel", a.cancelOrder)
	})
}

// ---- menu ----

func (a *API) listMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := a.Menu.Items(ctx)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, catalog.Filter(items, q.Get("category"), q.Get("q")))
}

func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := a.Menu.Items(ctx)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog.Categories(items))
}

func (a *API) getMenuItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	it, err := catalog.Find(ctx, a.Menu, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// ---- recent searches ----

type searchesResp struct {
	Recent  []string `json:"recent"`
	Popular []string `json:"popular"`
}

func (a *API) listSearches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, searchesResp{Recent: client(r).ws.Recent.List(), Popular: catalog.PopularSearches})
}

func (a *API) addSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if !decode(w, r, &req) {
		return
	}
	c := client(r)
	recent, err := c.ws.Recent.Add(r.Context(), auth.SanitizeInput(req.Query))
	if err != nil {
		a.Log.Warn("save recent searches failed", zap.String("client_id", c.id), zap.Error(err))
		recent = c.ws.Recent.List()
	}
	writeJSON(w, http.StatusOK, searchesResp{Recent: recent, Popular: catalog.PopularSearches})
}

func (a *API) clearSearches(w http.ResponseWriter, r *http.Request) {
	c := client(r)
	if err := c.ws.Recent.Clear(r.Context()); err != nil {
		a.Log.Warn("clear recent searches failed", zap.String("client_id", c.id), zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- cart ----

// cartWrite logs a failed save; the in-memory cart has already changed.
func (a *API) cartWrite(w http.ResponseWriter, r *http.Request, code int, err error) {
	c := client(r)
	if err != nil {
		a.Log.Warn("save cart failed", zap.String("client_id", c.id), zap.Error(err))
	}
	writeJSON(w, code, c.ws.Cart.Snapshot())
}

func (a *API) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, client(r).ws.Cart.Snapshot())
}

func (a *API) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID                  string `json:"id"`
		SpecialInstructions string `json:"specialInstructions"`
	}
	if !decode(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	m, err := catalog.Find(ctx, a.Menu, req.ID)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	err = client(r).ws.Cart.Add(ctx, m.CartItem(auth.SanitizeInput(req.SpecialInstructions)))
	a.cartWrite(w, r, http.StatusCreated, err)
}

func (a *API) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Fields: map[string]string{"quantity": "Quantity is required"}})
		return
	}
	err := client(r).ws.Cart.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), *req.Quantity)
	a.cartWrite(w, r, http.StatusOK, err)
}

func (a *API) removeCartItem(w http.ResponseWriter, r *http.Request) {
	err := client(r).ws.Cart.Remove(r.Context(), chi.URLParam(r, "id"))
	a.cartWrite(w, r, http.StatusOK, err)
}

func (a *API) clearCart(w http.ResponseWriter, r *http.Request) {
	err := client(r).ws.Cart.Clear(r.Context())
	a.cartWrite(w, r, http.StatusOK, err)
}

func (a *API) toggleCart(w http.ResponseWriter, r *http.Request) {
	client(r).ws.Cart.Toggle()
	a.cartWrite(w, r, http.StatusOK, nil)
}

func (a *API) closeCart(w http.ResponseWriter, r *http.Request) {
	client(r).ws.Cart.Close()
	a.cartWrite(w, r, http.StatusOK, nil)
}

type summaryResp struct {
	Breakdown      pricing.Breakdown `json:"breakdown"`
	TipPercent     decimal.Decimal   `json:"tipPercent"`
	Discount       *discount.Result  `json:"discount,omitempty"`
	FormattedTotal string            `json:"formattedTotal"`
	Summary        string            `json:"summary"`
}

// cartSummary prices the cart with an optional tip percentage and discount
// code. A code that does not apply is reported, not rejected.
func (a *API) cartSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tip := orders.DefaultTipPercent
	if s := q.Get("tip"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil || d.IsNegative() {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid tip", Fields: map[string]string{"tip": "Tip must be a non-negative number"}})
			return
		}
		tip = d
	}
	items := client(r).ws.Cart.Snapshot().Items

	b := pricing.Total(items, tip, a.Orders.TaxRate())
	resp := summaryResp{TipPercent: tip}
	if code := strings.TrimSpace(q.Get("code")); code != "" {
		res := a.Discounts.Apply(b.Subtotal, code)
		if res.IsValid {
			b = b.WithDiscount(res.Discount)
		}
		res.Discount = pricing.Round2(res.Discount)
		resp.Discount = &res
	}
	resp.Breakdown = b.Rounded()
	resp.Summary = pricing.OrderSummary(items, b)
	resp.FormattedTotal = pricing.FormatCurrency(b.Total)
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) applyDiscount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subtotal decimal.Decimal `json:"subtotal"`
		Code     string          `json:"code"`
	}
	if !decode(w, r, &req) {
		return
	}
	res := a.Discounts.Apply(req.Subtotal, req.Code)
	res.Discount = pricing.Round2(res.Discount)
	writeJSON(w, http.StatusOK, res)
}

// ---- auth ----

type sessionResp struct {
	User            *auth.User `json:"user"`
	Token           string     `json:"token,omitempty"`
	IsAuthenticated bool       `json:"isAuthenticated"`
}

func toSessionResp(s auth.Session) sessionResp {
	return sessionResp{User: s.User, Token: s.Token, IsAuthenticated: s.IsAuthenticated}
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := auth.ValidateLogin(req.Email, req.Password); err != nil {
		writeError(w, a.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ok, err := a.Limiter.CanAttempt(ctx, req.Email)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	if !ok {
		remaining, err := a.Limiter.RemainingTime(ctx, req.Email)
		if err != nil {
			writeError(w, a.Log, err)
			return
		}
		writeRateLimited(w, remaining)
		return
	}

	sess, err := client(r).ws.Session.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResp(sess))
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var form auth.RegisterForm
	if !decode(w, r, &form) {
		return
	}
	form.FirstName = auth.SanitizeInput(form.FirstName)
	form.LastName = auth.SanitizeInput(form.LastName)
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	if err := auth.ValidateRegister(form); err != nil {
		writeError(w, a.Log, err)
		return
	}
	if form.Phone != "" {
		form.Phone = auth.FormatPhoneNumber(form.Phone)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sess, err := client(r).ws.Session.Register(ctx, form.RegisterData)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResp(sess))
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	client(r).ws.Session.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSessionResp(client(r).ws.Session.Session(r.Context())))
}

func (a *API) updateMe(w http.ResponseWriter, r *http.Request) {
	var edit auth.UserUpdate
	if !decode(w, r, &edit) {
		return
	}
	sess, err := client(r).ws.Session.UpdateUser(r.Context(), edit)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResp(sess))
}

func (a *API) passwordStrength(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, auth.PasswordStrength(req.Password))
}

// ---- orders ----

func (a *API) checkout(w http.ResponseWriter, r *http.Request) {
	var req orders.CheckoutRequest
	if !decode(w, r, &req) {
		return
	}
	req.DeliveryInstructions = auth.SanitizeInput(req.DeliveryInstructions)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	c := client(r)
	in := orders.PlaceInput{ClientID: c.id, Request: req}
	if s := c.ws.Session.Session(ctx); s.User != nil {
		in.UserID = s.User.ID
	}
	o, err := a.Orders.PlaceOrder(ctx, c.ws.Cart, in)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

type orderStatusResp struct {
	OrderID   string        `json:"order_id"`
	Status    orders.Status `json:"status"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (a *API) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	rec, err := a.Orders.Status(ctx, client(r).id, id)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, orderStatusResp{OrderID: id, Status: rec.Status, UpdatedAt: rec.UpdatedAt})
}

func (a *API) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c := client(r)
	id := chi.URLParam(r, "id")
	if err := a.Orders.Cancel(ctx, c.id, id); err != nil {
		writeError(w, a.Log, err)
		return
	}
	rec, err := a.Orders.Status(ctx, c.id, id)
	if err != nil {
		writeError(w, a.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, orderStatusResp{OrderID: id, Status: rec.Status, UpdatedAt: rec.UpdatedAt})
}
