package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	cartdomain "github.com/dwikikusuma/epicerie/internal/cart/domain"
	cartgrpc "github.com/dwikikusuma/epicerie/internal/cart/grpc"
	cataloggrpc "github.com/dwikikusuma/epicerie/internal/catalog/grpc"
	checkoutgrpc "github.com/dwikikusuma/epicerie/internal/checkout/grpc"
	prepgrpc "github.com/dwikikusuma/epicerie/internal/preparation/grpc"
	"github.com/dwikikusuma/epicerie/internal/session"
	sessiongrpc "github.com/dwikikusuma/epicerie/internal/session/grpc"
	"github.com/dwikikusuma/epicerie/pkg/telemetry"
)

type gateway struct {
	log      *slog.Logger
	health   grpc_health_v1.HealthClient
	cart     *cartgrpc.Client
	catalog  *cataloggrpc.Client
	checkout *checkoutgrpc.Client
	prep     *prepgrpc.Client
	session  *sessiongrpc.Client
}

func newRouter(conn grpc.ClientConnInterface, log *slog.Logger) http.Handler {
	g := &gateway{
		log:      log,
		health:   grpc_health_v1.NewHealthClient(conn),
		cart:     cartgrpc.NewClient(conn),
		catalog:  cataloggrpc.NewClient(conn),
		checkout: checkoutgrpc.NewClient(conn),
		prep:     prepgrpc.NewClient(conn),
		session:  sessiongrpc.NewClient(conn),
	}

	r := chi.NewRouter()
	r.Use(telemetry.Middleware("gateway", "/healthz", "/readyz"))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", g.readyz)

	r.Route("/session", func(r chi.Router) {
		r.Post("/", g.login)
		r.Get("/", g.currentSession)
		r.Delete("/", g.logout)
	})

	r.Route("/cart/{userID}", func(r chi.Router) {
		r.Get("/", g.getCart)
		r.Delete("/", g.clearCart)
		r.Get("/checkout", g.validateCart)
		r.Post("/items", g.addItem)
		r.Patch("/items/{productID}", g.updateQuantity)
		r.Delete("/items/{productID}", g.removeItem)
	})

	r.Get("/products/{productID}", g.getProduct)
	r.Get("/products/{productID}/quote", g.quoteUnit)
	r.Get("/epiceries/{epicerieID}/products", g.listProducts)

	r.Get("/checkout/{userID}/quote", g.quote)
	r.Post("/checkout/{userID}/orders", g.placeOrder)

	r.Route("/preparations/{orderID}", func(r chi.Router) {
		r.Post("/", g.startPreparation)
		r.Get("/", g.getPreparation)
		r.Get("/progress", g.progress)
		r.Post("/scan", g.scan)
		r.Post("/finish", g.finish)
		r.Patch("/items/{itemID}", g.modifyQuantity)
		r.Post("/items/{itemID}/complete", g.completeItem)
		r.Post("/items/{itemID}/unavailable", g.markUnavailable)
	})

	return r
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid JSON body")
		return false
	}
	return true
}

// respond writes out on success or the mapped upstream error.
func respond[T any](g *gateway, w http.ResponseWriter, status int, out *T, err error) {
	if err != nil {
		writeError(w, g.log, err)
		return
	}
	writeJSON(w, status, out)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func (g *gateway) readyz(w http.ResponseWriter, r *http.Request) {
	resp, err := g.health.Check(r.Context(), &grpc_health_v1.HealthCheckRequest{})
	if err != nil || resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (g *gateway) login(w http.ResponseWriter, r *http.Request) {
	var in session.Session
	if !decode(w, r, &in) {
		return
	}
	out, err := g.session.Login(r.Context(), &in)
	respond(g, w, http.StatusCreated, out, err)
}

func (g *gateway) currentSession(w http.ResponseWriter, r *http.Request) {
	out, err := g.session.Current(r.Context())
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) logout(w http.ResponseWriter, r *http.Request) {
	if err := g.session.Logout(r.Context()); err != nil {
		writeError(w, g.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (g *gateway) getCart(w http.ResponseWriter, r *http.Request) {
	out, err := g.cart.GetCart(r.Context(), &cartgrpc.UserRequest{UserID: chi.URLParam(r, "userID")})
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) clearCart(w http.ResponseWriter, r *http.Request) {
	out, err := g.cart.ClearCart(r.Context(), &cartgrpc.UserRequest{UserID: chi.URLParam(r, "userID")})
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) validateCart(w http.ResponseWriter, r *http.Request) {
	out, err := g.cart.ValidateCheckout(r.Context(), &cartgrpc.UserRequest{UserID: chi.URLParam(r, "userID")})
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) addItem(w http.ResponseWriter, r *http.Request) {
	var item cartdomain.LineItem
	if !decode(w, r, &item) {
		return
	}
	out, err := g.cart.AddItem(r.Context(), &cartgrpc.AddItemRequest{UserID: chi.URLParam(r, "userID"), Item: item})
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Delta  int     `json:"delta"`
		UnitID *string `json:"unitId"`
	}
	if !decode(w, r, &in) {
		return
	}
	out, err := g.cart.UpdateQuantity(r.Context(), &cartgrpc.UpdateQuantityRequest{
		UserID:    chi.URLParam(r, "userID"),
		ProductID: chi.URLParam(r, "productID"),
		UnitID:    in.UnitID,
		Delta:     in.Delta,
	})
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) removeItem(w http.ResponseWriter, r *http.Request) {
	out, err := g.cart.RemoveItem(r.Context(), &cartgrpc.RemoveItemRequest{
		UserID:    chi.URLParam(r, "userID"),
		ProductID: chi.URLParam(r, "productID"),
		UnitID:    optional(r.URL.Query().Get("unitId")),
	})
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) getProduct(w http.ResponseWriter, r *http.Request) {
	out, err := g.catalog.GetProduct(r.Context(), &cataloggrpc.GetProductRequest{ID: chi.URLParam(r, "productID")})
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) quoteUnit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requested, err := strconv.ParseFloat(q.Get("quantity"), 64)
	if err != nil {
		badRequest(w, "quantity must be a number")
		return
	}
	out, err := g.catalog.QuoteUnit(r.Context(), &cataloggrpc.QuoteUnitRequest{
		ProductID: chi.URLParam(r, "productID"),
		UnitID:    q.Get("unitId"),
		Requested: requested,
	})
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) listProducts(w http.ResponseWriter, r *http.Request) {
	epicerieID, err := strconv.ParseInt(chi.URLParam(r, "epicerieID"), 10, 64)
	if err != nil {
		badRequest(w, "epicerie id must be an integer")
		return
	}
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	out, err := g.catalog.ListProducts(r.Context(), &cataloggrpc.ListProductsRequest{
		EpicerieID: epicerieID,
		Query:      q.Get("q"),
		Limit:      limit,
		Cursor:     q.Get("cursor"),
	})
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) quote(w http.ResponseWriter, r *http.Request) {
	out, err := g.checkout.Quote(r.Context(), &checkoutgrpc.QuoteRequest{UserID: chi.URLParam(r, "userID")})
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) placeOrder(w http.ResponseWriter, r *http.Request) {
	var in struct {
		DeliveryFee     decimal.Decimal `json:"deliveryFee"`
		DeliveryAddress string          `json:"deliveryAddress"`
		Note            string          `json:"note"`
	}
	if !decode(w, r, &in) {
		return
	}
	out, err := g.checkout.PlaceOrder(r.Context(), &checkoutgrpc.PlaceOrderRequest{
		UserID:          chi.URLParam(r, "userID"),
		DeliveryFee:     in.DeliveryFee,
		DeliveryAddress: in.DeliveryAddress,
		Note:            in.Note,
	})
	respond(g, w, http.StatusCreated, out, err)
}

func (g *gateway) startPreparation(w http.ResponseWriter, r *http.Request) {
	out, err := g.prep.Start(r.Context(), &prepgrpc.OrderRequest{OrderID: chi.URLParam(r, "orderID")})
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) getPreparation(w http.ResponseWriter, r *http.Request) {
	out, err := g.prep.Get(r.Context(), &prepgrpc.OrderRequest{OrderID: chi.URLParam(r, "orderID")})
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) progress(w http.ResponseWriter, r *http.Request) {
	out, err := g.prep.Progress(r.Context(), &prepgrpc.OrderRequest{OrderID: chi.URLParam(r, "orderID")})
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) scan(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Barcode string `json:"barcode"`
	}
	if !decode(w, r, &in) {
		return
	}
	out, err := g.prep.ScanBarcode(r.Context(), &prepgrpc.ScanRequest{OrderID: chi.URLParam(r, "orderID"), Barcode: in.Barcode})
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) finish(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Force bool `json:"force"`
	}
	if r.ContentLength != 0 && !decode(w, r, &in) {
		return
	}
	out, err := g.prep.Finish(r.Context(), &prepgrpc.FinishRequest{OrderID: chi.URLParam(r, "orderID"), Force: in.Force})
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) modifyQuantity(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Quantity float64 `json:"quantity"`
	}
	if !decode(w, r, &in) {
		return
	}
	out, err := g.prep.ModifyQuantity(r.Context(), &prepgrpc.QuantityRequest{
		OrderID:  chi.URLParam(r, "orderID"),
		ItemID:   chi.URLParam(r, "itemID"),
		Quantity: in.Quantity,
	})
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) completeItem(w http.ResponseWriter, r *http.Request) {
	out, err := g.prep.CompleteItem(r.Context(), &prepgrpc.ItemRequest{OrderID: chi.URLParam(r, "orderID"), ItemID: chi.URLParam(r, "itemID")})
	respond(g, w, http.StatusOK, out, err)
}

func (g *gateway) markUnavailable(w http.ResponseWriter, r *http.Request) {
	out, err := g.prep.MarkUnavailable(r.Context(), &prepgrpc.ItemRequest{OrderID: chi.URLParam(r, "orderID"), ItemID: chi.URLParam(r, "itemID")})
	respond(g, w, http.StatusOK, out, err)
}
