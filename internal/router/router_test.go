package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/auth"
	"julianmorley.ca/con-plar/storefront/pkg/cart"
	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/storage"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type cartStore struct {
	mu    sync.Mutex
	carts map[bson.ObjectID]models.Cart
}

func (m *cartStore) FindCartByUser(_ context.Context, userID bson.ObjectID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return nil, global.NotFound("Cart not found")
	}
	c.Items = append([]models.LineItem(nil), c.Items...)
	return &c, nil
}

func (m *cartStore) InsertCart(_ context.Context, c *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[c.UserID] = *c
	return nil
}

func (m *cartStore) ReplaceCart(_ context.Context, c *models.Cart, expected int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.carts[c.UserID].Version != expected {
		return global.Conflict("Cart was modified concurrently, please retry")
	}
	m.carts[c.UserID] = *c
	return nil
}

func (m *cartStore) DeleteCartVersion(_ context.Context, userID bson.ObjectID, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}

func (m *cartStore) DeleteCart(_ context.Context, userID bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}

type productStore map[bson.ObjectID]*models.Product

func (p productStore) FindProductByID(_ context.Context, id bson.ObjectID) (*models.Product, error) {
	prod, ok := p[id]
	if !ok {
		return nil, global.NotFound("Product not found")
	}
	return prod, nil
}

func (p productStore) InsertProduct(_ context.Context, prod *models.Product) error {
	p[prod.ID] = prod
	return nil
}

func (p productStore) FindProductBySlug(context.Context, string) (*models.Product, error) {
	return nil, global.NotFound("Product not found")
}

func (p productStore) ListProducts(context.Context) ([]models.Product, error) {
	out := make([]models.Product, 0, len(p))
	for _, prod := range p {
		out = append(out, *prod)
	}
	return out, nil
}

func (p productStore) ListFlashSales(context.Context, time.Time) ([]models.Product, error) {
	return nil, nil
}

func (p productStore) ReplaceProduct(_ context.Context, prod *models.Product) error {
	p[prod.ID] = prod
	return nil
}

func (p productStore) DeleteProduct(_ context.Context, id bson.ObjectID) (*models.Product, error) {
	prod, ok := p[id]
	if !ok {
		return nil, global.NotFound("Product not found")
	}
	delete(p, id)
	return prod, nil
}

type testServer struct {
	engine      *gin.Engine
	product     *models.Product
	variationID bson.ObjectID
	customer    string
	admin       string
	db          *pinger
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	variationID := bson.NewObjectID()
	product := &models.Product{
		ID:           bson.NewObjectID(),
		Name:         "Canvas Tote",
		SKU:          "TOTE-1",
		SellingPrice: 25,
		Status:       "Active",
		Variations: []models.Variation{
			{ID: variationID, Color: "sand", Size: "OS", Price: 30, QuantityAvailable: 5, SKU: "TOTE-1-SAND"},
		},
	}
	products := productStore{product.ID: product}

	tokens := auth.NewTokens("router-test", time.Hour)
	now := time.Now()
	customer, err := tokens.Issue(&models.User{ID: bson.NewObjectID(), Role: models.RoleCustomer}, now)
	require.NoError(t, err)
	admin, err := tokens.Issue(&models.User{ID: bson.NewObjectID(), Role: models.RoleAdmin}, now)
	require.NoError(t, err)

	db := &pinger{}
	h := NewHandler(Deps{
		DB:       db,
		Auth:     auth.NewService(nil, tokens, nil, nil, ""),
		Products: catalog.NewService(products, nil, nil),
		Carts:    cart.NewService(&cartStore{carts: map[bson.ObjectID]models.Cart{}}, catalog.NewReader(products), nil),
		Images:   storage.NewImageStore(nil, ""),
	})

	engine := NewEngine(true, nil, nil)
	InitializeRoutes(engine, h)
	return &testServer{engine: engine, product: product, variationID: variationID, customer: customer, admin: admin, db: db}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, global.APIResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp global.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Status)

	s.db.err = errors.New("no reachable servers")
	w, resp = s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, resp.Status)
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/cart", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/products", s.customer, map[string]interface{}{"name": "Mug", "sku": "MUG"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp := s.do(t, http.MethodPost, "/api/products", s.admin, map[string]interface{}{"name": "Mug", "sku": "MUG", "sellingPrice": 12})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Status)
}

func TestCartEndpoints(t *testing.T) {
	s := newTestServer(t)
	pid := s.product.ID.Hex()
	vid := s.variationID.Hex()

	w, _ := s.do(t, http.MethodGet, "/api/cart", s.customer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp := s.do(t, http.MethodPost, "/api/cart", s.customer, map[string]interface{}{"productId": pid, "variationId": vid})
	require.Equal(t, http.StatusOK, w.Code, "add without quantity defaults to one")
	require.NotNil(t, resp.Total)
	assert.Equal(t, 30.0, *resp.Total)

	w, _ = s.do(t, http.MethodPut, "/api/cart", s.customer, map[string]interface{}{"productId": pid, "variationId": vid})
	assert.Equal(t, http.StatusBadRequest, w.Code, "update still needs a quantity")

	w, resp = s.do(t, http.MethodPost, "/api/cart", s.customer, map[string]interface{}{"productId": pid, "variationId": vid, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, resp.Total)
	assert.Equal(t, 60.0, *resp.Total)

	w, resp = s.do(t, http.MethodPut, "/api/cart", s.customer, map[string]interface{}{"productId": pid, "variationId": vid, "quantity": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Requested quantity exceeds available stock", resp.Msg)

	w, _ = s.do(t, http.MethodPost, "/api/cart", s.customer, map[string]interface{}{"productId": bson.NewObjectID().Hex(), "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = s.do(t, http.MethodDelete, "/api/cart/"+pid+"?variationId="+vid, s.customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, resp.Total)
	assert.Zero(t, *resp.Total)

	w, _ = s.do(t, http.MethodDelete, "/api/cart/not-an-id", s.customer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for i := 0; i < 2; i++ {
		w, resp = s.do(t, http.MethodDelete, "/api/cart/clear", s.customer, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Status)
	}
}

func TestUploadWithoutStorage(t *testing.T) {
	s := newTestServer(t)

	upload := func(contentType string) int {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="a.bin"`)
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("data"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/upload/image", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+s.admin)
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusBadRequest, upload("text/plain"))
	assert.Equal(t, http.StatusInternalServerError, upload("image/png"))

	w, _ := s.do(t, http.MethodPost, "/api/upload/delete-image", s.admin, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
