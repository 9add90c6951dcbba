package routes

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendas-backend/controllers"
	"vendas-backend/models"
)

func product(name, category, price string) map[string]interface{} {
	return map[string]interface{}{"name": name, "category": category, "price": price}
}

func TestCreateProductGeneratesUniqueCodes(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access

	first := create[models.Product](s, "/api/products", product("Motor Elétrico Trifásico", "motores", "1500.00"), token)
	second := create[models.Product](s, "/api/products", product("Motor Elétrico Monofásico", "motores", "1200.00"), token)

	assert.Equal(t, "MOT-ELE", first.Code)
	assert.Equal(t, "MOT-ELE-1", second.Code)
	assert.Equal(t, "Motores", first.CategoryDisplay)
	assert.True(t, first.Price.Equal(decimal.RequireFromString("1500")))
}

func TestCreateProductDuplicateCode(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access

	body := product("Placa VK-400", "placas", "10")
	body["code"] = "PLA-VK-400"
	create[models.Product](s, "/api/products", body, token)

	body = product("Outra placa", "placas", "10")
	body["code"] = "PLA-VK-400"
	w := s.do(http.MethodPost, "/api/products", body, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	s.db.Model(&models.Product{}).Where("code = ?", "PLA-VK-400").Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateProductValidation(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/products", product("X", "tratores", "1"), token).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/products", product("X", "placas", "-1"), token).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/products", product("X", "placas", "1.999"), token).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/products", product("X", "placas", "100000000"), token).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/products", map[string]string{"name": "X", "category": "placas"}, token).Code)
}

func TestListProductsFilterSearchOrdering(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access

	create[models.Product](s, "/api/products", product("Placa Vibratória VK-85", "placas", "300"), token)
	create[models.Product](s, "/api/products", product("Placa Vibratória VK-120", "placas", "500"), token)
	create[models.Product](s, "/api/products", product("Cortadora De Piso CPV-350", "cortadoras", "900"), token)

	w := s.do(http.MethodGet, "/api/products", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]models.Product](t, w)
	require.Len(t, all, 3)
	// default ordering is category then code
	assert.Equal(t, "cortadoras", all[0].Category)
	assert.Equal(t, "PLA-VK-120", all[1].Code)
	assert.Equal(t, "PLA-VK-85", all[2].Code)

	w = s.do(http.MethodGet, "/api/products?category=placas", nil, token)
	assert.Len(t, decode[[]models.Product](t, w), 2)

	w = s.do(http.MethodGet, "/api/products?search=cpv", nil, token)
	found := decode[[]models.Product](t, w)
	require.Len(t, found, 1)
	assert.Equal(t, "COR-CPV-350", found[0].Code)

	w = s.do(http.MethodGet, "/api/products?ordering=-price", nil, token)
	ordered := decode[[]models.Product](t, w)
	require.Len(t, ordered, 3)
	assert.Equal(t, "COR-CPV-350", ordered[0].Code)
	assert.Equal(t, "PLA-VK-85", ordered[2].Code)
}

func TestUpdateProductPartial(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access
	p := create[models.Product](s, "/api/products", product("Placa VK-85", "placas", "300"), token)

	w := s.do(http.MethodPatch, "/api/products/"+p.ID.String(), map[string]interface{}{
		"price": "350.50",
		"specs": map[string]interface{}{"peso": "85kg"},
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Product](t, w)
	assert.Equal(t, p.Name, updated.Name)
	assert.Equal(t, p.Code, updated.Code)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("350.50")))
	assert.Equal(t, "85kg", updated.Specs["peso"])

	w = s.do(http.MethodPatch, "/api/products/"+p.ID.String(), map[string]interface{}{"price": "350.505"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestDeleteProductCascadesDocumentsAndVideos(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access
	p := create[models.Product](s, "/api/products", product("Placa VK-85", "placas", "300"), token)

	create[models.Document](s, "/api/documents", map[string]interface{}{
		"product": p.ID, "type": "manual", "title": "Manual VK-85",
	}, token)
	create[models.Video](s, "/api/videos", map[string]interface{}{
		"product": p.ID, "title": "Operação", "youtube_link": "https://youtube.com/watch?v=abc",
	}, token)

	w := s.do(http.MethodDelete, "/api/products/"+p.ID.String(), nil, token)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	var docs, videos int64
	s.db.Model(&models.Document{}).Count(&docs)
	s.db.Model(&models.Video{}).Count(&videos)
	assert.Zero(t, docs)
	assert.Zero(t, videos)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/products/"+p.ID.String(), nil, token).Code)
}

func TestDeleteProductReferencedByQuoteItem(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access
	p := create[models.Product](s, "/api/products", product("Placa VK-85", "placas", "300"), token)
	client := create[models.Client](s, "/api/clients", map[string]string{"name": "Construtora Alfa"}, token)
	create[models.Quote](s, "/api/quotes", map[string]interface{}{
		"client": client.ID,
		"items":  []map[string]interface{}{{"product": p.ID, "quantity": 1}},
	}, token)

	w := s.do(http.MethodDelete, "/api/products/"+p.ID.String(), nil, token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "quote_items")

	var count int64
	s.db.Model(&models.Product{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestDocumentTypeDisplayAndValidation(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access
	p := create[models.Product](s, "/api/products", product("Placa VK-85", "placas", "300"), token)

	doc := create[models.Document](s, "/api/documents", map[string]interface{}{
		"product": p.ID, "type": "vista_explodida", "title": "Vista",
	}, token)
	assert.Equal(t, "Vista Explodida", doc.TypeDisplay)

	w := s.do(http.MethodPost, "/api/documents", map[string]interface{}{
		"product": p.ID, "type": "folheto", "title": "Folheto",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/documents", map[string]interface{}{
		"product": "7f1d4c8e-0000-4000-8000-000000000000", "type": "manual", "title": "Manual",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductStatistics(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access

	create[models.Product](s, "/api/products", product("Placa VK-85", "placas", "1"), token)
	create[models.Product](s, "/api/products", product("Placa VK-120", "placas", "1"), token)
	create[models.Product](s, "/api/products", product("Motor Elétrico", "motores", "1"), token)

	w := s.do(http.MethodGet, "/api/products/statistics", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stats := decode[controllers.ProductStatistics](t, w)

	require.Len(t, stats.SalesHistory, 1)
	assert.EqualValues(t, 3, stats.SalesHistory[0].Value)

	require.Len(t, stats.SalesByCategory, 2)
	assert.Equal(t, "placas", stats.SalesByCategory[0].Category)
	assert.EqualValues(t, 2, stats.SalesByCategory[0].Value)

	assert.Len(t, stats.TopProducts, 3)
}

func TestUploadDocument(t *testing.T) {
	s := newTestServer(t, true)
	token := s.register("ana").Access
	p := create[models.Product](s, "/api/products", product("Placa VK-85", "placas", "300"), token)
	doc := create[models.Document](s, "/api/documents", map[string]interface{}{
		"product": p.ID, "type": "manual", "title": "Manual",
	}, token)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "manual.PDF")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("%PDF-1.4"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/"+doc.ID.String()+"/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	uploaded := decode[models.Document](t, w)
	require.Len(t, s.storage.keys, 1)
	assert.Equal(t, "products/"+p.ID.String()+"/documents/"+doc.ID.String()+".pdf", s.storage.keys[0])
	assert.Equal(t, "https://files.example.com/"+s.storage.keys[0], uploaded.ExternalLink)
	assert.Equal(t, []byte("%PDF-1.4"), s.storage.body)
}

func TestUploadDocumentWithoutStorage(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access

	w := s.do(http.MethodPost, "/api/documents/7f1d4c8e-0000-4000-8000-000000000000/upload", nil, token)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
