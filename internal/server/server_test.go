package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitr/splitr/internal/auth"
	"github.com/splitr/splitr/internal/imagestore"
	"github.com/splitr/splitr/internal/ocr"
	"github.com/splitr/splitr/internal/service"
	"github.com/splitr/splitr/internal/storage/sqlite"
)

type stubParser struct {
	receipt *ocr.Receipt
	err     error
}

func (p *stubParser) Parse(ctx context.Context, filename, contentType string, image io.Reader) (*ocr.Receipt, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.receipt, nil
}

func num(s string) ocr.Number {
	return ocr.Number{Decimal: decimal.RequireFromString(s)}
}

func newTestRouter(t *testing.T, parser service.ReceiptParser) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir, err := os.MkdirTemp("", "splitr-server-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, err := sqlite.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwt := auth.NewJWTManager("test-secret", time.Hour)
	authSvc := service.NewAuthService(auth.NewPasswordAuthenticator(store), jwt)
	receiptSvc := service.NewReceiptService(store, parser, imagestore.Disabled{})
	splitSvc := service.NewSplitService(store)
	return New(authSvc, receiptSvc, splitSvc, jwt).Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into), "body: %s", rec.Body.String())
}

func registerUser(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    email,
		"name":     "Test User",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func uploadReceipt(t *testing.T, router *gin.Engine, token string) string {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "receipt.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/receipts/parse", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var receipt struct {
		ID string `json:"id"`
	}
	decode(t, rec, &receipt)
	require.NotEmpty(t, receipt.ID)
	return receipt.ID
}

func TestAPIRequiresAuth(t *testing.T) {
	router := newTestRouter(t, &stubParser{})

	rec := doJSON(t, router, http.MethodGet, "/api/receipts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/receipts", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPILoginRejectsBadPassword(t *testing.T) {
	router := newTestRouter(t, &stubParser{})
	registerUser(t, router, "alice@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIDuplicateEmail(t *testing.T) {
	router := newTestRouter(t, &stubParser{})
	registerUser(t, router, "alice@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "alice@example.com",
		"name":     "Twin",
		"password": "correct-horse-battery",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPISplitFlow(t *testing.T) {
	parser := &stubParser{receipt: &ocr.Receipt{
		StoreName: "Diner",
		Items: []ocr.Item{
			{Name: "Burger", Price: num("8.99"), Quantity: 1},
			{Name: "Fries", Price: num("3.49"), Quantity: 1},
		},
	}}
	router := newTestRouter(t, parser)
	token := registerUser(t, router, "alice@example.com")
	receiptID := uploadReceipt(t, router, token)

	// Look the receipt up to learn the item IDs.
	rec := doJSON(t, router, http.MethodGet, "/api/receipts/"+receiptID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var receipt struct {
		Items []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"items"`
	}
	decode(t, rec, &receipt)
	require.Len(t, receipt.Items, 2)

	rec = doJSON(t, router, http.MethodPost, "/api/receipts/"+receiptID+"/split", token, gin.H{
		"tax_rate": "8",
		"tip":      gin.H{"kind": "percentage", "rate": "0"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var view struct {
		Session struct {
			ID     string `json:"id"`
			People []struct {
				ID string `json:"id"`
			} `json:"people"`
		} `json:"session"`
	}
	decode(t, rec, &view)
	sessionID := view.Session.ID
	require.Len(t, view.Session.People, 1)
	aliceID := view.Session.People[0].ID

	rec = doJSON(t, router, http.MethodPatch, "/api/splits/"+sessionID+"/people/"+aliceID, token, gin.H{"name": "Alice"})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/splits/"+sessionID+"/people", token, gin.H{"name": "Bob"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var added struct {
		Person struct {
			ID string `json:"id"`
		} `json:"person"`
	}
	decode(t, rec, &added)
	bobID := added.Person.ID

	rec = doJSON(t, router, http.MethodPost, "/api/splits/"+sessionID+"/assign", token, gin.H{
		"item_id": receipt.Items[0].ID, "person_id": aliceID,
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	rec = doJSON(t, router, http.MethodPost, "/api/splits/"+sessionID+"/assign", token, gin.H{
		"item_id": receipt.Items[1].ID, "person_id": bobID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/splits/"+sessionID+"/finalize", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var final struct {
		Session struct {
			Finalized bool `json:"finalized"`
		} `json:"session"`
		Allocation struct {
			Shares []struct {
				Name  string `json:"name"`
				Total string `json:"total"`
			} `json:"shares"`
			GrandTotal string `json:"grand_total"`
		} `json:"allocation"`
	}
	decode(t, rec, &final)
	assert.True(t, final.Session.Finalized)
	require.Len(t, final.Allocation.Shares, 2)
	assert.Equal(t, "9.71", final.Allocation.Shares[0].Total)
	assert.Equal(t, "3.77", final.Allocation.Shares[1].Total)
	assert.Equal(t, "13.48", final.Allocation.GrandTotal)

	// Edits are rejected once finalized.
	rec = doJSON(t, router, http.MethodPost, "/api/splits/"+sessionID+"/people", token, gin.H{"name": "Carol"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPIStatusMapping(t *testing.T) {
	router := newTestRouter(t, &stubParser{receipt: &ocr.Receipt{
		Items: []ocr.Item{{Name: "Soup", Price: num("5.00"), Quantity: 1}},
	}})
	token := registerUser(t, router, "alice@example.com")
	other := registerUser(t, router, "mallory@example.com")
	receiptID := uploadReceipt(t, router, token)

	rec := doJSON(t, router, http.MethodGet, "/api/receipts/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/receipts/"+receiptID, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/receipts/"+receiptID+"/split", token, gin.H{
		"tax_rate": "50",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/receipts/"+receiptID+"/split", token, gin.H{
		"tax_rate": "8",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var view struct {
		Session struct {
			ID     string `json:"id"`
			People []struct {
				ID string `json:"id"`
			} `json:"people"`
		} `json:"session"`
	}
	decode(t, rec, &view)

	// Unknown item on assign.
	rec = doJSON(t, router, http.MethodPost, "/api/splits/"+view.Session.ID+"/assign", token, gin.H{
		"item_id": "nope", "person_id": view.Session.People[0].ID,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Removing the only person.
	rec = doJSON(t, router, http.MethodDelete,
		"/api/splits/"+view.Session.ID+"/people/"+view.Session.People[0].ID, token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPIParseUpstreamFailure(t *testing.T) {
	router := newTestRouter(t, &stubParser{err: assert.AnError})
	token := registerUser(t, router, "alice@example.com")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "receipt.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("img"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/receipts/parse", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
