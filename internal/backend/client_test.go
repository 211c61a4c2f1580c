package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/excellence-college/school-portal/internal/models"
	"github.com/excellence-college/school-portal/pkg/config"
	appErrors "github.com/excellence-college/school-portal/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.BackendConfig{BaseURL: srv.URL, Timeout: 2 * time.Second}, nil)
}

func writeEnvelope(w http.ResponseWriter, status int, env map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func TestLoginSuccess(t *testing.T) {
	var gotBody map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"token": "jwt-token",
				"user":  map[string]string{"id": "u1", "username": "admin", "role": "admin"},
			},
		})
	})

	result, err := client.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", result.Token)
	assert.Equal(t, "admin", result.User.Username)
	assert.Equal(t, map[string]string{"username": "admin", "password": "secret"}, gotBody)
}

func TestLoginInvalidCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"message": "Invalid credentials",
		})
	})

	_, err := client.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)
	assert.True(t, appErrors.IsAuth(err))
	assert.Equal(t, "Invalid credentials", appErrors.FromError(err).Message)
}

func TestListInquiriesSendsQueryAndBearer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/inquiries", r.URL.Path)
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "pending", q.Get("status"))
		assert.Equal(t, "doe", q.Get("search"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "createdAt", q.Get("sortBy"))
		assert.Equal(t, "desc", q.Get("order"))

		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"data":       []map[string]interface{}{{"_id": "i1", "parentName": "Jane Doe"}},
			"pagination": map[string]int{"page": 2, "limit": 10, "total": 15, "pages": 2},
		})
	})

	inquiries, pagination, err := client.ListInquiries(context.Background(), "tok-123", models.ListQuery{
		Search: "doe", Status: "pending", Page: 2, Limit: 10, SortBy: "createdAt", Order: "desc",
	})
	require.NoError(t, err)
	require.Len(t, inquiries, 1)
	assert.Equal(t, "i1", inquiries[0].ID)
	require.NotNil(t, pagination)
	assert.Equal(t, 2, pagination.Pages)
	assert.Equal(t, 15, pagination.Total)
}

func TestCreateInquiryValidationErrorCarriesFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Validation failed",
			"errors": []map[string]string{
				{"field": "parentEmail", "message": "Please enter a valid email"},
			},
		})
	})

	_, err := client.CreateInquiry(context.Background(), models.InquiryForm{})
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
	appErr := appErrors.FromError(err)
	assert.Equal(t, "Please enter a valid email", appErr.Fields["parentEmail"])
}

func TestGetInquiryNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": "Inquiry not found",
		})
	})

	_, err := client.GetInquiry(context.Background(), "tok", "missing")
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestUpdateInquiryOmitsUntouchedFields(t *testing.T) {
	var raw map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/inquiries/i1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    map[string]string{"_id": "i1", "status": "contacted"},
		})
	})

	status := "contacted"
	inquiry, err := client.UpdateInquiry(context.Background(), "tok", "i1", models.InquiryUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "contacted", inquiry.Status)
	assert.Equal(t, "contacted", raw["status"])
	assert.NotContains(t, raw, "adminNotes")
}

func TestExportCSVReturnsRawBytes(t *testing.T) {
	csv := "parentName,studentName\nJane,John\n"
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/inquiries/export/csv", r.URL.Path)
		require.Equal(t, "resolved", r.URL.Query().Get("status"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(csv))
	})

	blob, err := client.ExportCSV(context.Background(), "tok", "resolved")
	require.NoError(t, err)
	assert.Equal(t, csv, string(blob))
}

func TestUnreachableBackendIsNetworkError(t *testing.T) {
	client := NewClient(config.BackendConfig{BaseURL: "http://127.0.0.1:1", Timeout: 500 * time.Millisecond}, nil)

	_, err := client.PublicStats(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.IsNetwork(err))
}

type observerMock struct {
	ops      []string
	statuses []int
}

func (o *observerMock) ObserveBackendRequest(op string, status int, duration time.Duration) {
	o.ops = append(o.ops, op)
	o.statuses = append(o.statuses, status)
}

func TestObserverSeesEveryRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]interface{}{"success": true})
	}))
	defer srv.Close()

	obs := &observerMock{}
	client := NewClient(config.BackendConfig{BaseURL: srv.URL, Timeout: time.Second}, nil, WithObserver(obs))

	require.NoError(t, client.DeleteInquiry(context.Background(), "tok", "i1"))
	require.Equal(t, []string{"inquiries.delete"}, obs.ops)
	assert.Equal(t, []int{http.StatusOK}, obs.statuses)
}
