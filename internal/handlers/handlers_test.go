package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	ucAppointment "github.com/BruksfildServices01/salon-scheduler/internal/usecase/appointment"
)

const ownerUserID = 100

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"error_code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type listData[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type fixture struct {
	store    *memory.Store
	salon    *models.Salon
	ana      *models.Staff
	customer *models.Customer
	haircut  *models.Service
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store: memory.MustNew(),
		now:   time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
	}
	f.salon = f.store.AddSalon(models.Salon{
		OwnerID:                 ownerUserID,
		Name:                    "Glamour Studio",
		Timezone:                "UTC",
		OpenTime:                "09:00",
		CloseTime:               "18:00",
		CancellationNoticeHours: 24,
		Active:                  true,
	})
	salonID := f.salon.ID
	f.ana = f.store.AddStaff(models.Staff{SalonID: &salonID, Name: "Ana", Skills: "All", Active: true})
	f.customer = f.store.AddCustomer(models.Customer{Name: "Dora"})

	f.haircut = &models.Service{SalonID: &salonID, Name: "Haircut", Category: "Hair", DurationMin: 60, Price: 1000, Active: true}
	require.NoError(t, f.store.SaveService(context.Background(), f.haircut))
	return f
}

func (f *fixture) deps() ucAppointment.Deps {
	return ucAppointment.Deps{
		Repo:   f.store,
		Ledger: f.store,
		Sales:  f.store,
		Log:    zerolog.Nop(),
		Now:    func() time.Time { return f.now },
	}
}

func (f *fixture) customerActor() identity.Actor {
	return identity.Actor{ID: f.customer.ID, Role: identity.RoleCustomer}
}

func (f *fixture) ownerActor() identity.Actor {
	return identity.Actor{ID: ownerUserID, Role: identity.RoleOwner, SalonID: f.salon.ID}
}

// as stands in for AuthMiddleware.
func as(a identity.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextActor, a)
		c.Next()
	}
}

func do(t *testing.T, r http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

// ======================================================
// BOOK
// ======================================================

func TestBookHandler(t *testing.T) {
	f := newFixture(t)

	r := gin.New()
	h := NewAppointmentHandler(f.deps())
	r.POST("/customer/bookings", as(f.customerActor()), h.Book)
	r.POST("/owner/bookings", as(f.ownerActor()), h.Book)

	body := gin.H{
		"salon_id": f.salon.ID,
		"staff_id": f.ana.ID,
		"services": []gin.H{{"service_id": f.haircut.ID}},
		"date":     "2025-06-04",
		"time":     "10:00",
	}

	t.Run("Created", func(t *testing.T) {
		code, env := do(t, r, http.MethodPost, "/customer/bookings", body)
		require.Equal(t, http.StatusCreated, code)
		assert.True(t, env.Success)

		var ap models.Appointment
		require.NoError(t, json.Unmarshal(env.Data, &ap))
		assert.Equal(t, "Pending", ap.Status)
		assert.Equal(t, "11:00", ap.EstimatedEndTime)
	})

	t.Run("OverlapIsConflict", func(t *testing.T) {
		code, env := do(t, r, http.MethodPost, "/customer/bookings", body)
		assert.Equal(t, http.StatusConflict, code)
		assert.False(t, env.Success)
		assert.Equal(t, "time_conflict", env.Code)
	})

	t.Run("Rejected", func(t *testing.T) {
		cases := []struct {
			name   string
			path   string
			body   any
			status int
			code   string
		}{
			{"MalformedBody", "/customer/bookings", "{", http.StatusBadRequest, "invalid_request"},
			{"NoServices", "/customer/bookings", gin.H{"salon_id": f.salon.ID, "date": "2025-06-04", "time": "12:00"}, http.StatusBadRequest, "invalid_request"},
			{"UnknownItemType", "/customer/bookings", gin.H{
				"salon_id": f.salon.ID,
				"services": []gin.H{{"type": "gift"}},
				"date":     "2025-06-04",
				"time":     "12:00",
			}, http.StatusBadRequest, "invalid_service_type"},
			{"NotACustomer", "/owner/bookings", body, http.StatusForbidden, "customers_only"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				code, env := do(t, r, http.MethodPost, tc.path, tc.body)
				assert.Equal(t, tc.status, code)
				assert.Equal(t, tc.code, env.Code)
			})
		}
	})
}

// ======================================================
// AVAILABILITY
// ======================================================

func TestAvailabilityHandler(t *testing.T) {
	f := newFixture(t)

	r := gin.New()
	r.Use(as(f.customerActor()))
	book := NewAppointmentHandler(f.deps())
	r.POST("/bookings", book.Book)
	r.GET("/available-slots", NewAvailabilityHandler(f.deps()).Slots)

	code, _ := do(t, r, http.MethodPost, "/bookings", gin.H{
		"salon_id": f.salon.ID,
		"staff_id": f.ana.ID,
		"services": []gin.H{{"service_id": f.haircut.ID}},
		"date":     "2025-06-04",
		"time":     "10:00",
	})
	require.Equal(t, http.StatusCreated, code)

	t.Run("BookedTimeIsNotOffered", func(t *testing.T) {
		path := fmt.Sprintf("/available-slots?salonId=%d&staffId=%d&date=2025-06-04&duration=60", f.salon.ID, f.ana.ID)
		code, env := do(t, r, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, code)

		var out struct {
			Date  string `json:"date"`
			Slots []struct {
				Start string `json:"start"`
				End   string `json:"end"`
			} `json:"slots"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &out))
		require.NotEmpty(t, out.Slots)

		starts := make([]string, 0, len(out.Slots))
		for _, s := range out.Slots {
			starts = append(starts, s.Start)
		}
		assert.Equal(t, "09:00", starts[0])
		assert.Contains(t, starts, "11:00")
		assert.NotContains(t, starts, "09:30")
		assert.NotContains(t, starts, "10:00")
		assert.NotContains(t, starts, "10:30")
	})

	t.Run("QueryValidation", func(t *testing.T) {
		cases := []struct {
			name   string
			query  string
			status int
			code   string
		}{
			{"NoTarget", "date=2025-06-04", http.StatusBadRequest, "invalid_target"},
			{"BothTargets", fmt.Sprintf("salonId=%d&freelancerId=1&date=2025-06-04", f.salon.ID), http.StatusBadRequest, "invalid_target"},
			{"BadSalonID", "salonId=abc&date=2025-06-04", http.StatusBadRequest, "invalid_salonId"},
			{"MissingDate", fmt.Sprintf("salonId=%d", f.salon.ID), http.StatusBadRequest, "missing_date"},
			{"UnknownSalon", "salonId=999&date=2025-06-04", http.StatusNotFound, "salon_not_found"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				code, env := do(t, r, http.MethodGet, "/available-slots?"+tc.query, nil)
				assert.Equal(t, tc.status, code)
				assert.Equal(t, tc.code, env.Code)
			})
		}
	})
}

// ======================================================
// SALON SETTINGS
// ======================================================

func TestBusinessHours(t *testing.T) {
	f := newFixture(t)
	dispatcher := audit.NewDispatcher(f.store, zerolog.Nop())

	owner := gin.New()
	owner.Use(as(f.ownerActor()))
	h := NewSalonHandler(f.store, dispatcher)
	logs := NewAuditLogsHandler(f.store, f.store)
	owner.GET("/business-hours", h.GetBusinessHours)
	owner.PUT("/business-hours", h.UpdateBusinessHours)
	owner.GET("/audit-logs", logs.List)

	t.Run("Get", func(t *testing.T) {
		code, env := do(t, owner, http.MethodGet, "/business-hours", nil)
		require.Equal(t, http.StatusOK, code)

		var out BusinessHoursResponse
		require.NoError(t, json.Unmarshal(env.Data, &out))
		assert.Equal(t, "09:00", out.OpenTime)
		assert.Equal(t, "18:00", out.CloseTime)
		assert.Empty(t, out.WorkingDays)
		assert.Equal(t, 24, out.CancellationNoticeHours)
	})

	t.Run("Update", func(t *testing.T) {
		code, env := do(t, owner, http.MethodPut, "/business-hours", gin.H{
			"open_time":                 "08:30",
			"close_time":                "20:00",
			"working_days":              []string{"monday", "Tue"},
			"cancellation_notice_hours": 12,
		})
		require.Equal(t, http.StatusOK, code, env.Code)

		var out BusinessHoursResponse
		require.NoError(t, json.Unmarshal(env.Data, &out))
		assert.Equal(t, []string{"Monday", "Tuesday"}, out.WorkingDays)

		stored, err := f.store.GetSalon(context.Background(), f.salon.ID)
		require.NoError(t, err)
		assert.Equal(t, "08:30", stored.OpenTime)
		assert.Equal(t, "20:00", stored.CloseTime)
		assert.Equal(t, 12, stored.CancellationNoticeHours)
	})

	t.Run("Invalid", func(t *testing.T) {
		cases := []struct {
			name string
			body gin.H
			code string
		}{
			{"ClosesBeforeOpening", gin.H{"open_time": "18:00", "close_time": "09:00"}, "invalid_window"},
			{"BadTime", gin.H{"open_time": "9am"}, "invalid_time"},
			{"RepeatedDay", gin.H{"working_days": []string{"Monday", "monday"}}, "invalid_working_days"},
			{"BadTimezone", gin.H{"timezone": "Mars/Olympus"}, "invalid_timezone"},
			{"NoticeTooLong", gin.H{"cancellation_notice_hours": 500}, "invalid_notice_hours"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				code, env := do(t, owner, http.MethodPut, "/business-hours", tc.body)
				assert.Equal(t, http.StatusBadRequest, code)
				assert.Equal(t, tc.code, env.Code)
			})
		}
	})

	t.Run("OtherOwner", func(t *testing.T) {
		r := gin.New()
		r.GET("/business-hours", as(identity.Actor{ID: 999, Role: identity.RoleOwner, SalonID: f.salon.ID}), h.GetBusinessHours)
		r.GET("/none", as(identity.Actor{ID: ownerUserID, Role: identity.RoleOwner}), h.GetBusinessHours)

		code, env := do(t, r, http.MethodGet, "/business-hours", nil)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "not_owner", env.Code)

		code, env = do(t, r, http.MethodGet, "/none", nil)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "no_business", env.Code)
	})

	t.Run("AuditTrail", func(t *testing.T) {
		dispatcher.Close()

		code, env := do(t, owner, http.MethodGet, "/audit-logs", nil)
		require.Equal(t, http.StatusOK, code)
		var out listData[models.AuditLog]
		require.NoError(t, json.Unmarshal(env.Data, &out))
		require.Len(t, out.Items, 1)
		assert.Equal(t, "business_hours_updated", out.Items[0].Action)
		assert.Equal(t, "salon", out.Items[0].Entity)

		code, env = do(t, owner, http.MethodGet, "/audit-logs?action=appointment_created", nil)
		require.Equal(t, http.StatusOK, code)
		out = listData[models.AuditLog]{}
		require.NoError(t, json.Unmarshal(env.Data, &out))
		assert.Empty(t, out.Items)
	})
}

func TestServiceHandler(t *testing.T) {
	f := newFixture(t)

	r := gin.New()
	r.Use(as(f.ownerActor()))
	h := NewServiceHandler(f.store)
	r.GET("/services", h.List)
	r.POST("/services", h.Create)
	r.PATCH("/services/:id", h.Update)

	code, env := do(t, r, http.MethodPost, "/services", gin.H{
		"name":         " Manicure ",
		"category":     "Nails",
		"duration_min": 45,
		"price":        500,
	})
	require.Equal(t, http.StatusCreated, code, env.Code)
	var created models.Service
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Manicure", created.Name)
	assert.True(t, created.Active)
	require.NotNil(t, created.SalonID)
	assert.Equal(t, f.salon.ID, *created.SalonID)

	t.Run("ListByCategory", func(t *testing.T) {
		code, env := do(t, r, http.MethodGet, "/services?category=nails", nil)
		require.Equal(t, http.StatusOK, code)
		var out listData[models.Service]
		require.NoError(t, json.Unmarshal(env.Data, &out))
		require.Len(t, out.Items, 1)
		assert.Equal(t, created.ID, out.Items[0].ID)
	})

	t.Run("Deactivate", func(t *testing.T) {
		code, env := do(t, r, http.MethodPatch, fmt.Sprintf("/services/%d", created.ID), gin.H{"active": false})
		require.Equal(t, http.StatusOK, code, env.Code)

		code, env = do(t, r, http.MethodGet, "/services?active=true", nil)
		require.Equal(t, http.StatusOK, code)
		var out listData[models.Service]
		require.NoError(t, json.Unmarshal(env.Data, &out))
		require.Len(t, out.Items, 1)
		assert.Equal(t, f.haircut.ID, out.Items[0].ID)
	})

	t.Run("Rejected", func(t *testing.T) {
		code, env := do(t, r, http.MethodPatch, fmt.Sprintf("/services/%d", created.ID), gin.H{"discounted_price": 900})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "invalid_discounted_price", env.Code)

		code, env = do(t, r, http.MethodPatch, "/services/999", gin.H{"name": "x"})
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "service_not_found", env.Code)

		code, env = do(t, r, http.MethodPatch, "/services/abc", gin.H{"name": "x"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "invalid_id", env.Code)
	})
}

func TestMeHandler(t *testing.T) {
	f := newFixture(t)
	h := NewMeHandler(f.store)

	r := gin.New()
	r.GET("/customer", as(f.customerActor()), h.GetMe)
	r.GET("/owner", as(f.ownerActor()), h.GetMe)

	code, env := do(t, r, http.MethodGet, "/customer", nil)
	require.Equal(t, http.StatusOK, code)
	var out struct {
		Actor    identity.Actor   `json:"actor"`
		Customer *models.Customer `json:"customer"`
		Salon    *models.Salon    `json:"salon"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, identity.RoleCustomer, out.Actor.Role)
	require.NotNil(t, out.Customer)
	assert.Equal(t, "Dora", out.Customer.Name)

	code, env = do(t, r, http.MethodGet, "/owner", nil)
	require.Equal(t, http.StatusOK, code)
	out.Customer, out.Salon = nil, nil
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotNil(t, out.Salon)
	assert.Equal(t, "Glamour Studio", out.Salon.Name)
}
