package attendance_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/attendance"
	attendanceerrors "github.com/takeshikato0219/campervan-time-manager-sub001/internal/attendance/errors"
	"github.com/takeshikato0219/campervan-time-manager-sub001/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	clockInFn       func(ctx context.Context, userID string, req attendance.ClockInRequest) (attendance.AttendanceResponse, error)
	clockOutFn      func(ctx context.Context, userID, device string) (attendance.AttendanceResponse, error)
	adminClockInFn  func(ctx context.Context, req attendance.AdminClockInRequest) (attendance.AttendanceResponse, error)
	adminClockOutFn func(ctx context.Context, req attendance.AdminClockOutRequest) (attendance.AttendanceResponse, error)
	updateFn        func(ctx context.Context, attendanceID, editorID string, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error)
	getAllFn        func(ctx context.Context, actorID string, canReadAll bool) ([]attendance.AttendanceResponse, error)
}

func (f *fakeService) ClockIn(ctx context.Context, userID string, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	return f.clockInFn(ctx, userID, req)
}
func (f *fakeService) ClockOut(ctx context.Context, userID, device string) (attendance.AttendanceResponse, error) {
	return f.clockOutFn(ctx, userID, device)
}
func (f *fakeService) AdminClockIn(ctx context.Context, req attendance.AdminClockInRequest) (attendance.AttendanceResponse, error) {
	return f.adminClockInFn(ctx, req)
}
func (f *fakeService) AdminClockOut(ctx context.Context, req attendance.AdminClockOutRequest) (attendance.AttendanceResponse, error) {
	return f.adminClockOutFn(ctx, req)
}
func (f *fakeService) Update(ctx context.Context, attendanceID, editorID string, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	return f.updateFn(ctx, attendanceID, editorID, req)
}
func (f *fakeService) GetAll(ctx context.Context, actorID string, canReadAll bool) ([]attendance.AttendanceResponse, error) {
	return f.getAllFn(ctx, actorID, canReadAll)
}
func (f *fakeService) AutoCloseOpenRecords(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

func perform(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func newRouter(h *attendance.Handler, userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
	})
	r.GET("/attendances", h.GetAll)
	r.POST("/attendances/clock-in", h.ClockIn)
	r.POST("/attendances/clock-out", h.ClockOut)
	r.POST("/attendances/admin/clock-in", h.AdminClockIn)
	r.PATCH("/attendances/:id", h.Update)
	return r
}

func TestHandler_ClockIn_Success(t *testing.T) {
	svc := &fakeService{}
	svc.clockInFn = func(ctx context.Context, userID string, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
		assert.Equal(t, "user-1", userID)
		assert.Equal(t, attendance.DeviceMobile, req.Device)
		return attendance.AttendanceResponse{ID: "att-1", UserID: userID}, nil
	}

	r := newRouter(attendance.NewHandler(svc), "user-1", "staff")
	w := perform(t, r, http.MethodPost, "/attendances/clock-in", gin.H{"device": "mobile"})

	assert.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Ok   bool `json:"ok"`
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Ok)
	assert.Equal(t, "att-1", envelope.Data.ID)
}

func TestHandler_ClockIn_Duplicate(t *testing.T) {
	svc := &fakeService{}
	svc.clockInFn = func(ctx context.Context, userID string, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
		return attendance.AttendanceResponse{}, attendanceerrors.ErrDuplicateClockIn
	}

	r := newRouter(attendance.NewHandler(svc), "user-1", "staff")
	w := perform(t, r, http.MethodPost, "/attendances/clock-in", gin.H{})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICT")
}

func TestHandler_ClockOut_NoBody(t *testing.T) {
	svc := &fakeService{}
	svc.clockOutFn = func(ctx context.Context, userID, device string) (attendance.AttendanceResponse, error) {
		assert.Empty(t, device)
		return attendance.AttendanceResponse{ID: "att-1"}, nil
	}

	r := newRouter(attendance.NewHandler(svc), "user-1", "staff")
	w := perform(t, r, http.MethodPost, "/attendances/clock-out", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

// clockRouter wires the idempotency middleware in front of a
// redis-aware handler, the way the live routes do.
func clockRouter(svc attendance.Service, rdb *redis.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", "user-1") })
	h := attendance.NewHandlerWithRedis(svc, rdb)
	r.POST("/attendances/clock-in", middleware.Idempotency(rdb), h.ClockIn)
	return r
}

func postWithKey(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/attendances/clock-in", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", key)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_ClockIn_IdempotentRetryReplays(t *testing.T) {
	rdb, mock := redismock.NewClientMock()

	calls := 0
	svc := &fakeService{}
	svc.clockInFn = func(ctx context.Context, userID string, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
		calls++
		return attendance.AttendanceResponse{ID: "att-1", UserID: userID}, nil
	}
	r := clockRouter(svc, rdb)

	cacheKey := "idemp:/attendances/clock-in:user-1:key-1"
	lockKey := cacheKey + ":lock"
	payload, err := json.Marshal(attendance.AttendanceResponse{ID: "att-1", UserID: "user-1"})
	assert.NoError(t, err)

	// First request does the work, caches the payload, frees the lock.
	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(true)
	mock.ExpectSet(cacheKey, payload, 24*time.Hour).SetVal("OK")
	mock.ExpectDel(lockKey).SetVal(1)

	w1 := postWithKey(r, "key-1")
	assert.Equal(t, http.StatusCreated, w1.Code)
	assert.Equal(t, 1, calls)

	// The retry is served from the cache without reaching the service.
	mock.ExpectGet(cacheKey).SetVal(string(payload))

	w2 := postWithKey(r, "key-1")
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, 1, calls)
	assert.Contains(t, w2.Body.String(), "att-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_ClockIn_FailureReleasesLockWithoutCaching(t *testing.T) {
	rdb, mock := redismock.NewClientMock()

	svc := &fakeService{}
	svc.clockInFn = func(ctx context.Context, userID string, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
		return attendance.AttendanceResponse{}, attendanceerrors.ErrDuplicateClockIn
	}
	r := clockRouter(svc, rdb)

	cacheKey := "idemp:/attendances/clock-in:user-1:key-1"
	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(true)
	mock.ExpectDel(cacheKey + ":lock").SetVal(1)

	w := postWithKey(r, "key-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_ClockOut_NoOpenRecord(t *testing.T) {
	svc := &fakeService{}
	svc.clockOutFn = func(ctx context.Context, userID, device string) (attendance.AttendanceResponse, error) {
		return attendance.AttendanceResponse{}, attendanceerrors.ErrNoOpenRecord
	}

	r := newRouter(attendance.NewHandler(svc), "user-1", "staff")
	w := perform(t, r, http.MethodPost, "/attendances/clock-out", gin.H{"device": "pc"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATE")
}

func TestHandler_AdminClockIn_MissingFields(t *testing.T) {
	svc := &fakeService{}
	svc.adminClockInFn = func(ctx context.Context, req attendance.AdminClockInRequest) (attendance.AttendanceResponse, error) {
		t.Fatal("service must not be reached on a binding failure")
		return attendance.AttendanceResponse{}, nil
	}

	r := newRouter(attendance.NewHandler(svc), "admin-1", "admin")
	w := perform(t, r, http.MethodPost, "/attendances/admin/clock-in", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Update_PassesPathID(t *testing.T) {
	svc := &fakeService{}
	svc.updateFn = func(ctx context.Context, attendanceID, editorID string, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
		assert.Equal(t, "att-9", attendanceID)
		assert.Equal(t, "mgr-1", editorID)
		return attendance.AttendanceResponse{ID: attendanceID}, nil
	}

	r := newRouter(attendance.NewHandler(svc), "mgr-1", "manager")
	w := perform(t, r, http.MethodPatch, "/attendances/att-9", gin.H{"clock_out": "2024-03-04T18:00:00Z"})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_GetAll_RoleScoping(t *testing.T) {
	cases := []struct {
		role       string
		canReadAll bool
	}{
		{"staff", false},
		{"manager", true},
		{"admin", true},
	}

	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			svc := &fakeService{}
			svc.getAllFn = func(ctx context.Context, actorID string, canReadAll bool) ([]attendance.AttendanceResponse, error) {
				assert.Equal(t, tc.canReadAll, canReadAll)
				return []attendance.AttendanceResponse{}, nil
			}

			r := newRouter(attendance.NewHandler(svc), "user-1", tc.role)
			w := perform(t, r, http.MethodGet, "/attendances", nil)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestHandler_GetAll_Paginates(t *testing.T) {
	rows := make([]attendance.AttendanceResponse, 25)
	for i := range rows {
		rows[i] = attendance.AttendanceResponse{ID: "att"}
	}

	svc := &fakeService{}
	svc.getAllFn = func(ctx context.Context, actorID string, canReadAll bool) ([]attendance.AttendanceResponse, error) {
		return rows, nil
	}

	r := newRouter(attendance.NewHandler(svc), "admin-1", "admin")
	w := perform(t, r, http.MethodGet, "/attendances?page=3&page_size=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []json.RawMessage `json:"data"`
		Meta struct {
			Total      int64 `json:"total"`
			Page       int   `json:"page"`
			TotalPages int   `json:"totalPages"`
		} `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 5)
	assert.Equal(t, int64(25), envelope.Meta.Total)
	assert.Equal(t, 3, envelope.Meta.Page)
	assert.Equal(t, 3, envelope.Meta.TotalPages)
}
