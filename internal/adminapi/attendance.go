package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/shift"
	"github.com/cafedesk/cafedesk/internal/webserver"
	"github.com/cafedesk/cafedesk/pkg/common"
)

func registerAttendanceRoutes() {
	webserver.ApiGET("/staff/attendance", listAttendance)
	webserver.ApiPOST("/staff/attendance/checkin", checkIn)
	webserver.ApiPOST("/staff/attendance/checkout", checkOut)
	webserver.ApiPOST("/staff/attendance/mark", markAttendance)
}

func listAttendance(c echo.Context) error {
	attendance, err := GetStore(c).Attendance()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load attendance", err.Error())
	}
	if date := c.QueryParam("date"); date != "" {
		filtered := attendance[:0]
		for _, a := range attendance {
			if a.Date == date {
				filtered = append(filtered, a)
			}
		}
		attendance = filtered
	}
	page, pageSize := parsePagination(c)
	return paged(c, pageSlice(attendance, page, pageSize), int64(len(attendance)), page, pageSize)
}

type shiftPayload struct {
	Shift string `json:"shift"`
}

func checkIn(c echo.Context) error {
	worker, err := currentWorker(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Session invalid", nil)
	}
	var payload shiftPayload
	_ = c.Bind(&payload)

	store := GetStore(c)
	attendance, err := store.Attendance()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load attendance", err.Error())
	}
	now := time.Now()
	date := common.DateStr(now)
	for i := range attendance {
		a := &attendance[i]
		if a.WorkerID == worker.ID && a.Date == date && a.Open() {
			return fail(c, http.StatusConflict, "ALREADY_CHECKED_IN", "Shift already open", a)
		}
	}

	rec := domain.AttendanceRecord{
		ID:         common.UUID(),
		WorkerID:   worker.ID,
		WorkerName: worker.Name,
		Date:       date,
		CheckIn:    common.ClockStr(now),
		Type:       domain.AttendancePresent,
		Shift:      payload.Shift,
		CreatedAt:  now,
	}
	if err := store.SaveAttendance(append(attendance, rec)); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to save check-in", err.Error())
	}
	return ok(c, rec)
}

func checkOut(c echo.Context) error {
	worker, err := currentWorker(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Session invalid", nil)
	}
	store := GetStore(c)
	attendance, err := store.Attendance()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load attendance", err.Error())
	}
	now := time.Now()
	date := common.DateStr(now)
	clock := common.ClockStr(now)
	for i := range attendance {
		a := &attendance[i]
		if a.WorkerID != worker.ID || a.Date != date || !a.Open() {
			continue
		}
		a.CheckOut = clock
		in, okIn := shift.ClockHours(a.CheckIn)
		out, okOut := shift.ClockHours(clock)
		if okIn && okOut {
			h := out - in
			if h < 0 {
				h += 24
			}
			a.HoursWorked = h
		}
		if err := store.SaveAttendance(attendance); err != nil {
			return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to save check-out", err.Error())
		}
		return ok(c, *a)
	}
	return fail(c, http.StatusNotFound, "NOT_FOUND", "No open shift to close", nil)
}

type markPayload struct {
	WorkerID int64  `json:"worker_id,string" validate:"required"`
	Date     string `json:"date" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=present absent leave"`
}

// markAttendance lets an admin record absence or leave for any worker.
func markAttendance(c echo.Context) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}
	var payload markPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse attendance", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Worker, date and type are required", nil)
	}

	store := GetStore(c)
	workers, err := store.Workers()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load workers", err.Error())
	}
	workerName := ""
	for i := range workers {
		if workers[i].ID == payload.WorkerID {
			workerName = workers[i].Name
			break
		}
	}
	if workerName == "" {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Worker not found", nil)
	}

	attendance, err := store.Attendance()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load attendance", err.Error())
	}
	rec := domain.AttendanceRecord{
		ID:         common.UUID(),
		WorkerID:   payload.WorkerID,
		WorkerName: workerName,
		Date:       payload.Date,
		Type:       payload.Type,
		CreatedAt:  time.Now(),
	}
	if err := store.SaveAttendance(append(attendance, rec)); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to save attendance", err.Error())
	}
	return ok(c, rec)
}
