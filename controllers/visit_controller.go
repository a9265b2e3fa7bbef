package controllers

import (
	"io"
	"net/http"
	"strconv"

	"backend/config"
	"backend/errs"
	"backend/services"

	"github.com/gin-gonic/gin"
)

type VisitController struct {
	Visits *services.VisitService
}

// constructor
func NewVisitController(vs *services.VisitService) *VisitController {
	return &VisitController{Visits: vs}
}

// Submit handles the guard's check-in form: multipart with roomId,
// visitorName, purpose, phone and an optional photo file.
func (vc *VisitController) Submit(c *gin.Context) {
	in := services.SubmitVisitorInput{
		RoomID:      c.PostForm("roomId"),
		VisitorName: c.PostForm("visitorName"),
		Purpose:     c.PostForm("purpose"),
		Phone:       c.PostForm("phone"),
	}

	if file, err := c.FormFile("photo"); err == nil && file != nil {
		f, err := file.Open()
		if err != nil {
			config.Warning("could not open uploaded photo: %v", err)
		} else {
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				config.Warning("could not read uploaded photo: %v", err)
			} else {
				in.Photo = data
				in.PhotoContentType = file.Header.Get("Content-Type")
			}
		}
	}

	visit, err := vc.Visits.SubmitVisitor(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "visit": visit})
}

// List handles GET /api/visits with ?date= or ?from=&to=, plus roomId and
// status filters.
func (vc *VisitController) List(c *gin.Context) {
	visits, err := vc.Visits.List(services.VisitQuery{
		RoomID: c.Query("roomId"),
		Status: c.Query("status"),
		Date:   c.Query("date"),
		From:   c.Query("from"),
		To:     c.Query("to"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": len(visits), "visits": visits})
}

func (vc *VisitController) ListMonth(c *gin.Context) {
	year, yerr := strconv.Atoi(c.Query("year"))
	month, merr := strconv.Atoi(c.Query("month"))
	if yerr != nil || merr != nil {
		fail(c, errs.Validation("year and month required (e.g. year=2025&month=11)"))
		return
	}

	visits, err := vc.Visits.ListMonth(year, month, c.Query("roomId"), c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": len(visits), "visits": visits})
}

func (vc *VisitController) ListYear(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		fail(c, errs.Validation("year required (e.g. year=2025)"))
		return
	}

	visits, err := vc.Visits.ListYear(year, c.Query("roomId"), c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": len(visits), "visits": visits})
}

func (vc *VisitController) ListByRoom(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	visits, err := vc.Visits.ListByRoom(c.Param("roomId"), services.RoomQuery{
		Status: c.Query("status"),
		Date:   c.Query("date"),
		From:   c.Query("from"),
		To:     c.Query("to"),
		Limit:  limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": len(visits), "visits": visits})
}

func (vc *VisitController) LatestByRoom(c *gin.Context) {
	visit, err := vc.Visits.LatestByRoom(c.Param("roomId"), c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "visit": visit})
}

type setStatusInput struct {
	Status string `json:"status"`
}

func (vc *VisitController) SetStatus(c *gin.Context) {
	var in setStatusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, errs.Validation("invalid request body"))
		return
	}

	visit, err := vc.Visits.SetStatus(c.Request.Context(), c.Param("id"), in.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "visit": visit})
}
