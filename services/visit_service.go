package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/config"
	"backend/errs"
	"backend/models"
	"backend/utils"

	"gorm.io/gorm"
)

// Hard caps per query family. They bound response size and are not
// configurable past their ceiling.
const (
	rangeQueryLimit  = 2000
	monthQueryLimit  = 5000
	yearQueryLimit   = 20000
	roomQueryDefault = 200
	roomQueryMax     = 5000
)

const photoFolder = "security_visitors"

const dayLayout = "2006-01-02"

// PhotoStore uploads raw photo bytes and returns (url, objectKey).
type PhotoStore func(ctx context.Context, data []byte, contentType, folder string) (string, string, error)

// VisitService owns the visit table and the two lifecycle workflows:
// visitor submission and status transition. Push and the realtime feed are
// best-effort side effects; only the record write can fail the caller.
type VisitService struct {
	db       *gorm.DB
	resolver *ResolverService
	push     *PushService
	hub      *RealtimeHub
	photos   PhotoStore
}

// NewVisitService wires the lifecycle. A nil photo store selects S3.
func NewVisitService(db *gorm.DB, resolver *ResolverService, push *PushService, hub *RealtimeHub, photos PhotoStore) *VisitService {
	if photos == nil {
		photos = utils.UploadVisitorPhoto
	}
	return &VisitService{db: db, resolver: resolver, push: push, hub: hub, photos: photos}
}

type SubmitVisitorInput struct {
	RoomID           string
	VisitorName      string
	Purpose          string
	Phone            string
	Photo            []byte
	PhotoContentType string
}

// SubmitVisitor resolves the target residents, persists the visit, then
// fans a push notification out to every device of every resolved resident.
// Photo upload and push failures never abort the visit; the record just
// ends up without photos or with notified=false.
func (s *VisitService) SubmitVisitor(ctx context.Context, in SubmitVisitorInput) (*models.VisitView, error) {
	if strings.TrimSpace(in.RoomID) == "" || strings.TrimSpace(in.VisitorName) == "" {
		return nil, errs.Validation("roomId and visitorName required")
	}

	res := s.resolver.Resolve(in.RoomID)

	photos := models.PhotoList{}
	if len(in.Photo) > 0 {
		url, _, err := s.photos(ctx, in.Photo, in.PhotoContentType, photoFolder)
		if err != nil {
			config.Warning("photo upload failed, creating visit without photo: %v", err)
		} else {
			photos = append(photos, url)
		}
	}

	visit := models.Visit{
		RoomID:      in.RoomID,
		RoomLabel:   res.RoomLabel,
		VisitorName: in.VisitorName,
		Purpose:     in.Purpose,
		Phone:       in.Phone,
		Photos:      photos,
		Status:      models.StatusPending,
	}
	if len(res.Residents) > 0 {
		// first resolved resident owns the link; all of them get notified
		visit.ResidentUserID = &res.Residents[0].ID
	}
	if err := s.db.Create(&visit).Error; err != nil {
		return nil, err
	}

	s.broadcast(visit.ResidentUserID, "visit.created", &visit)

	userIDs := make([]string, 0, len(res.Residents))
	for _, r := range res.Residents {
		userIDs = append(userIDs, r.ID)
	}
	tokens := s.push.TokensForUsers(userIDs)
	if len(tokens) > 0 {
		purpose := in.Purpose
		if purpose == "" {
			purpose = "No purpose"
		}
		out := s.push.Dispatch(ctx, tokens,
			fmt.Sprintf("Visitor at %s", res.RoomLabel),
			fmt.Sprintf("%s — %s", in.VisitorName, purpose),
			map[string]string{"type": "visitor", "visitId": visit.ID},
		)
		if out.OK && out.Delivered > 0 {
			if err := s.db.Model(&visit).Update("notified", true).Error; err != nil {
				config.Warning("could not flag visit %s notified: %v", visit.ID, err)
			} else {
				visit.Notified = true
			}
		}
	}

	view := s.viewFor(visit)
	return &view, nil
}

// SetStatus moves a visit to pending/approved/denied and tells the resident.
// Re-applying the same or another terminal status is allowed on purpose, so
// a guard can correct a mistaken approval. The push never rolls back or
// fails the transition.
func (s *VisitService) SetStatus(ctx context.Context, id, status string) (*models.VisitView, error) {
	if !models.ValidStatus(status) {
		return nil, errs.Validation("invalid status %q", status)
	}

	var visit models.Visit
	if err := s.db.First(&visit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("visit")
		}
		return nil, err
	}

	if err := s.db.Model(&visit).Update("status", status).Error; err != nil {
		return nil, err
	}
	visit.Status = status

	if visit.ResidentUserID != nil {
		if tokens := s.push.TokensForUsers([]string{*visit.ResidentUserID}); len(tokens) > 0 {
			s.push.Dispatch(ctx, tokens,
				fmt.Sprintf("Visitor %s", status),
				fmt.Sprintf("%s has been %s", visit.VisitorName, status),
				map[string]string{"type": "visit_status", "visitId": visit.ID, "status": status},
			)
		}
	}
	s.broadcast(visit.ResidentUserID, "visit.status", &visit)

	view := s.viewFor(visit)
	return &view, nil
}

// VisitQuery filters the flat visit listing: exactly one of Date or
// From/To, plus optional exact-match room and status.
type VisitQuery struct {
	RoomID string
	Status string
	Date   string
	From   string
	To     string
}

// List returns visits for a single UTC day or an inclusive date range,
// newest first, capped at rangeQueryLimit rows.
func (s *VisitService) List(q VisitQuery) ([]models.VisitView, error) {
	tx := s.db.Model(&models.Visit{})
	if q.RoomID != "" {
		tx = tx.Where("room_id = ?", q.RoomID)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	tx, err := applyDateWindow(tx, q.Date, q.From, q.To)
	if err != nil {
		return nil, err
	}

	var visits []models.Visit
	if err := tx.Order("created_at DESC").Limit(rangeQueryLimit).Find(&visits).Error; err != nil {
		return nil, err
	}
	return s.viewsFor(visits), nil
}

// ListMonth returns one UTC calendar month, capped at monthQueryLimit rows.
func (s *VisitService) ListMonth(year, month int, roomID, status string) ([]models.VisitView, error) {
	if year <= 0 || month < 1 || month > 12 {
		return nil, errs.Validation("invalid year or month")
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return s.listWindow(start, end, roomID, status, monthQueryLimit)
}

// ListYear returns one UTC calendar year, capped at yearQueryLimit rows.
func (s *VisitService) ListYear(year int, roomID, status string) ([]models.VisitView, error) {
	if year <= 0 {
		return nil, errs.Validation("invalid year")
	}
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return s.listWindow(start, end, roomID, status, yearQueryLimit)
}

func (s *VisitService) listWindow(start, end time.Time, roomID, status string, limit int) ([]models.VisitView, error) {
	tx := s.db.Model(&models.Visit{}).Where("created_at >= ? AND created_at < ?", start, end)
	if roomID != "" {
		tx = tx.Where("room_id = ?", roomID)
	}
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	var visits []models.Visit
	if err := tx.Order("created_at DESC").Limit(limit).Find(&visits).Error; err != nil {
		return nil, err
	}
	return s.viewsFor(visits), nil
}

// RoomQuery filters the per-room listing. Limit defaults to
// roomQueryDefault and is clamped to roomQueryMax.
type RoomQuery struct {
	Status string
	Date   string
	From   string
	To     string
	Limit  int
}

// ListByRoom returns a room's visits, newest first.
func (s *VisitService) ListByRoom(roomID string, q RoomQuery) ([]models.VisitView, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = roomQueryDefault
	}
	if limit > roomQueryMax {
		limit = roomQueryMax
	}

	tx := s.db.Model(&models.Visit{}).Where("room_id = ?", roomID)
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	tx, err := applyDateWindow(tx, q.Date, q.From, q.To)
	if err != nil {
		return nil, err
	}

	var visits []models.Visit
	if err := tx.Order("created_at DESC").Limit(limit).Find(&visits).Error; err != nil {
		return nil, err
	}
	return s.viewsFor(visits), nil
}

// LatestByRoom returns the newest visit for a room, optionally filtered by
// status.
func (s *VisitService) LatestByRoom(roomID, status string) (*models.VisitView, error) {
	tx := s.db.Where("room_id = ?", roomID)
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	var visit models.Visit
	if err := tx.Order("created_at DESC").First(&visit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("visit")
		}
		return nil, err
	}
	view := s.viewFor(visit)
	return &view, nil
}

// FindByID returns one visit with its resident joined.
func (s *VisitService) FindByID(id string) (*models.VisitView, error) {
	var visit models.Visit
	if err := s.db.First(&visit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("visit")
		}
		return nil, err
	}
	view := s.viewFor(visit)
	return &view, nil
}

// DeleteByResident removes every visit owned by the given resident. Used
// by user deletion with the delete-visits flag.
func (s *VisitService) DeleteByResident(userID string) (int64, error) {
	res := s.db.Where("resident_user_id = ?", userID).Delete(&models.Visit{})
	return res.RowsAffected, res.Error
}

// applyDateWindow narrows tx to one UTC day, or to [from, to] inclusive.
// All windows are half-open [start, end) to keep midnight rows on one side.
func applyDateWindow(tx *gorm.DB, date, from, to string) (*gorm.DB, error) {
	switch {
	case date != "":
		day, err := time.Parse(dayLayout, date)
		if err != nil {
			return nil, errs.Validation("invalid date %q, want YYYY-MM-DD", date)
		}
		return tx.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1)), nil
	case from != "" || to != "":
		if from != "" {
			start, err := time.Parse(dayLayout, from)
			if err != nil {
				return nil, errs.Validation("invalid from date %q, want YYYY-MM-DD", from)
			}
			tx = tx.Where("created_at >= ?", start)
		}
		if to != "" {
			end, err := time.Parse(dayLayout, to)
			if err != nil {
				return nil, errs.Validation("invalid to date %q, want YYYY-MM-DD", to)
			}
			tx = tx.Where("created_at < ?", end.AddDate(0, 0, 1))
		}
		return tx, nil
	}
	return tx, nil
}

func (s *VisitService) viewFor(visit models.Visit) models.VisitView {
	return s.viewsFor([]models.Visit{visit})[0]
}

// viewsFor joins the resident projection onto each visit in one batched
// lookup and normalizes photos to list form.
func (s *VisitService) viewsFor(visits []models.Visit) []models.VisitView {
	idSet := make(map[string]struct{})
	for _, v := range visits {
		if v.ResidentUserID != nil {
			idSet[*v.ResidentUserID] = struct{}{}
		}
	}

	infos := make(map[string]*models.ResidentInfo, len(idSet))
	if len(idSet) > 0 {
		ids := make([]string, 0, len(idSet))
		for id := range idSet {
			ids = append(ids, id)
		}
		var users []models.User
		if err := s.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
			config.Warning("resident join failed: %v", err)
		}
		for _, u := range users {
			infos[u.ID] = &models.ResidentInfo{
				Name:   u.Name,
				Email:  u.Email,
				Phone:  u.Phone,
				RoomID: u.RoomID,
				Role:   u.Role,
			}
		}
	}

	views := make([]models.VisitView, len(visits))
	for i, v := range visits {
		if v.Photos == nil {
			v.Photos = models.PhotoList{}
		}
		view := models.VisitView{Visit: v}
		if v.ResidentUserID != nil {
			view.Resident = infos[*v.ResidentUserID]
		}
		views[i] = view
	}
	return views
}

func (s *VisitService) broadcast(residentID *string, kind string, visit *models.Visit) {
	if s.hub == nil || residentID == nil {
		return
	}
	s.hub.BroadcastToUser(*residentID, map[string]any{
		"kind":  kind,
		"visit": visit,
	})
}
