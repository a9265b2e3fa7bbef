package controllers

import (
	"net/http"

	"backend/errs"
	"backend/services"

	"github.com/gin-gonic/gin"
)

type RoomController struct {
	Rooms *services.RoomService
}

// constructor
func NewRoomController(rs *services.RoomService) *RoomController {
	return &RoomController{Rooms: rs}
}

type createRoomInput struct {
	RoomLabel string `json:"roomLabel"`
	Occupant  string `json:"occupant"`
}

func (rc *RoomController) Create(c *gin.Context) {
	var in createRoomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, errs.Validation("invalid request body"))
		return
	}

	room, err := rc.Rooms.CreateRoom(in.RoomLabel, in.Occupant)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "room": room})
}

func (rc *RoomController) List(c *gin.Context) {
	rooms, err := rc.Rooms.ListRooms()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "rooms": rooms})
}
